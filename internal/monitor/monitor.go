package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/queuecall/internal/callurl"
	"github.com/five82/queuecall/internal/state"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// DefaultInterval is the poll cadence used when Options.Interval is zero.
const DefaultInterval = 3 * time.Second

// ErrNoCode is returned by Start when the snapshot carries no turn code.
var ErrNoCode = errors.New("turn code required")

// Journal records phase transitions. Failures are logged and otherwise ignored.
type Journal interface {
	RecordTransition(ctx context.Context, code string, from, to turn.Phase, status string) error
}

// TickerFunc starts a recurring tick and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// Options configure a Monitor.
type Options struct {
	Interval  time.Duration
	Augmenter callurl.Augmenter
	Store     *state.Store
	Logger    *zap.Logger
	Journal   Journal
	NewTicker TickerFunc
}

// Monitor polls the status of one turn at a time and dispatches display
// updates to a Presenter.
type Monitor struct {
	fetcher   vqueue.TurnFetcher
	presenter turn.Presenter
	augmenter callurl.Augmenter
	store     *state.Store
	logger    *zap.Logger
	journal   Journal
	newTicker TickerFunc
	interval  time.Duration

	mu       sync.Mutex
	gen      uint64
	running  bool
	code     string
	videoURL string
	inFlight bool
	skipped  int
	halt     func()
}

// New builds a Monitor. A nil presenter discards updates.
func New(fetcher vqueue.TurnFetcher, presenter turn.Presenter, opts Options) *Monitor {
	if presenter == nil {
		presenter = turn.NopPresenter{}
	}
	m := &Monitor{
		fetcher:   fetcher,
		presenter: presenter,
		augmenter: opts.Augmenter,
		store:     opts.Store,
		logger:    opts.Logger,
		journal:   opts.Journal,
		newTicker: opts.NewTicker,
		interval:  opts.Interval,
	}
	if m.store == nil {
		m.store = &state.Store{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.newTicker == nil {
		m.newTicker = realTicker
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	return m
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Start begins monitoring snap.Code, replacing any turn already being monitored.
// Fetches run under ctx, so requests in flight when Stop is called finish but
// their results are dropped.
func (m *Monitor) Start(ctx context.Context, snap vqueue.TurnSnapshot) error {
	code := strings.TrimSpace(snap.Code)
	if code == "" {
		return ErrNoCode
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	m.gen++
	gen := m.gen
	loopCtx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := m.newTicker(m.interval)
	m.halt = func() {
		stopTicker()
		cancel()
	}
	m.running = true
	m.code = code
	m.videoURL = snap.VideoCallURL
	m.inFlight = false
	m.skipped = 0

	snap.Code = code
	m.store.Begin(snap, m.augmenter.Augment(snap.VideoCallURL))
	m.logger.Info("turn monitoring started",
		zap.String("code", code),
		zap.Int("turn", snap.TurnNumber),
		zap.Duration("interval", m.interval))

	go m.loop(loopCtx, ctx, gen, ticks)
	return nil
}

// Stop halts polling. It is safe to call when nothing is being monitored.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Monitor) stopLocked() {
	if !m.running {
		return
	}
	m.halt()
	m.halt = nil
	m.running = false
	m.gen++
	m.logger.Info("turn monitoring stopped", zap.String("code", m.code), zap.Int("skipped_ticks", m.skipped))
	m.code = ""
	m.videoURL = ""
	m.inFlight = false
	m.store.MarkStopped()
}

// Running reports whether a turn is currently being polled.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Code returns the turn code being polled, or "" when stopped.
func (m *Monitor) Code() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code
}

// Snapshot returns the displayed state of the current or last turn.
func (m *Monitor) Snapshot() state.Snapshot {
	return m.store.Snapshot()
}

func (m *Monitor) loop(loopCtx, fetchCtx context.Context, gen uint64, ticks <-chan time.Time) {
	defer m.release(gen)
	for {
		select {
		case <-loopCtx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			m.tick(fetchCtx, gen)
		}
	}
}

// release stops the monitor when its loop for gen ends on its own, such as
// when the context passed to Start is cancelled.
func (m *Monitor) release(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.gen {
		m.stopLocked()
	}
}

// tick launches one fetch unless the previous one has not resolved yet.
func (m *Monitor) tick(ctx context.Context, gen uint64) {
	m.mu.Lock()
	if gen != m.gen || !m.running {
		m.mu.Unlock()
		return
	}
	if m.inFlight {
		m.skipped++
		m.logger.Debug("poll still in flight, skipping tick", zap.String("code", m.code))
		m.mu.Unlock()
		return
	}
	m.inFlight = true
	code := m.code
	m.mu.Unlock()

	go m.poll(ctx, gen, code)
}

type transition struct {
	code     string
	from, to turn.Phase
	status   string
}

func (m *Monitor) poll(ctx context.Context, gen uint64, code string) {
	status, err := m.fetcher.FetchStatus(ctx, code)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.logger.Debug("discarding poll result for stopped turn", zap.String("code", code))
		return
	}
	m.inFlight = false
	if err != nil {
		m.store.Update(nil, err)
		m.logger.Warn("turn status poll failed",
			zap.String("code", code),
			zap.Int("consecutive_failures", m.store.Snapshot().ConsecutiveFailures),
			zap.Error(err))
		m.mu.Unlock()
		return
	}
	change := m.applyLocked(status)
	m.mu.Unlock()

	if change != nil && m.journal != nil {
		if err := m.journal.RecordTransition(ctx, change.code, change.from, change.to, change.status); err != nil {
			m.logger.Warn("journal transition failed", zap.String("code", change.code), zap.Error(err))
		}
	}
}

// applyLocked interprets one successful poll. Callers hold m.mu, which keeps
// presenter calls for a turn strictly ordered.
func (m *Monitor) applyLocked(status vqueue.TurnStatus) *transition {
	prev := m.store.Snapshot().Turn
	next := prev

	next.WaitingMinutes = status.WaitingMinutes()
	m.presenter.UpdateWaitingTime(next.WaitingMinutes)

	label := strings.TrimSpace(status.Status)
	if !status.HasStatus || label == "" {
		label = turn.LabelWaiting
	}

	switch label {
	case turn.StatusWaitingToBeCalled:
		// Placeholder from the remote system; the displayed status stays as is.
	case turn.StatusAnnounced:
		if status.VideoCallURL != "" {
			m.videoURL = status.VideoCallURL
		}
		link := m.augmenter.Augment(m.videoURL)
		next.Phase = turn.PhaseAnnounced
		next.StatusLabel = turn.LabelAnnounced
		next.Category = turn.CategoryActiveCall
		m.presenter.UpdateStatus(turn.LabelAnnounced, turn.CategoryActiveCall)

		switch {
		case link == "":
			m.logger.Warn("turn announced without a video call url", zap.String("code", m.code))
		case prev.Phase != turn.PhaseAnnounced || !prev.Revealed || link != prev.VideoCallURL:
			next.VideoCallURL = link
			next.Revealed = true
			m.presenter.RevealVideoCall(link)
			m.logger.Info("video call revealed", zap.String("code", m.code))
		}
	default:
		next.Phase = turn.PhaseOther
		if label == turn.LabelWaiting {
			next.Phase = turn.PhaseWaiting
		}
		next.StatusLabel = label
		next.Category = turn.Categorize(label)
		m.presenter.UpdateStatus(label, next.Category)
	}

	m.store.Update(&next, nil)

	if next.Phase == prev.Phase {
		return nil
	}
	m.logger.Info("turn phase changed",
		zap.String("code", m.code),
		zap.Stringer("from", prev.Phase),
		zap.Stringer("to", next.Phase),
		zap.String("status", label))
	return &transition{code: m.code, from: prev.Phase, to: next.Phase, status: label}
}
