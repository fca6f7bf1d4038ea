package registration

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/five82/queuecall/internal/callurl"
	"github.com/five82/queuecall/internal/state"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

var (
	// ErrSubmitInProgress is returned when Submit is called while an enqueue request is pending.
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrNoVideoCall is returned by Join before the turn has been announced.
	ErrNoVideoCall = errors.New("video call not available yet")
	// ErrNoTurnCode is returned by Watch for a snapshot without a code.
	ErrNoTurnCode = errors.New("turn code is required")
)

// Monitor is the part of the turn monitor the flow drives.
type Monitor interface {
	Start(ctx context.Context, snap vqueue.TurnSnapshot) error
	Stop()
	Snapshot() state.Snapshot
}

// Recorder persists issued turns. Failures are logged and never block the visitor.
type Recorder interface {
	RecordRegistration(ctx context.Context, reg vqueue.Registration, snap vqueue.TurnSnapshot) error
}

// Deps wires a Flow.
type Deps struct {
	Enqueuer  vqueue.Enqueuer
	Monitor   Monitor
	Presenter turn.Presenter
	Validator *Validator
	Augmenter callurl.Augmenter
	Logger    *zap.Logger
	Recorder  Recorder
	// OnRegistered runs after a turn has been issued and monitoring started.
	OnRegistered func(vqueue.TurnSnapshot)
}

// Flow connects form submission to enqueueing and turn monitoring.
type Flow struct {
	deps       Deps
	submitting atomic.Bool
}

// NewFlow builds a Flow. Missing optional dependencies get no-op defaults.
func NewFlow(deps Deps) *Flow {
	if deps.Presenter == nil {
		deps.Presenter = turn.NopPresenter{}
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator(nil, false)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Flow{deps: deps}
}

// Submit validates the form, enqueues the visitor and starts monitoring the
// issued turn. Validation failures never reach the network.
func (f *Flow) Submit(ctx context.Context, form Form) error {
	form = form.Normalize()
	if err := f.deps.Validator.Validate(form); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.deps.Logger.Info("registration rejected",
				zap.String("reason", string(verr.Reason)),
				zap.Strings("fields", verr.Fields))
			f.deps.Presenter.ShowError(verr.Message())
		}
		return err
	}

	if !f.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInProgress
	}
	defer f.submitting.Store(false)

	f.deps.Presenter.SetSubmitting(true)
	defer f.deps.Presenter.SetSubmitting(false)

	reg := form.Registration()
	snap, err := f.deps.Enqueuer.Enqueue(ctx, reg)
	if err != nil {
		f.deps.Logger.Warn("enqueue failed", zap.Error(err))
		f.deps.Presenter.ShowError(MsgEnqueueFailed)
		return err
	}
	f.deps.Logger.Info("turn issued",
		zap.String("code", snap.Code),
		zap.Int("turn", snap.TurnNumber),
		zap.Int("waiting_minutes", snap.WaitingMinutes()))

	shown := snap
	shown.VideoCallURL = f.deps.Augmenter.Augment(snap.VideoCallURL)
	f.deps.Presenter.ShowTurn(shown)

	if err := f.deps.Monitor.Start(ctx, snap); err != nil {
		f.deps.Logger.Error("start monitoring", zap.String("code", snap.Code), zap.Error(err))
		return err
	}

	if f.deps.Recorder != nil {
		if err := f.deps.Recorder.RecordRegistration(ctx, reg, snap); err != nil {
			f.deps.Logger.Warn("journal registration failed", zap.String("code", snap.Code), zap.Error(err))
		}
	}
	if f.deps.OnRegistered != nil {
		f.deps.OnRegistered(snap)
	}
	return nil
}

// Watch resumes monitoring of a turn issued earlier, without enqueueing.
func (f *Flow) Watch(ctx context.Context, snap vqueue.TurnSnapshot) error {
	if snap.Code == "" {
		return ErrNoTurnCode
	}

	shown := snap
	shown.VideoCallURL = f.deps.Augmenter.Augment(snap.VideoCallURL)
	f.deps.Presenter.ShowTurn(shown)

	if err := f.deps.Monitor.Start(ctx, snap); err != nil {
		f.deps.Logger.Error("start monitoring", zap.String("code", snap.Code), zap.Error(err))
		return err
	}
	f.deps.Logger.Info("watching turn", zap.String("code", snap.Code))
	return nil
}

// Reset stops monitoring and returns the presenter to the blank form.
func (f *Flow) Reset() {
	f.deps.Monitor.Stop()
	f.deps.Presenter.Reset()
	f.deps.Logger.Debug("registration reset")
}

// Join stops monitoring and returns the video link for the visitor to open.
func (f *Flow) Join() (string, error) {
	t := f.deps.Monitor.Snapshot().Turn
	if !t.Revealed || t.VideoCallURL == "" {
		return "", ErrNoVideoCall
	}
	f.deps.Monitor.Stop()
	f.deps.Logger.Info("visitor joined video call", zap.String("code", t.Code))
	return t.VideoCallURL, nil
}
