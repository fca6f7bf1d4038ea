package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// Turn is the displayed state of the monitored turn.
type Turn struct {
	Code           string
	TurnNumber     int
	Phase          turn.Phase
	StatusLabel    string
	Category       turn.Category
	WaitingMinutes int
	// VideoCallURL always carries the surface marker.
	VideoCallURL string
	Revealed     bool
}

// Active reports whether a turn has been issued and not yet cleared.
func (t Turn) Active() bool {
	return t.Code != "" && t.Phase != turn.PhaseIdle
}

// Snapshot represents the latest data available to the presentation layer.
type Snapshot struct {
	Turn                Turn
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Polls               int
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin replaces the snapshot with a freshly issued turn in the waiting phase.
// videoURL is stored as given; callers pass the augmented link.
func (s *Store) Begin(snap vqueue.TurnSnapshot, videoURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = Snapshot{
		Turn: Turn{
			Code:           snap.Code,
			TurnNumber:     snap.TurnNumber,
			Phase:          turn.PhaseWaiting,
			StatusLabel:    turn.LabelWaiting,
			Category:       turn.CategoryPending,
			WaitingMinutes: snap.WaitingMinutes(),
			VideoCallURL:   videoURL,
		},
		LastUpdated: time.Now(),
	}
}

// Update records a poll outcome. When err is non-nil the previous turn is kept
// but the error is recorded for diagnostics.
func (s *Store) Update(t *Turn, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	if t != nil {
		s.snapshot.Turn = *t
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.snapshot.Polls++
}

// MarkStopped moves the turn to the stopped phase while keeping its display fields.
func (s *Store) MarkStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Turn.Phase == turn.PhaseIdle {
		return
	}
	s.snapshot.Turn.Phase = turn.PhaseStopped
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
