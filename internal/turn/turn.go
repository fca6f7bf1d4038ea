// Package turn holds the vocabulary shared by the monitor, the registration
// flow and the presentation surfaces: remote status names, display labels,
// colour categories, monitor phases and the Presenter port.
package turn

import (
	"strings"

	"github.com/five82/queuecall/internal/vqueue"
)

// Remote status values with special handling.
const (
	// StatusWaitingToBeCalled never updates the displayed status.
	StatusWaitingToBeCalled = "WAITING_TO_BE_CALLED"
	StatusAnnounced         = "ANNOUNCED"
	StatusCalling           = "CALLING"
	StatusInCall            = "IN_CALL"
	StatusCompleted         = "COMPLETED"
	StatusFinished          = "FINISHED"
)

// Display labels.
const (
	LabelWaiting   = "En espera"
	LabelAnnounced = "Lo estamos llamando"
)

// Category is a colouring hint for a displayed status.
type Category string

const (
	CategoryPending    Category = "pending"
	CategoryActiveCall Category = "active-call"
	CategoryTerminal   Category = "terminal"
)

// Categorize maps a remote status to its display category.
func Categorize(status string) Category {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case StatusAnnounced, StatusCalling, StatusInCall:
		return CategoryActiveCall
	case StatusCompleted, StatusFinished:
		return CategoryTerminal
	default:
		return CategoryPending
	}
}

// Phase is the monitor's view of a turn's lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseAnnounced
	PhaseOther
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhaseAnnounced:
		return "announced"
	case PhaseOther:
		return "other"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Presenter renders turn state. Implementations must not call back into the
// monitor or the registration flow from these methods.
type Presenter interface {
	ShowTurn(snap vqueue.TurnSnapshot)
	UpdateStatus(label string, category Category)
	UpdateWaitingTime(minutes int)
	RevealVideoCall(url string)
	ShowError(message string)
	Reset()
	// SetSubmitting disables (true) or re-enables (false) the submission control.
	SetSubmitting(busy bool)
}

// NopPresenter discards every update.
type NopPresenter struct{}

func (NopPresenter) ShowTurn(vqueue.TurnSnapshot) {}
func (NopPresenter) UpdateStatus(string, Category) {}
func (NopPresenter) UpdateWaitingTime(int) {}
func (NopPresenter) RevealVideoCall(string) {}
func (NopPresenter) ShowError(string) {}
func (NopPresenter) Reset() {}
func (NopPresenter) SetSubmitting(bool) {}
