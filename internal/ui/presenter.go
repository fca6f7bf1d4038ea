package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// Presenter messages delivered to the Model.

type turnShownMsg vqueue.TurnSnapshot

type statusMsg struct {
	label    string
	category turn.Category
}

type waitingMsg int

type revealMsg string

type errorMsg string

type resetMsg struct{}

type submittingMsg bool

// ProgramPresenter forwards presenter calls to a running Bubble Tea program
// as messages. Calls made before Attach are dropped.
type ProgramPresenter struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ turn.Presenter = (*ProgramPresenter)(nil)

// NewProgramPresenter returns a presenter with no program attached.
func NewProgramPresenter() *ProgramPresenter {
	return &ProgramPresenter{}
}

// Attach binds the presenter to p.
func (p *ProgramPresenter) Attach(prog *tea.Program) {
	p.attach(prog.Send)
}

func (p *ProgramPresenter) attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *ProgramPresenter) dispatch(msg tea.Msg) {
	p.mu.RLock()
	send := p.send
	p.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (p *ProgramPresenter) ShowTurn(snap vqueue.TurnSnapshot) { p.dispatch(turnShownMsg(snap)) }

func (p *ProgramPresenter) UpdateStatus(label string, category turn.Category) {
	p.dispatch(statusMsg{label: label, category: category})
}

func (p *ProgramPresenter) UpdateWaitingTime(minutes int) { p.dispatch(waitingMsg(minutes)) }
func (p *ProgramPresenter) RevealVideoCall(url string) { p.dispatch(revealMsg(url)) }
func (p *ProgramPresenter) ShowError(message string) { p.dispatch(errorMsg(message)) }
func (p *ProgramPresenter) Reset() { p.dispatch(resetMsg{}) }
func (p *ProgramPresenter) SetSubmitting(busy bool) { p.dispatch(submittingMsg(busy)) }
