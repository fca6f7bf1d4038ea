package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// Inline presents the turn as a section of styled lines appended to a
// terminal stream. Only changes are written, so repeated polls with the same
// values stay quiet.
type Inline struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles

	code     string
	label    string
	category turn.Category
	waiting  int
	videoURL string
}

var _ turn.Presenter = (*Inline)(nil)

// NewInline returns an inline presenter writing to w with the named theme.
// Colour support is detected from w.
func NewInline(w io.Writer, themeName string) *Inline {
	r := lipgloss.NewRenderer(w)
	return &Inline{
		out:     w,
		styles:  GetTheme(themeName).StylesFor(r),
		waiting: -1,
	}
}

func (p *Inline) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

func (p *Inline) ShowTurn(snap vqueue.TurnSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.code = snap.Code
	p.label = turn.LabelWaiting
	p.category = turn.CategoryPending
	p.waiting = snap.WaitingMinutes()
	p.videoURL = ""

	s := p.styles
	var b strings.Builder
	b.WriteString(s.AccentText.Bold(true).Render("Tu turno"))
	b.WriteString("\n")
	b.WriteString(s.Label.Render("Número de turno") + s.Text.Bold(true).Render(fmt.Sprintf("%d", snap.TurnNumber)) + "\n")
	b.WriteString(s.Label.Render("Código") + s.Text.Render(snap.Code) + "\n")
	b.WriteString(s.Label.Render("Tiempo de espera") + s.Text.Render(formatWaiting(p.waiting)) + "\n")
	b.WriteString(s.Label.Render("Estado") + s.StatusText(p.category).Render(p.label))
	p.println(s.Box.Render(b.String()))
}

func (p *Inline) UpdateStatus(label string, category turn.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if label == p.label && category == p.category {
		return
	}
	p.label = label
	p.category = category
	p.println(p.styles.MutedText.Render("Estado: ") + p.styles.StatusText(category).Render(label))
}

func (p *Inline) UpdateWaitingTime(minutes int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if minutes == p.waiting {
		return
	}
	p.waiting = minutes
	p.println(p.styles.MutedText.Render("Tiempo de espera: ") + p.styles.Text.Render(formatWaiting(minutes)))
}

func (p *Inline) RevealVideoCall(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if url == "" || url == p.videoURL {
		return
	}
	p.videoURL = url
	p.println(p.styles.SuccessText.Render("¡Es tu turno! Unite a la videollamada:"))
	p.println(p.styles.Link.Render(url))
}

func (p *Inline) ShowError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.println(p.styles.DangerText.Render("✗ " + message))
}

func (p *Inline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	hadTurn := p.code != ""
	p.code = ""
	p.label = ""
	p.category = ""
	p.waiting = -1
	p.videoURL = ""
	if hadTurn {
		p.println(p.styles.FaintText.Render("Turno cerrado."))
	}
}

func (p *Inline) SetSubmitting(busy bool) {
	if !busy {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.println(p.styles.FaintText.Render("Enviando..."))
}
