package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderForm() string {
	content := m.form.view(m.theme.Styles(), m.submitting, m.errMsg)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderTurn() string {
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, m.renderCard())
}

// renderCard renders the issued turn: number, code, estimated wait, status
// badge and, once the visitor is called, the video call link.
func (m Model) renderCard() string {
	styles := m.theme.Styles()
	c := m.card

	row := func(label, value string) string {
		return styles.Label.Render(label) + value + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Tu turno"))
	b.WriteString("\n\n")
	b.WriteString(row("Número de turno", styles.Text.Bold(true).Render(fmt.Sprintf("%d", c.number))))
	b.WriteString(row("Código", styles.Text.Render(c.code)))
	b.WriteString(row("Tiempo de espera", styles.Text.Render(formatWaiting(c.waiting))))
	b.WriteString(row("Estado", styles.StatusStyle(c.category).Render(c.label)))

	if c.revealed {
		b.WriteString("\n")
		b.WriteString(styles.SuccessText.Render("¡Es tu turno! Unite a la videollamada:"))
		b.WriteString("\n")
		b.WriteString(styles.Link.Render(c.videoURL))
		b.WriteString("\n")
		if c.joined {
			b.WriteString(styles.MutedText.Render("Enlace copiado al portapapeles."))
			b.WriteString("\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(m.errMsg))
		b.WriteString("\n")
	}

	return styles.Card.Render(strings.TrimRight(b.String(), "\n"))
}

// formatWaiting renders the rounded estimate in minutes.
func formatWaiting(minutes int) string {
	switch {
	case minutes <= 0:
		return "menos de 1 min"
	case minutes == 1:
		return "1 min"
	default:
		return fmt.Sprintf("%d min", minutes)
	}
}
