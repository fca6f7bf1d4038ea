package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: logo, turn summary and poll health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{styles.Logo.Render("queuecall")}

	t := m.diag.Turn
	if t.Code != "" {
		parts = append(parts,
			styles.MutedText.Render("Turno:")+" "+styles.Text.Render(t.Code))
		if t.StatusLabel != "" {
			parts = append(parts, styles.StatusText(t.Category).Render(t.StatusLabel))
		}
		parts = append(parts,
			styles.MutedText.Render("Consultas:")+" "+styles.Text.Render(fmt.Sprintf("%d", m.diag.Polls)))
	}

	if ts := formatTimestamp(m.diag.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, styles.MutedText.Render(ts))
	}

	if m.diag.LastError != nil {
		max := 60
		if m.width < 100 {
			max = 30
		}
		label := classifyConnectionError(m.diag.LastError)
		if m.diag.ConsecutiveFailures > 1 {
			label = fmt.Sprintf("%s x%d", label, m.diag.ConsecutiveFailures)
		}
		parts = append(parts,
			styles.DangerText.Render(label)+" "+
				styles.DangerText.UnsetBold().Render(truncate(m.diag.LastError.Error(), max)))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

// renderFooter renders the key hints for the current view plus any notice.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	var bindings []key.Binding
	switch m.view {
	case ViewTurn:
		bindings = []key.Binding{m.keys.Join, m.keys.Copy, m.keys.NewTurn, m.keys.TurnQuit, m.keys.Help}
	case ViewLogs:
		bindings = []key.Binding{m.keys.Close, m.keys.Quit}
	default:
		bindings = []key.Binding{m.keys.NextField, m.keys.Submit, m.keys.Logs, m.keys.Help, m.keys.Quit}
	}

	line := m.help.ShortHelpView(bindings)
	line += "  " + styles.FaintText.Render(m.theme.Name)
	if m.notice != "" {
		line += "  " + styles.WarningText.Render(m.notice)
	}
	return styles.Footer.Width(m.width).Render(line)
}

// classifyConnectionError returns a short description of a poll error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "SIN CONEXIÓN"
	case strings.Contains(msg, "no such host"):
		return "HOST DESCONOCIDO"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIEMPO AGOTADO"
	default:
		return "ERROR"
	}
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(last, now time.Time) string {
	if last.IsZero() {
		return ""
	}

	since := now.Sub(last)
	out := last.Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (ahora)"
	case since < time.Hour:
		out += fmt.Sprintf(" (hace %dm)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (hace %dh)", int(since.Hours()))
	}
	return out
}

// truncate truncates a string to max runes with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	// Keep more of the end (file name) than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
