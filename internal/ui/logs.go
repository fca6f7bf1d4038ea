package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/queuecall/internal/logtail"
)

// logTailLines bounds how much of the diagnostics log is loaded.
const logTailLines = 500

type logLinesMsg struct {
	lines []string
	err   error
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{lines: logtail.FormatLines(lines), err: err}
	}
}

// openLogs switches to the diagnostics log view and loads it.
func (m Model) openLogs() (tea.Model, tea.Cmd) {
	if m.view != ViewLogs {
		m.prevView = m.view
	}
	m.view = ViewLogs
	m.updateLogViewport()
	return m, readLogsCmd(m.logPath)
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Logs):
		m.view = m.prevView
		if m.view == ViewTurn && m.card.code == "" {
			m.view = ViewForm
		}
		return m, nil
	case key.Matches(msg, m.keys.TurnQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// updateLogViewport resizes the viewport and reloads its content, keeping the
// view pinned to the newest line.
func (m *Model) updateLogViewport() {
	w := m.width - 4
	h := m.contentHeight() - 3
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(w, h)
	}
	m.logViewport.Width = w
	m.logViewport.Height = h

	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(m.renderLogContent())
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render(fmt.Sprintf("No se pudo leer el registro: %v", m.logErr))
	}
	if len(m.logLines) == 0 {
		return styles.FaintText.Render("Sin entradas todavía.")
	}
	return strings.Join(m.logLines, "\n")
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	title := "Registro de diagnóstico"
	if m.logPath != "" {
		title += "  " + truncateMiddle(m.logPath, m.width/2)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(m.width - 2).
		Height(m.contentHeight() - 3)

	return styles.AccentText.Bold(true).Render(title) + "\n" +
		box.Render(m.logViewport.View())
}
