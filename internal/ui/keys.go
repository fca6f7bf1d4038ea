package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the desktop surface.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logs       key.Binding

	// Form
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	// Turn card
	Join     key.Binding
	Copy     key.Binding
	NewTurn  key.Binding
	Close    key.Binding
	TurnQuit key.Binding
}

// DefaultKeyMap returns the default key bindings. Form bindings avoid plain
// letters since those belong to the focused input.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "?", "h"),
			key.WithHelp("f1/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t", "T"),
			key.WithHelp("ctrl+t/T", "Cycle theme"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+l", "l"),
			key.WithHelp("ctrl+l/l", "Diagnostics log"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Register"),
		),

		Join: key.NewBinding(
			key.WithKeys("j", "enter"),
			key.WithHelp("j", "Join video call"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy video link"),
		),
		NewTurn: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New registration"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),
		TurnQuit: key.NewBinding(
			key.WithKeys("e", "q"),
			key.WithHelp("e/q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Submit},
		{k.Join, k.Copy, k.NewTurn, k.Close},
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
