// Package ui renders the registration form and the issued turn.
//
// Two presenters implement turn.Presenter:
//
//   - ProgramPresenter forwards every call as a message to a running Bubble
//     Tea program whose root Model shows the form, the turn card and a
//     diagnostics log view (desktop surface).
//   - Inline appends styled lines to a terminal stream, writing only when a
//     value changes (mobile surface).
//
// Presenter calls arrive from the monitor's poll goroutines. The Model never
// calls back into the registration flow from Update; visitor actions run as
// tea.Cmd functions so a presenter call made while the flow holds its locks
// cannot deadlock the program loop.
//
// # Key Bindings
//
// In the form, printable keys always go to the focused input:
//
//   - Tab/Shift+Tab or Up/Down: move between fields
//   - Enter: register
//   - Ctrl+L: diagnostics log
//   - Ctrl+T: cycle theme
//   - F1: help
//   - Ctrl+C: quit
//
// On the turn card:
//
//   - j or Enter: join the video call (stops monitoring, copies the link)
//   - c: copy the video link
//   - n or Esc: close the turn and start a new registration
//   - l: diagnostics log
//   - T: cycle theme
//   - ?/h: help
//   - e/q: quit
package ui
