package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/queuecall/internal/prefs"
	"github.com/five82/queuecall/internal/registration"
	"github.com/five82/queuecall/internal/state"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// View represents the current active view.
type View int

const (
	ViewForm View = iota
	ViewTurn
	ViewLogs
)

// Actions are the visitor operations the desktop surface triggers. They run
// inside tea.Cmd goroutines, never on the update loop, because they call back
// into the presenter.
type Actions interface {
	Submit(ctx context.Context, form registration.Form) error
	Watch(ctx context.Context, snap vqueue.TurnSnapshot) error
	Reset()
	Join() (string, error)
}

// Options configures the UI.
type Options struct {
	Context context.Context
	Actions Actions
	// Status supplies poll diagnostics for the header.
	Status            func() state.Snapshot
	ThemeName         string
	PrefsPath         string
	LogPath           string
	RequireIdentifier bool
	// Resume starts on the turn card for an already issued turn.
	Resume      *vqueue.TurnSnapshot
	Clipboard   func(string) error
	RefreshTick time.Duration
}

// turnCard is the displayed state of the issued turn.
type turnCard struct {
	code     string
	number   int
	waiting  int
	label    string
	category turn.Category
	videoURL string
	revealed bool
	joined   bool
}

func newTurnCard(snap vqueue.TurnSnapshot) turnCard {
	return turnCard{
		code:     snap.Code,
		number:   snap.TurnNumber,
		waiting:  snap.WaitingMinutes(),
		label:    turn.LabelWaiting,
		category: turn.CategoryPending,
		videoURL: snap.VideoCallURL,
	}
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	actions     Actions
	status      func() state.Snapshot
	prefsPath   string
	logPath     string
	clipboard   func(string) error
	refreshTick time.Duration
	resume      *vqueue.TurnSnapshot

	// UI state
	keys     keyMap
	help     help.Model
	theme    Theme
	view     View
	prevView View
	width    int
	height   int
	ready    bool
	showHelp bool

	// Registration state
	form       formModel
	card       turnCard
	submitting bool
	errMsg     string
	notice     string

	// Diagnostics
	diag        state.Snapshot
	logViewport viewport.Model
	logLines    []string
	logErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.RefreshTick
	if refresh <= 0 {
		refresh = time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	return Model{
		ctx:         ctx,
		actions:     opts.Actions,
		status:      opts.Status,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		clipboard:   copyFn,
		refreshTick: refresh,
		resume:      opts.Resume,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       GetTheme(opts.ThemeName),
		view:        ViewForm,
		form:        newForm(opts.RequireIdentifier),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tickCmd(m.refreshTick)}
	if m.resume != nil && m.actions != nil {
		cmds = append(cmds, watchCmd(m.ctx, m.actions, *m.resume))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil

	// Presenter
	case turnShownMsg:
		m.card = newTurnCard(vqueue.TurnSnapshot(msg))
		m.view = ViewTurn
		m.errMsg = ""
		m.notice = ""
		return m, m.form.clear()

	case statusMsg:
		m.card.label = msg.label
		m.card.category = msg.category
		return m, nil

	case waitingMsg:
		m.card.waiting = int(msg)
		return m, nil

	case revealMsg:
		m.card.videoURL = string(msg)
		m.card.revealed = true
		return m, nil

	case errorMsg:
		m.errMsg = string(msg)
		return m, nil

	case resetMsg:
		m.card = turnCard{}
		m.errMsg = ""
		m.notice = ""
		if m.view != ViewLogs {
			m.view = ViewForm
		}
		m.prevView = ViewForm
		return m, m.form.setFocus(0)

	case submittingMsg:
		m.submitting = bool(msg)
		return m, nil

	// Action results
	case submitDoneMsg:
		if errors.Is(msg.err, registration.ErrSubmitInProgress) {
			m.notice = "Ya estamos enviando tus datos."
		}
		return m, nil

	case joinDoneMsg:
		if msg.err != nil {
			m.notice = "La videollamada todavía no está disponible."
			return m, nil
		}
		m.card.joined = true
		m.card.videoURL = msg.url
		m.notice = "Abrí el enlace en tu navegador para unirte."
		return m, copyCmd(m.clipboard, msg.url)

	case copyDoneMsg:
		if msg.err != nil {
			m.notice = "No se pudo copiar el enlace."
		} else if !m.card.joined {
			m.notice = "Enlace copiado."
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Cargando..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// contentHeight is the space between the header and footer lines.
func (m Model) contentHeight() int {
	h := m.height - 2
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewTurn:
		return m.renderTurn()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderForm()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.view {
	case ViewTurn:
		return m.handleTurnKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

// handleFormKey routes printable keys to the focused input; only control keys
// act as shortcuts here.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyRunes {
		switch {
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.CycleTheme):
			m.cycleTheme()
			return m, nil
		case key.Matches(msg, m.keys.Logs):
			return m.openLogs()
		case key.Matches(msg, m.keys.NextField):
			return m, m.form.next()
		case key.Matches(msg, m.keys.PrevField):
			return m, m.form.prev()
		case key.Matches(msg, m.keys.Submit):
			if m.submitting || m.actions == nil {
				return m, nil
			}
			m.errMsg = ""
			return m, submitCmd(m.ctx, m.actions, m.form.values())
		}
	}
	return m, m.form.update(msg)
}

func (m Model) handleTurnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Join):
		if m.actions == nil {
			return m, nil
		}
		return m, joinCmd(m.actions)
	case key.Matches(msg, m.keys.Copy):
		if !m.card.revealed {
			m.notice = "La videollamada todavía no está disponible."
			return m, nil
		}
		return m, copyCmd(m.clipboard, m.card.videoURL)
	case key.Matches(msg, m.keys.NewTurn), key.Matches(msg, m.keys.Close):
		if m.actions == nil {
			return m, nil
		}
		return m, resetCmd(m.actions)
	case key.Matches(msg, m.keys.TurnQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Logs):
		return m.openLogs()
	}
	return m, nil
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath != "" {
		_ = prefs.SaveTheme(m.prefsPath, m.theme.Name)
	}
}

// handleTick refreshes diagnostics and schedules the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.status != nil {
		m.diag = m.status()
	}
	cmds := []tea.Cmd{tickCmd(m.refreshTick)}
	if m.view == ViewLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type submitDoneMsg struct{ err error }

type joinDoneMsg struct {
	url string
	err error
}

type copyDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func submitCmd(ctx context.Context, a Actions, form registration.Form) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: a.Submit(ctx, form)}
	}
}

func watchCmd(ctx context.Context, a Actions, snap vqueue.TurnSnapshot) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: a.Watch(ctx, snap)}
	}
}

func resetCmd(a Actions) tea.Cmd {
	return func() tea.Msg {
		a.Reset()
		return nil
	}
}

func joinCmd(a Actions) tea.Cmd {
	return func() tea.Msg {
		url, err := a.Join()
		return joinDoneMsg{url: url, err: err}
	}
}

func copyCmd(copyFn func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return copyDoneMsg{err: copyFn(text)}
	}
}

// Run starts the Bubble Tea program with presenter attached and blocks until
// the visitor quits.
func Run(opts Options, presenter *ProgramPresenter) error {
	var programOpts []tea.ProgramOption
	programOpts = append(programOpts, tea.WithAltScreen())
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(New(opts), programOpts...)
	if presenter != nil {
		presenter.Attach(p)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
