package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/queuecall/internal/callurl"
	"github.com/five82/queuecall/internal/journal"
	"github.com/five82/queuecall/internal/logging"
	"github.com/five82/queuecall/internal/prefs"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/ui"
	"github.com/five82/queuecall/internal/vqueue"
)

// Status fetches the current status of code once and prints it, followed by
// the journaled transitions when a journal is configured.
func Status(ctx context.Context, opts Options, code string) error {
	opts = opts.withDefaults()
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("turn code is required")
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, _, closeLog, err := logging.New(logging.Options{Dir: cfg.LogDir, Debug: opts.Debug})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := vqueue.NewClient(vqueue.Options{
		BaseURL:  cfg.APIBase,
		Token:    cfg.APIToken,
		QueueID:  cfg.QueueID,
		BranchID: cfg.BranchID,
		Timeout:  cfg.RequestTimeout(),
	})
	if err != nil {
		return fmt.Errorf("init queue client: %w", err)
	}

	st, err := client.FetchStatus(ctx, code)
	if err != nil {
		logger.Warn("status fetch failed", zap.String("code", code), zap.Error(err))
		return fmt.Errorf("fetch status: %w", err)
	}

	var transitions []journal.Transition
	if cfg.JournalDSN != "" {
		j, err := journal.Open(ctx, cfg.JournalDSN)
		if err != nil {
			logger.Warn("journal unavailable", zap.Error(err))
		} else {
			defer j.Close()
			transitions, err = j.Transitions(ctx, code)
			if err != nil {
				logger.Warn("read transitions", zap.String("code", code), zap.Error(err))
			}
		}
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	printStatus(opts.Stdout, userPrefs.Theme, code, st, callurl.New(cfg.VideoCallUser), transitions)
	return nil
}

// statusLabel returns the label and category a monitor would display for st.
func statusLabel(st vqueue.TurnStatus) (string, turn.Category) {
	switch {
	case !st.HasStatus, st.Status == turn.StatusWaitingToBeCalled:
		return turn.LabelWaiting, turn.CategoryPending
	case st.Status == turn.StatusAnnounced:
		return turn.LabelAnnounced, turn.CategoryActiveCall
	default:
		return st.Status, turn.Categorize(st.Status)
	}
}

func printStatus(w io.Writer, themeName, code string, st vqueue.TurnStatus, aug callurl.Augmenter, transitions []journal.Transition) {
	styles := ui.GetTheme(themeName).StylesFor(lipgloss.NewRenderer(w))
	label, category := statusLabel(st)

	row := func(name, value string) {
		fmt.Fprintln(w, styles.Label.Render(name)+value)
	}
	row("Código", styles.Text.Render(code))
	row("Estado", styles.StatusText(category).Render(label))
	if st.HasStatus && label != st.Status {
		row("Estado remoto", styles.FaintText.Render(st.Status))
	}
	row("Tiempo de espera", styles.Text.Render(fmt.Sprintf("%d min", st.WaitingMinutes())))
	if st.VideoCallURL != "" {
		row("Videollamada", styles.Link.Render(aug.Augment(st.VideoCallURL)))
	}

	if len(transitions) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.AccentText.Bold(true).Render("Historial"))
	for _, t := range transitions {
		fmt.Fprintf(w, "%s  %s → %s  %s\n",
			styles.MutedText.Render(t.RecordedAt.Local().Format("2006-01-02 15:04:05")),
			t.From, t.To,
			styles.FaintText.Render(t.Status))
	}
}
