package app

import (
	"context"

	"github.com/five82/queuecall/internal/config"
	"github.com/five82/queuecall/internal/ui"
	"github.com/five82/queuecall/internal/vqueue"
)

// runDesktop boots the full-screen surface until the visitor quits or ctx is
// cancelled. Logs go to the file only; console output would corrupt the
// alternate screen.
func runDesktop(ctx context.Context, cfg config.Config, opts Options, resume *vqueue.TurnSnapshot) error {
	presenter := ui.NewProgramPresenter()
	rt, err := newRuntime(ctx, cfg, opts, presenter, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	return ui.Run(ui.Options{
		Context:           ctx,
		Actions:           rt.flow,
		Status:            rt.monitor.Snapshot,
		ThemeName:         rt.prefs.Theme,
		PrefsPath:         rt.prefsPath,
		LogPath:           rt.logPath,
		RequireIdentifier: cfg.RequireIdentifier,
		Resume:            resume,
	}, presenter)
}
