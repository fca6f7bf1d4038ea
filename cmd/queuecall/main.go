package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/queuecall/internal/app"
	"github.com/five82/queuecall/internal/registration"
	"github.com/five82/queuecall/internal/vqueue"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(ctx)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "queuecall: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(ctx context.Context) *cobra.Command {
	opts := &app.Options{Version: version}

	root := &cobra.Command{
		Use:           "queuecall",
		Short:         "Register for a virtual queue and join the video call when your turn arrives",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx, *opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/queuecall/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/queuecall/prefs.toml)")
	flags.StringVar(&opts.Surface, "surface", "", "presentation surface: desktop or mobile")
	flags.BoolVar(&opts.Debug, "debug", false, "verbose logging")

	root.AddCommand(
		formCmd(ctx, opts),
		registerCmd(ctx, opts),
		watchCmd(ctx, opts),
		resumeCmd(ctx, opts),
		statusCmd(ctx, opts),
	)
	return root
}

func formCmd(ctx context.Context, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Open the registration form (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx, *opts)
		},
	}
}

func registerCmd(ctx context.Context, opts *app.Options) *cobra.Command {
	var form registration.Form
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register inline, prompting for any field not given as a flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Register(ctx, *opts, form)
		},
	}
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&form.Email, "email", "", "corporate email")
	cmd.Flags().StringVar(&form.Identifier, "dni", "", "national identity number")
	return cmd
}

func watchCmd(ctx context.Context, opts *app.Options) *cobra.Command {
	var turnNumber int
	var videoURL string
	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Monitor an issued turn without registering again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Watch(ctx, *opts, vqueue.TurnSnapshot{
				Code:         args[0],
				TurnNumber:   turnNumber,
				VideoCallURL: videoURL,
				Status:       vqueue.StatusWaiting,
			})
		},
	}
	cmd.Flags().IntVar(&turnNumber, "turn", 0, "turn number to display")
	cmd.Flags().StringVar(&videoURL, "video-url", "", "video call link issued with the turn")
	return cmd
}

func resumeCmd(ctx context.Context, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Monitor the last turn issued on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Resume(ctx, *opts)
		},
	}
}

func statusCmd(ctx context.Context, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <code>",
		Short: "Print the current status of a turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Status(ctx, *opts, args[0])
		},
	}
}
