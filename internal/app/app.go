package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/five82/queuecall/internal/callurl"
	"github.com/five82/queuecall/internal/config"
	"github.com/five82/queuecall/internal/journal"
	"github.com/five82/queuecall/internal/logging"
	"github.com/five82/queuecall/internal/monitor"
	"github.com/five82/queuecall/internal/prefs"
	"github.com/five82/queuecall/internal/registration"
	"github.com/five82/queuecall/internal/state"
	"github.com/five82/queuecall/internal/telemetry"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// Options configure the queuecall application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/queuecall/prefs.toml
	Surface    string // overrides the configured surface when set
	Version    string
	Debug      bool

	// Streams for the inline surface; nil uses the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) withDefaults() Options {
	if o.PrefsPath == "" {
		o.PrefsPath = prefs.DefaultPath()
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// loadConfig reads the configuration and applies the surface override.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err = cfg.WithSurface(opts.Surface)
	if err != nil {
		return config.Config{}, fmt.Errorf("surface: %w", err)
	}
	return cfg, nil
}

// runtime is the wired core shared by every surface.
type runtime struct {
	cfg       config.Config
	prefsPath string
	prefs     prefs.Prefs

	logger  *zap.Logger
	logPath string
	client  *vqueue.Client
	journal journal.Journal
	store   *state.Store
	monitor *monitor.Monitor
	flow    *registration.Flow

	closeLog        func()
	shutdownTracing func(context.Context) error
}

// newRuntime wires config, logging, tracing, the API client, the journal, the
// monitor and the registration flow around presenter. console receives
// human-readable logs; nil keeps them in the log file only.
func newRuntime(ctx context.Context, cfg config.Config, opts Options, presenter turn.Presenter, console io.Writer) (*runtime, error) {
	logger, logPath, closeLog, err := logging.New(logging.Options{
		Dir:     cfg.LogDir,
		Console: console,
		Debug:   opts.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	rt := &runtime{
		cfg:       cfg,
		prefsPath: opts.PrefsPath,
		logger:    logger,
		logPath:   logPath,
		closeLog:  closeLog,
		store:     &state.Store{},
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs", zap.Error(err))
	}
	rt.prefs = userPrefs

	rt.shutdownTracing = telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		Version:  opts.Version,
		Logger:   logger,
	})

	rt.client, err = vqueue.NewClient(vqueue.Options{
		BaseURL:  cfg.APIBase,
		Token:    cfg.APIToken,
		QueueID:  cfg.QueueID,
		BranchID: cfg.BranchID,
		Timeout:  cfg.RequestTimeout(),
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init queue client: %w", err)
	}

	rt.journal = journal.Nop{}
	if cfg.JournalDSN != "" {
		pg, err := journal.Open(ctx, cfg.JournalDSN)
		if err != nil {
			// The journal is optional; the visitor can still register.
			logger.Warn("journal unavailable", zap.Error(err))
		} else {
			rt.journal = pg
		}
	}

	augmenter := callurl.New(cfg.VideoCallUser)
	rt.monitor = monitor.New(rt.client, presenter, monitor.Options{
		Interval:  cfg.PollInterval(),
		Augmenter: augmenter,
		Store:     rt.store,
		Logger:    logger.Named("monitor"),
		Journal:   rt.journal,
	})

	rt.flow = registration.NewFlow(registration.Deps{
		Enqueuer:     rt.client,
		Monitor:      rt.monitor,
		Presenter:    presenter,
		Validator:    registration.NewValidator(cfg.BlockedDomains, cfg.RequireIdentifier),
		Augmenter:    augmenter,
		Logger:       logger.Named("registration"),
		Recorder:     rt.journal,
		OnRegistered: rt.rememberTurn,
	})

	logger.Info("queuecall started",
		zap.String("surface", cfg.Surface),
		zap.String("api_base", cfg.APIBase),
		zap.String("queue", cfg.QueueID),
		zap.String("branch", cfg.BranchID),
		zap.Duration("poll_interval", cfg.PollInterval()),
		zap.Bool("journal", cfg.JournalDSN != ""))
	return rt, nil
}

// rememberTurn stores the issued turn so it can be resumed later.
func (rt *runtime) rememberTurn(snap vqueue.TurnSnapshot) {
	if err := prefs.RememberTurn(rt.prefsPath, snap, time.Now()); err != nil {
		rt.logger.Warn("remember turn", zap.String("code", snap.Code), zap.Error(err))
	}
}

// Close stops monitoring and releases every resource.
func (rt *runtime) Close() {
	if rt.monitor != nil {
		rt.monitor.Stop()
	}
	if rt.journal != nil {
		rt.journal.Close()
	}
	if rt.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.shutdownTracing(ctx); err != nil {
			rt.logger.Warn("tracing shutdown", zap.Error(err))
		}
		cancel()
	}
	if rt.closeLog != nil {
		rt.closeLog()
	}
}

// Run starts the configured surface with a blank registration form.
func Run(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Surface == config.SurfaceMobile {
		return runInline(ctx, cfg, opts, registration.Form{}, nil)
	}
	return runDesktop(ctx, cfg, opts, nil)
}

// Register runs the inline surface with form prefilled; missing fields are
// prompted for on the input stream.
func Register(ctx context.Context, opts Options, form registration.Form) error {
	opts = opts.withDefaults()
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	return runInline(ctx, cfg, opts, form, nil)
}

// Watch monitors an already issued turn on the configured surface.
func Watch(ctx context.Context, opts Options, snap vqueue.TurnSnapshot) error {
	opts = opts.withDefaults()
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Surface == config.SurfaceMobile {
		return runInline(ctx, cfg, opts, registration.Form{}, &snap)
	}
	return runDesktop(ctx, cfg, opts, &snap)
}

// Resume watches the last turn issued on this machine.
func Resume(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()
	p, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}
	if p.LastTurn == nil {
		return ErrNothingToResume
	}
	return Watch(ctx, opts, p.LastTurn.Snapshot())
}
