package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Surfaces.
const (
	SurfaceDesktop = "desktop"
	SurfaceMobile  = "mobile"
)

// Environment overrides.
const (
	EnvAPIToken     = "QUEUECALL_API_TOKEN"
	EnvJournalDSN   = "QUEUECALL_JOURNAL_DSN"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

const (
	defaultConfigPath     = "~/.config/queuecall/config.toml"
	defaultLogDir         = "~/.local/share/queuecall/logs"
	defaultAPIBase        = "https://filavirtual2.debmedia.com/api/v1"
	defaultQueueID        = "12083"
	defaultBranchID       = "10618"
	defaultPollIntervalMS = 3000
	defaultVideoCallUser  = "mobile"
)

var defaultBlockedDomains = []string{"gmail.com", "hotmail.com", "yahoo.com", "outlook.com", "live.com"}

// Config is the queuecall client configuration.
type Config struct {
	APIBase           string   `toml:"api_base" validate:"required"`
	QueueID           string   `toml:"queue_id" validate:"required"`
	BranchID          string   `toml:"branch_id" validate:"required"`
	APIToken          string   `toml:"api_token" validate:"required"`
	PollIntervalMS    int      `toml:"poll_interval_ms" validate:"min=250"`
	RequestTimeoutMS  int      `toml:"request_timeout_ms" validate:"min=0"`
	BlockedDomains    []string `toml:"blocked_domains"`
	RequireIdentifier bool     `toml:"require_identifier"`
	Surface           string   `toml:"surface" validate:"oneof=desktop mobile"`
	VideoCallUser     string   `toml:"video_call_user" validate:"required"`
	LogDir            string   `toml:"log_dir"`
	JournalDSN        string   `toml:"journal_dsn"`
	OTLPEndpoint      string   `toml:"otlp_endpoint"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:        defaultAPIBase,
		QueueID:        defaultQueueID,
		BranchID:       defaultBranchID,
		PollIntervalMS: defaultPollIntervalMS,
		BlockedDomains: append([]string(nil), defaultBlockedDomains...),
		Surface:        SurfaceDesktop,
		VideoCallUser:  defaultVideoCallUser,
		LogDir:         mustExpand(defaultLogDir),
	}
}

// Load reads the TOML file at path (the default location when empty), applies
// .env and environment overrides, fills defaults and validates the result.
// A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIToken)); v != "" {
		c.APIToken = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalDSN)); v != "" {
		c.JournalDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)); v != "" {
		c.OTLPEndpoint = v
	}
}

func (c *Config) normalize() {
	def := Default()

	c.APIBase = strings.TrimSpace(c.APIBase)
	if c.APIBase == "" {
		c.APIBase = def.APIBase
	}
	c.QueueID = strings.TrimSpace(c.QueueID)
	if c.QueueID == "" {
		c.QueueID = def.QueueID
	}
	c.BranchID = strings.TrimSpace(c.BranchID)
	if c.BranchID == "" {
		c.BranchID = def.BranchID
	}
	c.APIToken = strings.TrimSpace(c.APIToken)
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = def.PollIntervalMS
	}
	c.Surface = strings.ToLower(strings.TrimSpace(c.Surface))
	if c.Surface == "" {
		c.Surface = def.Surface
	}
	c.VideoCallUser = strings.TrimSpace(c.VideoCallUser)
	if c.VideoCallUser == "" {
		c.VideoCallUser = def.VideoCallUser
	}
	c.LogDir = strings.TrimSpace(c.LogDir)
	if c.LogDir == "" {
		c.LogDir = def.LogDir
	}
	c.LogDir = mustExpand(c.LogDir)
	c.JournalDSN = strings.TrimSpace(c.JournalDSN)
	c.OTLPEndpoint = strings.TrimSpace(c.OTLPEndpoint)

	domains := make([]string, 0, len(c.BlockedDomains))
	for _, d := range c.BlockedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}
	if c.BlockedDomains != nil {
		c.BlockedDomains = domains
	}
}

// PollInterval returns the turn status poll cadence.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout; zero means none.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// WithSurface returns a copy with the surface overridden when s is non-empty.
func (c Config) WithSurface(s string) (Config, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return c, nil
	}
	c.Surface = s
	if err := Validate(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
