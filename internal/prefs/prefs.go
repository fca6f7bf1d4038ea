// Package prefs persists queuecall user preferences: the TUI theme and the
// last turn issued on this machine, which the resume command picks up.
// Preferences are stored in ~/.config/queuecall/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/queuecall/internal/vqueue"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme    string    `toml:"theme"`
	LastTurn *LastTurn `toml:"last_turn,omitempty"`
}

// LastTurn identifies the most recently issued turn.
type LastTurn struct {
	Code         string    `toml:"code"`
	TurnNumber   int       `toml:"turn_number"`
	VideoCallURL string    `toml:"video_call_url"`
	IssuedAt     time.Time `toml:"issued_at"`
}

// Snapshot rebuilds the enqueue result for monitoring.
func (l LastTurn) Snapshot() vqueue.TurnSnapshot {
	return vqueue.TurnSnapshot{
		Code:         l.Code,
		TurnNumber:   l.TurnNumber,
		VideoCallURL: l.VideoCallURL,
		Status:       vqueue.StatusWaiting,
	}
}

const (
	defaultPrefsPath = "~/.config/queuecall/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if prefs.LastTurn != nil && strings.TrimSpace(prefs.LastTurn.Code) == "" {
		prefs.LastTurn = nil
	}

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Update loads the preferences at path, applies fn and saves the result.
func Update(path string, fn func(*Prefs)) error {
	p, err := Load(path)
	if err != nil {
		return err
	}
	fn(&p)
	return Save(path, p)
}

// RememberTurn stores snap as the last issued turn.
func RememberTurn(path string, snap vqueue.TurnSnapshot, now time.Time) error {
	return Update(path, func(p *Prefs) {
		p.LastTurn = &LastTurn{
			Code:         snap.Code,
			TurnNumber:   snap.TurnNumber,
			VideoCallURL: snap.VideoCallURL,
			IssuedAt:     now.UTC().Truncate(time.Second),
		}
	})
}

// SaveTheme stores the theme name, keeping the other preferences.
func SaveTheme(path, theme string) error {
	return Update(path, func(p *Prefs) { p.Theme = theme })
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
