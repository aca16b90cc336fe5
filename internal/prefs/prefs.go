// Package prefs persists the small set of user preferences that live
// outside the backend configuration, currently just the color theme.
// Preferences are cosmetic: a missing or broken prefs file yields the
// defaults and is never a reason to refuse startup.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for chyrpal.
type Prefs struct {
	Theme string `toml:"theme"`
}

const (
	defaultPrefsPath = "~/.config/chyrpal/prefs.toml"
	defaultTheme     = "Dracula"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path, or from the default location when
// path is empty. Every failure mode degrades to the defaults.
func Load(path string) (Prefs, error) {
	defaults := Prefs{Theme: defaultTheme}

	resolved, err := prefsPath(path)
	if err != nil {
		return defaults, nil
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return defaults, nil
	}

	p := defaults
	if err := toml.Unmarshal(raw, &p); err != nil {
		return defaults, nil
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	return p, nil
}

// Save writes preferences to path, creating parent directories as
// needed. Unlike Load, Save reports failures.
func Save(path string, p Prefs) error {
	resolved, err := prefsPath(path)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, raw, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// prefsPath picks the effective file path and expands a leading ~.
func prefsPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
