// Package config resolves prism's directories and loads mood definitions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "prism"

// Paths holds the directories prism reads and writes. Components receive the
// paths they need explicitly; nothing reads the environment after resolution.
type Paths struct {
	// ConfigDir holds moods.{json,yaml,toml}.
	ConfigDir string
	// CacheDir holds the palette cache and the current palette.
	CacheDir string
}

// DefaultPaths resolves the XDG config and cache directories.
func DefaultPaths() (Paths, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return Paths{}, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	cacheHome, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return Paths{}, fmt.Errorf("failed to resolve cache directory: %w", err)
		}
		cacheHome = filepath.Join(home, ".cache")
	}

	return Paths{
		ConfigDir: filepath.Join(configHome, appDirName),
		CacheDir:  filepath.Join(cacheHome, appDirName),
	}, nil
}

// PaletteDir is the root of the content-addressed palette cache.
func (p Paths) PaletteDir() string {
	return filepath.Join(p.CacheDir, "palettes")
}

// CurrentPalette is the file holding the most recently applied palette.
func (p Paths) CurrentPalette() string {
	return filepath.Join(p.CacheDir, "palette.json")
}
