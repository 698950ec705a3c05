package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/jmylchreest/prism/internal/colour"
	"github.com/jmylchreest/prism/internal/mood"
	"github.com/jmylchreest/prism/internal/security"
)

const (
	moodsFileName = "moods"
	envPrefix     = "PRISM"

	// DefaultWorkers is the precache pool size.
	DefaultWorkers = 4
)

// Moods is the parsed moods file.
type Moods struct {
	ActiveMood string                  `mapstructure:"active_mood" json:"active_mood"`
	Workers    int                     `mapstructure:"workers" json:"workers"`
	Moods      map[string]*mood.Config `mapstructure:"moods" json:"moods"`

	// File is the path that was read, empty when built-in defaults are used.
	File string `mapstructure:"-" json:"-"`
}

// Builtin returns the configuration used when no moods file exists.
func Builtin() *Moods {
	return &Moods{
		ActiveMood: mood.DefaultMood,
		Workers:    DefaultWorkers,
		Moods:      mood.Builtin(),
	}
}

// LoadMoods searches dir for moods.json, moods.yaml or moods.toml. A missing
// file yields Builtin. PRISM_ACTIVE_MOOD and PRISM_WORKERS override the file.
func LoadMoods(dir string) (*Moods, error) {
	v := newViper()
	v.SetConfigName(moodsFileName)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return decode(v)
		}
		return nil, fmt.Errorf("failed to read moods file: %w", err)
	}
	return decode(v)
}

// LoadMoodsFile reads an explicit moods file. The format follows the extension.
func LoadMoodsFile(path string) (*Moods, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read moods file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("active_mood", mood.DefaultMood)
	v.SetDefault("workers", DefaultWorkers)
	return v
}

func decode(v *viper.Viper) (*Moods, error) {
	m := &Moods{}
	if err := v.Unmarshal(m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moods: %w", err)
	}
	m.File = v.ConfigFileUsed()

	// A file without moods still gets the built-in set.
	if len(m.Moods) == 0 {
		m.Moods = mood.Builtin()
	}
	for name, cfg := range m.Moods {
		if cfg == nil {
			m.Moods[name] = &mood.Config{}
		}
	}
	if m.Workers < 1 {
		m.Workers = DefaultWorkers
	}
	m.ActiveMood = strings.ToLower(m.ActiveMood)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks mood names and fallback anchors.
func (m *Moods) Validate() error {
	for name, cfg := range m.Moods {
		if err := security.ValidateName(name); err != nil {
			return fmt.Errorf("invalid mood name %q: %w", name, err)
		}
		if cfg.FallbackAnchor != "" {
			if _, err := colour.ParseHex(cfg.FallbackAnchor); err != nil {
				return fmt.Errorf("mood %q: fallback_anchor: %w", name, err)
			}
		}
	}
	return nil
}

// Names returns the mood names, sorted.
func (m *Moods) Names() []string {
	return slices.Sorted(maps.Keys(m.Moods))
}

// Resolve returns the mood called name; an empty name means the active mood.
// An unknown name falls back to the active mood, then to the built-in default,
// and the returned warning wraps mood.ErrConfigurationFallback.
func (m *Moods) Resolve(name string) (string, *mood.Config, error) {
	if name == "" {
		name = m.ActiveMood
	}
	name = strings.ToLower(name)
	if cfg, ok := m.Moods[name]; ok {
		return name, cfg, nil
	}

	warn := fmt.Errorf("%w: mood %q not found", mood.ErrConfigurationFallback, name)
	if cfg, ok := m.Moods[m.ActiveMood]; ok {
		return m.ActiveMood, cfg, fmt.Errorf("%w, using %q", warn, m.ActiveMood)
	}
	return mood.DefaultMood, mood.DefaultConfig(), fmt.Errorf("%w, using built-in %q", warn, mood.DefaultMood)
}
