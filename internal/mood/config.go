// Package mood generates a complete named-role palette from an anchor colour.
// A mood selects, per palette section, one of several generation algorithms and
// its numeric parameters.
package mood

import (
	"errors"
	"fmt"
	"slices"
)

// ErrConfigurationFallback marks a warning: an unknown algorithm name was
// replaced by the section default. It is never returned as an error.
var ErrConfigurationFallback = errors.New("configuration fallback")

// Algorithm names a generation algorithm for one palette section.
type Algorithm string

const (
	// BackgroundAdaptiveShadow mixes a shadow root with the anchor and darkens it.
	BackgroundAdaptiveShadow Algorithm = "adaptive_shadow"
	// BackgroundFlat is the anchor at the target lightness.
	BackgroundFlat Algorithm = "flat"

	// HeroDeltaELoop boosts chroma until the hero stands out from the background.
	HeroDeltaELoop Algorithm = "delta_e_loop"
	// HeroLogBoostRotate boosts the anchor once and rotates its hue.
	HeroLogBoostRotate Algorithm = "log_boost_rotate"
	// HeroAnchor uses the anchor unchanged.
	HeroAnchor Algorithm = "anchor"

	// TextHarmonized drifts the anchor hue toward the harmonic pole.
	TextHarmonized Algorithm = "harmonized"
	// TextTempInversion tints text against the anchor temperature.
	TextTempInversion Algorithm = "temp_inversion"
)

// BackgroundAlgorithms returns the valid background algorithms, default first.
func BackgroundAlgorithms() []Algorithm {
	return []Algorithm{BackgroundAdaptiveShadow, BackgroundFlat}
}

// HeroAlgorithms returns the valid hero algorithms, default first.
func HeroAlgorithms() []Algorithm {
	return []Algorithm{HeroDeltaELoop, HeroLogBoostRotate, HeroAnchor}
}

// TextAlgorithms returns the valid text algorithms, default first.
func TextAlgorithms() []Algorithm {
	return []Algorithm{TextHarmonized, TextTempInversion}
}

// Defaults.
const (
	DefaultTargetL     = 0.26
	DefaultMixStrength = 0.30
	DefaultWarmthBoost = 0.015
	DefaultTargetDelta = 45.0
	DefaultHueFence    = 25.0
	DefaultRotation    = -15.0
	DefaultDrift       = 0.10
	DefaultShift       = 0.02

	// AdaptiveShadowRoot selects the temperature-dependent shadow root.
	AdaptiveShadowRoot = "adaptive"
)

// BackgroundConfig configures the background section.
type BackgroundConfig struct {
	Algo        Algorithm `json:"algo,omitempty" mapstructure:"algo"`
	TargetL     *float64  `json:"target_L,omitempty" mapstructure:"target_l"`
	MixStrength *float64  `json:"mix_strength,omitempty" mapstructure:"mix_strength"`
	WarmthBoost *float64  `json:"warmth_boost,omitempty" mapstructure:"warmth_boost"`
	// ShadowRoot is a hex colour or "adaptive".
	ShadowRoot string `json:"shadow_root,omitempty" mapstructure:"shadow_root"`
}

// HeroConfig configures the hero (ui_prim) section.
type HeroConfig struct {
	Algo        Algorithm `json:"algo,omitempty" mapstructure:"algo"`
	TargetDelta *float64  `json:"target_delta,omitempty" mapstructure:"target_delta"`
	HueFence    *float64  `json:"hue_fence,omitempty" mapstructure:"hue_fence"`
	Rotation    *float64  `json:"rotation,omitempty" mapstructure:"rotation"`
	// DeltaMethod is "cmc" (default) or "2000".
	DeltaMethod string `json:"delta_method,omitempty" mapstructure:"delta_method"`
}

// TextConfig configures the fg, fg_dim and fg_muted tiers.
type TextConfig struct {
	Algo       Algorithm `json:"algo,omitempty" mapstructure:"algo"`
	Drift      *float64  `json:"drift,omitempty" mapstructure:"drift"`
	WarmthBias *bool     `json:"warmth_bias,omitempty" mapstructure:"warmth_bias"`
	Shift      *float64  `json:"shift,omitempty" mapstructure:"shift"`
}

// Config is one mood. Zero values and nil parameters mean "use the default".
type Config struct {
	Background BackgroundConfig `json:"background" mapstructure:"background"`
	Hero       HeroConfig       `json:"hero" mapstructure:"hero"`
	Text       TextConfig       `json:"text" mapstructure:"text"`
	// FallbackAnchor replaces near-neutral anchors during extraction.
	FallbackAnchor string `json:"fallback_anchor,omitempty" mapstructure:"fallback_anchor"`
}

// Float returns a pointer to v, for building configs in code.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func orDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// DefaultConfig returns the fully specified built-in default mood.
func DefaultConfig() *Config {
	return &Config{
		Background: BackgroundConfig{
			Algo:        BackgroundAdaptiveShadow,
			TargetL:     Float(DefaultTargetL),
			MixStrength: Float(DefaultMixStrength),
		},
		Hero: HeroConfig{
			Algo:        HeroDeltaELoop,
			TargetDelta: Float(DefaultTargetDelta),
			HueFence:    Float(DefaultHueFence),
		},
		Text: TextConfig{
			Algo:       TextHarmonized,
			Drift:      Float(DefaultDrift),
			WarmthBias: Bool(true),
		},
	}
}

// resolveAlgorithm returns algo if valid, the section default if empty, and
// the default plus a fallback warning otherwise.
func resolveAlgorithm(section string, algo Algorithm, valid []Algorithm) (Algorithm, error) {
	if algo == "" {
		return valid[0], nil
	}
	if slices.Contains(valid, algo) {
		return algo, nil
	}
	return valid[0], fmt.Errorf("%w: unknown %s algorithm %q, using %q", ErrConfigurationFallback, section, algo, valid[0])
}
