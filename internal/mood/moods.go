package mood

import (
	"maps"
	"slices"
)

// DefaultMood is the mood used when none is named.
const DefaultMood = "adaptive"

// Builtin returns the moods shipped with prism. The map is freshly built on
// every call.
func Builtin() map[string]*Config {
	return map[string]*Config{
		DefaultMood: DefaultConfig(),
		"deep": {
			Background: BackgroundConfig{
				Algo:        BackgroundAdaptiveShadow,
				TargetL:     Float(0.18),
				MixStrength: Float(0.45),
			},
			Hero: HeroConfig{
				Algo:        HeroDeltaELoop,
				TargetDelta: Float(50),
				HueFence:    Float(20),
			},
			Text: TextConfig{
				Algo:       TextHarmonized,
				Drift:      Float(0.15),
				WarmthBias: Bool(true),
			},
			FallbackAnchor: "#2e3a5c",
		},
		"pastel": {
			Background: BackgroundConfig{
				Algo:    BackgroundFlat,
				TargetL: Float(0.30),
			},
			Hero: HeroConfig{
				Algo:     HeroLogBoostRotate,
				Rotation: Float(-15),
			},
			Text: TextConfig{
				Algo:  TextTempInversion,
				Shift: Float(0.02),
			},
			FallbackAnchor: "#d4a5a5",
		},
		"vibrant": {
			Background: BackgroundConfig{
				Algo:        BackgroundAdaptiveShadow,
				TargetL:     Float(0.24),
				MixStrength: Float(0.20),
				WarmthBoost: Float(0.02),
			},
			Hero: HeroConfig{
				Algo:        HeroDeltaELoop,
				TargetDelta: Float(55),
				HueFence:    Float(35),
			},
			Text: TextConfig{
				Algo:       TextHarmonized,
				Drift:      Float(0.05),
				WarmthBias: Bool(false),
			},
			FallbackAnchor: "#e07848",
		},
	}
}

// Names returns the sorted names of moods.
func Names(moods map[string]*Config) []string {
	return slices.Sorted(maps.Keys(moods))
}
