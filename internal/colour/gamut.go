package colour

import "math"

const (
	// gamutEpsilon is the tolerance on linear channels treated as in gamut.
	gamutEpsilon = 1e-7

	// gamutSearchSteps bounds the chroma bisection; 2^-24 of the start chroma is
	// well below one 8-bit step.
	gamutSearchSteps = 24
)

// GamutMap returns the closest in-gamut colour with the same lightness and hue,
// reducing chroma only. Lightness outside [0, 1] is clamped to black or white.
// Channels are never clipped independently, so the hue is preserved.
func (c Color) GamutMap() Color {
	if c.InGamut() {
		return c
	}
	if c.L >= 1 {
		return Color{L: 1}
	}
	if c.L <= 0 {
		return Color{}
	}

	hue := c.Hue()
	lo, hi := 0.0, c.Chroma()
	for range gamutSearchSteps {
		mid := (lo + hi) / 2
		if FromOKLCH(c.L, mid, hue).InGamut() {
			lo = mid
		} else {
			hi = mid
		}
	}
	return FromOKLCH(c.L, lo, hue)
}

func inUnit(v float64) bool {
	return v >= -gamutEpsilon && v <= 1+gamutEpsilon && !math.IsNaN(v)
}
