package colour

import (
	"image/color"
	"math"
)

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	// Convert from 16-bit to 8-bit.
	rf := gammaCorrect(float64(r>>8) / 255.0)
	gf := gammaCorrect(float64(g>>8) / 255.0)
	bf := gammaCorrect(float64(b>>8) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21. Argument order does not matter.
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(c1, c2 color.Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// ContrastRatioHex is ContrastRatio for two hex strings.
func ContrastRatioHex(fg, bg string) (float64, error) {
	f, err := parseRGB(fg)
	if err != nil {
		return 0, err
	}
	b, err := parseRGB(bg)
	if err != nil {
		return 0, err
	}
	return ContrastRatio(f, b), nil
}

// NormalizeHue wraps h into [0, 360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// ShortestArc returns the signed hue difference to - from in (-180, 180].
func ShortestArc(from, to float64) float64 {
	diff := math.Mod(to-from, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// HueDistance calculates the angular distance between two hues on the colour wheel.
// Returns a value between 0 and 180 degrees (shortest path around the wheel).
func HueDistance(h1, h2 float64) float64 {
	return math.Abs(ShortestArc(h1, h2))
}

// RotateToward moves hue h toward target by fraction of the shortest arc.
func RotateToward(h, target, fraction float64) float64 {
	return NormalizeHue(h + ShortestArc(h, target)*fraction)
}

// ClampHue fences h to within fence degrees of ref along the shortest arc.
func ClampHue(h, ref, fence float64) float64 {
	diff := ShortestArc(ref, h)
	if math.Abs(diff) <= fence {
		return h
	}
	if diff > 0 {
		return NormalizeHue(ref + fence)
	}
	return NormalizeHue(ref - fence)
}
