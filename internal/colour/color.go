// Package colour provides the colour math used by prism: hex parsing, OKLab/OKLCH
// conversion with gamut mapping, CIE LCh, perceptual distance and WCAG contrast.
package colour

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColorFormat is returned when a string is not a 6-digit hex colour.
var ErrInvalidColorFormat = errors.New("invalid colour format")

var hexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Color is an immutable colour stored as OKLab coordinates.
// L is perceptual lightness in [0, 1]; A and B are the opponent axes.
type Color struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// ParseHex parses a "#rrggbb" (or "rrggbb") string of any case.
func ParseHex(s string) (Color, error) {
	rgb, err := parseRGB(s)
	if err != nil {
		return Color{}, err
	}
	return FromRGB(rgb), nil
}

// MustParseHex is like ParseHex but panics on malformed input.
// Only use it for compile-time constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeHex validates s and returns it in canonical lowercase "#rrggbb" form.
func NormalizeHex(s string) (string, error) {
	rgb, err := parseRGB(s)
	if err != nil {
		return "", err
	}
	return rgb.Hex(), nil
}

func parseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !hexPattern.MatchString(s) {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}
	s = strings.ToLower(strings.TrimPrefix(s, "#"))
	c, err := colorful.Hex("#" + s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %v", ErrInvalidColorFormat, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// FromRGB converts an 8-bit sRGB colour to OKLab.
func FromRGB(rgb RGB) Color {
	return fromLinear(rgb.colorful().LinearRgb())
}

// FromOKLab builds a colour from OKLab coordinates.
func FromOKLab(l, a, b float64) Color {
	return Color{L: l, A: a, B: b}
}

// FromOKLCH builds a colour from OKLCH coordinates (hue in degrees).
func FromOKLCH(l, c, h float64) Color {
	rad := h * math.Pi / 180
	return Color{L: l, A: c * math.Cos(rad), B: c * math.Sin(rad)}
}

// ToPerceptual parses hex and returns its OKLCH coordinates.
func ToPerceptual(hex string) (l, c, h float64, err error) {
	col, err := ParseHex(hex)
	if err != nil {
		return 0, 0, 0, err
	}
	l, c, h = col.LCH()
	return l, c, h, nil
}

// ToHex renders OKLab coordinates as a gamut-mapped hex string.
func ToHex(l, a, b float64) string {
	return FromOKLab(l, a, b).Hex()
}

// LCH returns the OKLCH coordinates. Hue is in [0, 360).
func (c Color) LCH() (l, chroma, hue float64) {
	return c.L, c.Chroma(), c.Hue()
}

// Chroma is the length of the (a, b) vector.
func (c Color) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}

// Hue returns the OKLCH hue angle in degrees, [0, 360).
func (c Color) Hue() float64 {
	return NormalizeHue(math.Atan2(c.B, c.A) * 180 / math.Pi)
}

// WithLightness returns a copy with L replaced.
func (c Color) WithLightness(l float64) Color {
	c.L = l
	return c
}

// WithChroma returns a copy with the chroma replaced, keeping lightness and hue.
func (c Color) WithChroma(chroma float64) Color {
	return FromOKLCH(c.L, chroma, c.Hue())
}

// WithHue returns a copy rotated to the given hue, keeping lightness and chroma.
func (c Color) WithHue(h float64) Color {
	return FromOKLCH(c.L, c.Chroma(), h)
}

// ScaleChroma multiplies the chroma by factor.
func (c Color) ScaleChroma(factor float64) Color {
	c.A *= factor
	c.B *= factor
	return c
}

// Mix interpolates linearly in OKLab. t=0 returns c, t=1 returns other.
func (c Color) Mix(other Color, t float64) Color {
	return Color{
		L: c.L + (other.L-c.L)*t,
		A: c.A + (other.A-c.A)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// InGamut reports whether the colour is representable in sRGB without clipping.
func (c Color) InGamut() bool {
	r, g, b := c.linear()
	return inUnit(r) && inUnit(g) && inUnit(b)
}

// RGB renders the colour to 8-bit sRGB after gamut mapping.
func (c Color) RGB() RGB {
	r, g, b := c.GamutMap().sRGB().Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Hex renders the colour as lowercase "#rrggbb" after gamut mapping.
func (c Color) Hex() string {
	return c.RGB().Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	l, ch, h := c.LCH()
	return fmt.Sprintf("oklch(%.4f %.4f %.2f)", l, ch, h)
}

func (c Color) sRGB() colorful.Color {
	r, g, b := c.linear()
	return colorful.LinearRgb(r, g, b)
}

// linear converts OKLab to linear-light sRGB.
func (c Color) linear() (r, g, b float64) {
	l := c.L + 0.3963377774*c.A + 0.2158037573*c.B
	m := c.L - 0.1055613458*c.A - 0.0638541728*c.B
	s := c.L - 0.0894841775*c.A - 1.2914855480*c.B

	l = l * l * l
	m = m * m * m
	s = s * s * s

	r = 4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g = -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b = -0.0041960863*l - 0.7034186147*m + 1.7076147010*s
	return r, g, b
}

func fromLinear(r, g, b float64) Color {
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	l = math.Cbrt(l)
	m = math.Cbrt(m)
	s = math.Cbrt(s)

	return Color{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}
