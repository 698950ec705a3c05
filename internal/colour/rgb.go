package colour

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents a colour in 8-bit sRGB.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// CSSRgba returns the colour as "rgba(r, g, b, a)" with alpha in [0, 1].
func (rgb RGB) CSSRgba(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", rgb.R, rgb.G, rgb.B, formatAlpha(alpha))
}

// RGBA implements color.Color.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return uint32(rgb.R) * 0x101, uint32(rgb.G) * 0x101, uint32(rgb.B) * 0x101, 0xffff
}

// Packed returns the colour as 0xRRGGBB.
func (rgb RGB) Packed() uint32 {
	return uint32(rgb.R)<<16 | uint32(rgb.G)<<8 | uint32(rgb.B)
}

// ToRGB converts a color.Color to RGB, dropping alpha.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

func (rgb RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(rgb.R) / 255.0, G: float64(rgb.G) / 255.0, B: float64(rgb.B) / 255.0}
}

// formatAlpha trims trailing zeros: 0.85 -> "0.85", 1 -> "1".
func formatAlpha(a float64) string {
	switch {
	case a <= 0:
		return "0"
	case a >= 1:
		return "1"
	}
	s := fmt.Sprintf("%.3f", a)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return s
}
