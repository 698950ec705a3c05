package colour

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercase", input: "#1e4d6b", want: "#1e4d6b"},
		{name: "uppercase", input: "#1E4D6B", want: "#1e4d6b"},
		{name: "no hash", input: "e07848", want: "#e07848"},
		{name: "surrounding space", input: "  #ffffff ", want: "#ffffff"},
		{name: "short form", input: "#fff", wantErr: true},
		{name: "eight digits", input: "#ff00ff00", wantErr: true},
		{name: "not hex", input: "#gg0000", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "css function", input: "rgb(1, 2, 3)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseHex(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidColorFormat), "error should wrap ErrInvalidColorFormat: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Hex())
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	// A coarse grid over the RGB cube, corners included.
	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 17 {
			for b := 0; b <= 255; b += 15 {
				hex := fmt.Sprintf("#%02x%02x%02x", r, g, b)
				c, err := ParseHex(hex)
				require.NoError(t, err)
				require.True(t, c.InGamut(), "%s should decode in gamut", hex)
				assert.Equal(t, hex, c.Hex())
				assert.Equal(t, hex, ToHex(c.L, c.A, c.B))
			}
		}
	}
}

func TestToPerceptual(t *testing.T) {
	l, c, h, err := ToPerceptual("#ffffff")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l, 1e-4)
	assert.InDelta(t, 0.0, c, 1e-4)
	_ = h

	l, c, h, err = ToPerceptual("#ff0000")
	require.NoError(t, err)
	assert.InDelta(t, 0.628, l, 0.002)
	assert.InDelta(t, 0.258, c, 0.002)
	assert.InDelta(t, 29.2, h, 0.5)

	_, _, _, err = ToPerceptual("nope")
	assert.ErrorIs(t, err, ErrInvalidColorFormat)
}

func TestGamutMapPreservesLightnessAndHue(t *testing.T) {
	tests := []struct {
		name string
		in   Color
	}{
		{name: "very vivid red", in: FromOKLCH(0.6, 0.5, 29)},
		{name: "vivid cyan", in: FromOKLCH(0.8, 0.4, 200)},
		{name: "deep blue", in: FromOKLCH(0.3, 0.45, 265)},
		{name: "pale yellow", in: FromOKLCH(0.95, 0.3, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, tt.in.InGamut())
			mapped := tt.in.GamutMap()
			assert.True(t, mapped.InGamut())
			assert.InDelta(t, tt.in.L, mapped.L, 1e-9)
			assert.InDelta(t, 0, HueDistance(tt.in.Hue(), mapped.Hue()), 1e-6)
			assert.Less(t, mapped.Chroma(), tt.in.Chroma())

			// The rendered hex must stay close to the mapped colour.
			back, err := ParseHex(mapped.Hex())
			require.NoError(t, err)
			assert.Less(t, PerceptualDistance(mapped, back), 1.0)
		})
	}
}

func TestGamutMapLightnessExtremes(t *testing.T) {
	assert.Equal(t, "#ffffff", FromOKLCH(1.2, 0.1, 40).Hex())
	assert.Equal(t, "#000000", FromOKLCH(-0.1, 0.1, 40).Hex())
}

func TestPerceptualDistance(t *testing.T) {
	colours := []string{"#000000", "#ffffff", "#1e4d6b", "#e07848", "#808080", "#ff0000", "#00ff00"}

	for _, a := range colours {
		ca := MustParseHex(a)
		assert.InDelta(t, 0, PerceptualDistance(ca, ca), 1e-9, "distance of %s to itself", a)
		for _, b := range colours {
			cb := MustParseHex(b)
			d1 := PerceptualDistance(ca, cb)
			d2 := PerceptualDistance(cb, ca)
			assert.InDelta(t, d1, d2, 1e-9, "distance %s<->%s must be symmetric", a, b)
			assert.GreaterOrEqual(t, d1, 0.0)
		}
	}

	// Black to white is 100 in CIEDE2000.
	assert.InDelta(t, 100, PerceptualDistance(MustParseHex("#000000"), MustParseHex("#ffffff")), 0.5)
}

func TestDeltaECMC(t *testing.T) {
	a := MustParseHex("#1e4d6b")
	assert.InDelta(t, 0, DeltaECMC(a, a), 1e-9)

	dark := FromOKLCH(0.26, 0.02, 240)
	light := FromOKLCH(0.65, 0.1, 240)
	assert.Greater(t, DeltaECMC(light, dark), 20.0)
	assert.Equal(t, DeltaECMC(light, dark), Delta(DeltaCMC, light, dark))
	assert.Equal(t, PerceptualDistance(light, dark), Delta(DeltaCIEDE2000, light, dark))
}

func TestContrastRatio(t *testing.T) {
	tests := []struct {
		name string
		fg   string
		bg   string
		want float64
	}{
		{name: "black on white", fg: "#000000", bg: "#ffffff", want: 21},
		{name: "same colour", fg: "#777777", bg: "#777777", want: 1},
		{name: "grey on white", fg: "#767676", bg: "#ffffff", want: 4.54},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContrastRatioHex(tt.fg, tt.bg)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)

			swapped, err := ContrastRatioHex(tt.bg, tt.fg)
			require.NoError(t, err)
			assert.Equal(t, got, swapped)
		})
	}

	_, err := ContrastRatioHex("#12", "#ffffff")
	assert.ErrorIs(t, err, ErrInvalidColorFormat)
}

func TestHueHelpers(t *testing.T) {
	assert.InDelta(t, 20, ShortestArc(350, 10), 1e-9)
	assert.InDelta(t, -20, ShortestArc(10, 350), 1e-9)
	assert.InDelta(t, 180, ShortestArc(0, 180), 1e-9)
	assert.InDelta(t, 20, HueDistance(350, 10), 1e-9)

	assert.InDelta(t, 49.5, RotateToward(45, 90, 0.1), 1e-9)
	assert.InDelta(t, 351, RotateToward(0, 270, 0.1), 1e-9)

	assert.InDelta(t, 125, ClampHue(170, 100, 25), 1e-9)
	assert.InDelta(t, 345, ClampHue(300, 10, 25), 1e-9)
	assert.InDelta(t, 110, ClampHue(110, 100, 25), 1e-9)

	assert.InDelta(t, 10, NormalizeHue(370), 1e-9)
	assert.InDelta(t, 350, NormalizeHue(-10), 1e-9)
}

func TestMixAndChroma(t *testing.T) {
	a := FromOKLab(0.2, 0.1, -0.1)
	b := FromOKLab(0.6, -0.1, 0.1)
	assert.Equal(t, a, a.Mix(b, 0))
	end := a.Mix(b, 1)
	assert.InDelta(t, b.L, end.L, 1e-12)
	assert.InDelta(t, b.A, end.A, 1e-12)
	assert.InDelta(t, b.B, end.B, 1e-12)

	mid := a.Mix(b, 0.5)
	assert.InDelta(t, 0.4, mid.L, 1e-12)
	assert.InDelta(t, 0, mid.Chroma(), 1e-12)

	c := FromOKLCH(0.5, 0.1, 120)
	assert.InDelta(t, 0.2, c.ScaleChroma(2).Chroma(), 1e-12)
	assert.InDelta(t, 120, c.ScaleChroma(2).Hue(), 1e-9)
	assert.InDelta(t, 300, c.WithHue(300).Hue(), 1e-9)
	assert.InDelta(t, 0.5, c.WithChroma(0.5).Chroma(), 1e-12)
}

func TestSwatch(t *testing.T) {
	DisableColourOutput = true
	defer func() { DisableColourOutput = false }()

	assert.Equal(t, "      #1e4d6b", Swatch("#1E4D6B", 6))
	assert.Equal(t, "rgba(1, 2, 3, 0.85)", Swatch("rgba(1, 2, 3, 0.85)", 6))
	assert.Equal(t, "abc", StripANSI("\033[48;2;1;2;3mabc\033[0m"))
}

func TestSampleHex(t *testing.T) {
	assert.Equal(t, "\033[48;2;0;0;0m\033[38;2;255;255;255m  Aa  \033[0m", SampleHex("#ffffff", "#000000", "Aa", 6))
	assert.Equal(t, "  Aa  ", SampleHex("rgba(1, 2, 3, 0.85)", "#000000", "Aa", 6))
	assert.Equal(t, "Aa", SampleHex("#ffffff", "#000000", "Aaa", 2))

	DisableColourOutput = true
	defer func() { DisableColourOutput = false }()
	assert.Equal(t, " Aa  ", SampleHex("#ffffff", "#000000", "Aa", 5))
}
