package mood

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/prism/internal/colour"
)

var testAnchors = []string{
	"#220975", "#e07848", "#2d5a3d", "#1e4d6b", "#d4a5a5",
	"#4a3b5c", "#c19a6b", "#6b9dad", "#8b3a3a", "#4a5568",
	"#000000", "#ffffff", "#808080", "#ff0000", "#00ff00", "#0000ff",
}

func TestGenerateAllRoles(t *testing.T) {
	gen := NewGenerator(nil)
	moods := Builtin()
	moods["nil"] = nil

	for name, cfg := range moods {
		for _, anchor := range testAnchors {
			t.Run(name+"/"+anchor, func(t *testing.T) {
				p, err := gen.Generate(anchor, cfg)
				require.NoError(t, err)
				require.NoError(t, p.Validate())
				for _, role := range FixedRoles() {
					assert.Regexp(t, `^#[0-9a-f]{6}$`, p.Get(role), role)
				}
				assert.Empty(t, p.Warnings)
			})
		}
	}
}

func TestGenerateAliasesAndAuxiliary(t *testing.T) {
	p, err := NewGenerator(nil).Generate("#E07848", nil)
	require.NoError(t, err)

	assert.Equal(t, "#e07848", p.Get(RoleAnchor))
	for alias, role := range Aliases() {
		assert.Equal(t, p.Get(role), p.Get(alias), alias)
	}
	assert.Equal(t, "rgba(224, 120, 72, 0.85)", p.Get(RoleBarBG))
}

func TestGenerateDeterministic(t *testing.T) {
	gen := NewGenerator(nil)
	for name, cfg := range Builtin() {
		a, err := gen.Generate("#4a3b5c", cfg)
		require.NoError(t, err)
		b, err := gen.Generate("#4a3b5c", cfg)
		require.NoError(t, err)
		assert.Equal(t, a.Colors, b.Colors, name)
	}
}

func TestGenerateMalformedAnchor(t *testing.T) {
	_, err := NewGenerator(nil).Generate("#12345", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, colour.ErrInvalidColorFormat)
}

func TestCoolAnchorScenario(t *testing.T) {
	p, report, err := NewGenerator(nil).GenerateWithReport("#1E4D6B", nil)
	require.NoError(t, err)

	assert.True(t, report.Cool)
	assert.Equal(t, CoolPole, report.Pole)
	assert.InDelta(t, DefaultTargetL, report.Background.L, 1e-9)
	assert.Less(t, report.Background.B, 0.0, "cool background leans blue")

	bg, err := colour.ParseHex(p.Get(RoleBG))
	require.NoError(t, err)
	assert.InDelta(t, DefaultTargetL, bg.L, 0.01)
}

func TestWarmAnchorScenario(t *testing.T) {
	p, report, err := NewGenerator(nil).GenerateWithReport("#E07848", nil)
	require.NoError(t, err)

	assert.False(t, report.Cool)
	assert.Equal(t, WarmPole, report.Pole)

	anchorHue := report.Anchor.Hue()
	require.Less(t, anchorHue, WarmPole)

	fgHue := report.Text[RoleFG].Hue()
	assert.Greater(t, fgHue, anchorHue)
	assert.Less(t, fgHue, WarmPole)

	fg, err := colour.ParseHex(p.Get(RoleFG))
	require.NoError(t, err)
	assert.Greater(t, fg.Hue(), anchorHue)
	assert.Less(t, fg.Hue(), WarmPole)
}

func TestHeroLoopZeroTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hero.TargetDelta = Float(0)

	for _, anchor := range testAnchors {
		p, report, err := NewGenerator(nil).GenerateWithReport(anchor, cfg)
		require.NoError(t, err)

		assert.Equal(t, 0, report.Hero.Iterations, anchor)
		assert.Equal(t, HeroExitDistance, report.Hero.Exit, anchor)
		assert.Equal(t, report.Hero.Seed, report.Hero.Result, anchor)
		assert.Equal(t, report.Hero.Seed.Hex(), p.Get(RoleUIPrim), anchor)
	}
}

func TestHeroLoopHueFence(t *testing.T) {
	bg := colour.MustParseHex("#1b1d26")
	for _, fence := range []float64{0, 5, 10, 25, 45, 90} {
		for _, hex := range testAnchors {
			anchor := colour.MustParseHex(hex)
			trace := RunHeroLoop(anchor, bg, 1000, fence, colour.DeltaCMC)
			if anchor.Chroma() < 1e-6 {
				continue
			}
			dist := colour.HueDistance(trace.Result.Hue(), anchor.Hue())
			assert.LessOrEqual(t, dist, fence+1e-9, "anchor %s fence %.0f", hex, fence)
		}
	}
}

func TestHeroLoopExitReasons(t *testing.T) {
	bg := colour.MustParseHex("#1b1d26")

	vivid := RunHeroLoop(colour.MustParseHex("#ff0000"), bg, 1000, 25, colour.DeltaCMC)
	assert.Equal(t, HeroExitChromaCeiling, vivid.Exit)
	assert.Equal(t, 5, vivid.Iterations)
	assert.Greater(t, vivid.Result.Chroma(), HeroChromaCeiling)

	neutral := RunHeroLoop(colour.MustParseHex("#808080"), bg, 1000, 25, colour.DeltaCMC)
	assert.Equal(t, HeroExitIterations, neutral.Exit)
	assert.Equal(t, HeroMaxIterations, neutral.Iterations)

	easy := RunHeroLoop(colour.MustParseHex("#e07848"), bg, 10, 25, colour.DeltaCIEDE2000)
	assert.Equal(t, HeroExitDistance, easy.Exit)
	assert.GreaterOrEqual(t, easy.Distance, 10.0)
}

func TestUnknownAlgorithmFallsBack(t *testing.T) {
	gen := NewGenerator(nil)
	want, err := gen.Generate("#2d5a3d", &Config{})
	require.NoError(t, err)

	cfg := &Config{
		Background: BackgroundConfig{Algo: "sepia"},
		Hero:       HeroConfig{Algo: "nope", DeltaMethod: "euclid"},
		Text:       TextConfig{Algo: "shouty"},
	}
	got, report, err := gen.GenerateWithReport("#2d5a3d", cfg)
	require.NoError(t, err)

	assert.Equal(t, want.Colors, got.Colors)
	assert.Len(t, got.Warnings, 4)
	require.Len(t, report.Warnings, 4)
	for _, w := range report.Warnings {
		assert.True(t, errors.Is(w, ErrConfigurationFallback), w.Error())
		assert.True(t, IsFallback(w))
	}
}

func TestEmptyConfigMatchesDefault(t *testing.T) {
	gen := NewGenerator(nil)
	a, err := gen.Generate("#6b9dad", &Config{})
	require.NoError(t, err)
	b, err := gen.Generate("#6b9dad", nil)
	require.NoError(t, err)
	assert.Equal(t, b.Colors, a.Colors)
}

func TestAlternativeAlgorithms(t *testing.T) {
	gen := NewGenerator(nil)

	cfg := &Config{
		Background: BackgroundConfig{Algo: BackgroundFlat, TargetL: Float(0.3)},
		Hero:       HeroConfig{Algo: HeroAnchor},
		Text:       TextConfig{Algo: TextTempInversion},
	}
	p, report, err := gen.GenerateWithReport("#8b3a3a", cfg)
	require.NoError(t, err)

	assert.Equal(t, "#8b3a3a", p.Get(RoleUIPrim))
	assert.Equal(t, HeroExitNone, report.Hero.Exit)
	assert.InDelta(t, 0.3, report.Background.L, 1e-9)
	assert.InDelta(t, report.Anchor.Hue(), report.Background.Hue(), 1e-9)

	// Warm anchor: text leans cooler than the scaled anchor.
	assert.InDelta(t, report.Anchor.B*0.1-DefaultShift, report.Text[RoleFG].B, 1e-12)
	assert.InDelta(t, 0.70, report.Text[RoleFGDim].L, 1e-12)

	cfg.Hero = HeroConfig{Algo: HeroLogBoostRotate, Rotation: Float(30)}
	_, report, err = gen.GenerateWithReport("#8b3a3a", cfg)
	require.NoError(t, err)
	assert.InDelta(t, 30, colour.ShortestArc(report.Anchor.Hue(), report.Hero.Result.Hue()), 1e-6)
	assert.InDelta(t, HeroSeedLightness, report.Hero.Result.L, 1e-12)
}

func TestCustomShadowRoot(t *testing.T) {
	gen := NewGenerator(nil)
	cfg := DefaultConfig()
	cfg.Background.ShadowRoot = "#000000"
	a, err := gen.Generate("#c19a6b", cfg)
	require.NoError(t, err)
	assert.Empty(t, a.Warnings)

	cfg.Background.ShadowRoot = "charcoal"
	b, err := gen.Generate("#c19a6b", cfg)
	require.NoError(t, err)
	require.Len(t, b.Warnings, 1)

	def, err := gen.Generate("#c19a6b", nil)
	require.NoError(t, err)
	assert.Equal(t, def.Get(RoleBG), b.Get(RoleBG))
}

func TestGradeAndAudit(t *testing.T) {
	assert.Equal(t, GradePass, GradeRatio(7))
	assert.Equal(t, GradeWarn, GradeRatio(6.99))
	assert.Equal(t, GradeWarn, GradeRatio(4.5))
	assert.Equal(t, GradeFail, GradeRatio(4.49))

	p, err := NewGenerator(nil).Generate("#1e4d6b", nil)
	require.NoError(t, err)
	checks := Audit(p)
	require.Len(t, checks, len(AuditRoles()))
	assert.Equal(t, RoleFG, checks[0].Role)
	assert.Equal(t, GradePass, checks[0].Grade)

	broken := &Palette{Colors: map[string]string{RoleBG: "#000000", RoleFG: "#ffffff"}}
	checks = Audit(broken)
	assert.Equal(t, GradePass, checks[0].Grade)
	assert.Equal(t, GradeFail, checks[1].Grade)
	assert.Equal(t, GradeFail, Worst(checks))
	assert.Equal(t, GradePass, Worst(checks[:1]))
}

func TestPaletteValidate(t *testing.T) {
	p, err := NewGenerator(nil).Generate("#4a5568", nil)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	c := p.Clone()
	c.Colors[RoleFG] = "#FFFFFF"
	assert.Error(t, c.Validate())
	assert.NotEqual(t, p.Get(RoleFG), c.Get(RoleFG))

	delete(c.Colors, RoleSynAcc)
	assert.Error(t, c.Validate())

	assert.Error(t, (&Palette{}).Validate())
}
