package mood

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/prism/internal/colour"
)

// Temperature and pole constants.
const (
	// CoolThreshold is the OKLab b below which an anchor is cool.
	CoolThreshold = 0.02

	CoolPole = 270.0
	WarmPole = 90.0

	CoolShadow = "#1a1c2c"
	WarmShadow = "#a0826d"
)

// Hero loop constants.
const (
	HeroSeedLightness = 0.65
	HeroMaxIterations = 20
	HeroChromaStep    = 1.1
	// HeroChromaCeiling is the absolute OKLab chroma at which the loop gives up.
	HeroChromaCeiling = 0.50
)

// Derived-role constants.
const (
	semanticHarmony = 0.20
	semanticEpsilon = 0.001

	uiSecLift   = 0.08
	uiSecChroma = 0.90

	synKeyLightness = 0.70
	synKeyChroma    = 1.2
	synSiblingHue   = 30.0
	synAccLightness = 0.68
	synAccChroma    = 1.1
)

// Semantic bases in OKLab.
var semanticBases = []struct {
	role string
	base colour.Color
}{
	{RoleSemRed, colour.FromOKLab(0.65, 0.25, 0.08)},
	{RoleSemGreen, colour.FromOKLab(0.70, 0.20, 0.40)},
	{RoleSemYellow, colour.FromOKLab(0.75, 0.18, 0.17)},
	{RoleSemBlue, colour.FromOKLab(0.70, 0.22, -0.20)},
}

// text tier lightness and chroma multipliers.
var (
	harmonizedTiers = []tier{
		{role: RoleFG, lightness: 0.90, chroma: 0.10},
		{role: RoleFGDim, lightness: 0.75, chroma: 0.10},
		{role: RoleFGMuted, lightness: 0.55, chroma: 0.05},
	}
	inversionTiers = []tier{
		{role: RoleFG, lightness: 0.90},
		{role: RoleFGDim, lightness: 0.70},
		{role: RoleFGMuted, lightness: 0.55},
	}
)

type tier struct {
	role      string
	lightness float64
	chroma    float64
}

// HeroExit is the reason the hero loop stopped.
type HeroExit string

const (
	// HeroExitDistance means the target distance from the background was met.
	HeroExitDistance HeroExit = "distance"
	// HeroExitChromaCeiling means chroma passed HeroChromaCeiling.
	HeroExitChromaCeiling HeroExit = "chroma_ceiling"
	// HeroExitIterations means HeroMaxIterations passed without convergence.
	HeroExitIterations HeroExit = "iterations"
	// HeroExitNone is reported by algorithms without a loop.
	HeroExitNone HeroExit = "none"
)

// HeroTrace describes how the hero colour was reached.
type HeroTrace struct {
	Algorithm  Algorithm    `json:"algorithm"`
	Seed       colour.Color `json:"seed"`
	Result     colour.Color `json:"result"`
	Iterations int          `json:"iterations"`
	Exit       HeroExit     `json:"exit"`
	Distance   float64      `json:"distance"`
}

// Report holds the intermediate values of a generation, for diagnostics.
type Report struct {
	Anchor     colour.Color            `json:"anchor"`
	Cool       bool                    `json:"cool"`
	Pole       float64                 `json:"pole"`
	Background colour.Color            `json:"background"`
	Hero       HeroTrace               `json:"hero"`
	Text       map[string]colour.Color `json:"text"`
	Warnings   []error                 `json:"-"`
}

// Generator builds palettes. It is stateless and safe for concurrent use.
type Generator struct {
	logger hclog.Logger
}

// NewGenerator creates a Generator. A nil logger discards output.
func NewGenerator(logger hclog.Logger) *Generator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Generator{logger: logger.Named("mood")}
}

// Generate builds the palette for anchorHex under cfg. A nil cfg uses
// DefaultConfig. The only error is a malformed anchor.
func (g *Generator) Generate(anchorHex string, cfg *Config) (*Palette, error) {
	p, _, err := g.GenerateWithReport(anchorHex, cfg)
	return p, err
}

// GenerateWithReport is Generate that also returns the intermediate values.
func (g *Generator) GenerateWithReport(anchorHex string, cfg *Config) (*Palette, *Report, error) {
	anchor, err := colour.ParseHex(anchorHex)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse anchor: %w", err)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := newState(anchor)
	bg := s.background(cfg.Background)
	hero := s.hero(cfg.Hero, bg)
	text := s.text(cfg.Text)

	for _, w := range s.warnings {
		g.logger.Warn("mood configuration fallback", "error", w)
	}

	colours := make(map[string]string, len(FixedRoles())+len(Aliases())+2)
	colours[RoleAnchor] = anchor.Hex()
	colours[RoleBG] = bg.Hex()
	colours[RoleUIPrim] = hero.Result.Hex()
	colours[RoleUISec] = bg.WithLightness(bg.L + uiSecLift).ScaleChroma(uiSecChroma).Hex()
	for role, c := range text {
		colours[role] = c.Hex()
	}
	for role, c := range s.semantics() {
		colours[role] = c.Hex()
	}
	for role, c := range s.syntax() {
		colours[role] = c.Hex()
	}
	for alias, role := range Aliases() {
		colours[alias] = colours[role]
	}
	colours[RoleBarBG] = anchor.RGB().CSSRgba(BarAlpha)

	palette := &Palette{Colors: colours}
	for _, w := range s.warnings {
		palette.Warnings = append(palette.Warnings, w.Error())
	}

	report := &Report{
		Anchor:     anchor,
		Cool:       s.cool,
		Pole:       s.pole,
		Background: bg,
		Hero:       hero,
		Text:       text,
		Warnings:   s.warnings,
	}
	g.logger.Debug("generated palette", "anchor", colours[RoleAnchor], "cool", s.cool,
		"hero_exit", hero.Exit, "hero_iterations", hero.Iterations)
	return palette, report, nil
}

// state carries the per-anchor derived values through one generation.
type state struct {
	anchor   colour.Color
	chroma   float64
	hue      float64
	cool     bool
	pole     float64
	shadow   colour.Color
	warnings []error
}

func newState(anchor colour.Color) *state {
	s := &state{
		anchor: anchor,
		chroma: anchor.Chroma(),
		hue:    anchor.Hue(),
		cool:   IsCool(anchor),
	}
	if s.cool {
		s.pole = CoolPole
		s.shadow = colour.MustParseHex(CoolShadow)
	} else {
		s.pole = WarmPole
		s.shadow = colour.MustParseHex(WarmShadow)
	}
	return s
}

// IsCool reports whether c counts as a cool colour.
func IsCool(c colour.Color) bool {
	return c.B < CoolThreshold
}

func (s *state) warn(err error) {
	if err != nil {
		s.warnings = append(s.warnings, err)
	}
}

func (s *state) background(cfg BackgroundConfig) colour.Color {
	algo, err := resolveAlgorithm("background", cfg.Algo, BackgroundAlgorithms())
	s.warn(err)
	targetL := orDefault(cfg.TargetL, DefaultTargetL)

	if algo == BackgroundFlat {
		return s.anchor.WithLightness(targetL)
	}

	root := s.shadow
	if cfg.ShadowRoot != "" && cfg.ShadowRoot != AdaptiveShadowRoot {
		parsed, err := colour.ParseHex(cfg.ShadowRoot)
		if err != nil {
			s.warn(fmt.Errorf("%w: shadow_root: %w", ErrConfigurationFallback, err))
		} else {
			root = parsed
		}
	}

	strength := orDefault(cfg.MixStrength, DefaultMixStrength)
	bg := root.Mix(s.anchor, 1-strength).WithLightness(targetL)

	if targetL < 0.5 {
		boost := orDefault(cfg.WarmthBoost, DefaultWarmthBoost)
		if s.cool {
			bg.B -= boost / 2
		} else {
			bg.B += boost
		}
	}

	if bg.L > 0 {
		bg = bg.ScaleChroma(math.Sqrt(bg.L))
	}
	return bg
}

// chromaBoost is the log-damped boost applied to the hero seed.
func chromaBoost(chroma float64) float64 {
	return 1 + 0.4*math.Log1p(3*chroma)
}

func (s *state) hero(cfg HeroConfig, bg colour.Color) HeroTrace {
	algo, err := resolveAlgorithm("hero", cfg.Algo, HeroAlgorithms())
	s.warn(err)

	switch algo {
	case HeroAnchor:
		return HeroTrace{Algorithm: algo, Seed: s.anchor, Result: s.anchor, Exit: HeroExitNone}
	case HeroLogBoostRotate:
		boost := chromaBoost(s.chroma)
		c := colour.FromOKLab(HeroSeedLightness, s.anchor.A*boost, s.anchor.B*boost)
		c = c.WithHue(c.Hue() + orDefault(cfg.Rotation, DefaultRotation))
		return HeroTrace{Algorithm: algo, Seed: c, Result: c, Exit: HeroExitNone}
	}

	method := colour.DeltaCMC
	if cfg.DeltaMethod != "" {
		method = colour.DeltaMethod(cfg.DeltaMethod)
		if method != colour.DeltaCMC && method != colour.DeltaCIEDE2000 {
			s.warn(fmt.Errorf("%w: unknown delta method %q, using %q", ErrConfigurationFallback, cfg.DeltaMethod, colour.DeltaCMC))
			method = colour.DeltaCMC
		}
	}

	trace := RunHeroLoop(s.anchor, bg, orDefault(cfg.TargetDelta, DefaultTargetDelta), orDefault(cfg.HueFence, DefaultHueFence), method)
	trace.Algorithm = algo
	return trace
}

// RunHeroLoop seeds a hero from anchor and raises its chroma until it is
// targetDelta away from bg. The hue is fenced to within fence degrees of the
// anchor hue. Escape conditions are checked in order: distance, chroma
// ceiling, iteration count.
func RunHeroLoop(anchor, bg colour.Color, targetDelta, fence float64, method colour.DeltaMethod) HeroTrace {
	anchorHue := anchor.Hue()
	hero := anchor.WithLightness(HeroSeedLightness).ScaleChroma(chromaBoost(anchor.Chroma()))
	trace := HeroTrace{Seed: hero, Exit: HeroExitIterations}

	for range HeroMaxIterations {
		if colour.Delta(method, hero, bg) >= targetDelta {
			trace.Exit = HeroExitDistance
			break
		}

		hero = hero.ScaleChroma(HeroChromaStep)
		if clamped := colour.ClampHue(hero.Hue(), anchorHue, fence); clamped != hero.Hue() {
			hero = hero.WithHue(clamped)
		}
		trace.Iterations++

		if hero.Chroma() > HeroChromaCeiling {
			trace.Exit = HeroExitChromaCeiling
			break
		}
	}

	trace.Result = hero
	trace.Distance = colour.Delta(method, hero, bg)
	return trace
}

func (s *state) text(cfg TextConfig) map[string]colour.Color {
	algo, err := resolveAlgorithm("text", cfg.Algo, TextAlgorithms())
	s.warn(err)

	out := make(map[string]colour.Color, 3)

	if algo == TextTempInversion {
		shift := orDefault(cfg.Shift, DefaultShift)
		a := s.anchor.A * 0.1
		b := s.anchor.B * 0.1
		if s.cool {
			b += shift
		} else {
			b -= shift
		}
		for _, t := range inversionTiers {
			out[t.role] = colour.FromOKLab(t.lightness, a, b)
		}
		return out
	}

	hue := colour.RotateToward(s.hue, s.pole, orDefault(cfg.Drift, DefaultDrift))
	bias := orDefault(cfg.WarmthBias, true)
	for _, t := range harmonizedTiers {
		c := colour.FromOKLCH(t.lightness, s.chroma*t.chroma, hue)
		if bias {
			haze := 0.005 + t.lightness*0.025
			if s.cool {
				c.B -= haze
			} else {
				c.B += haze
			}
		}
		out[t.role] = c
	}
	return out
}

func (s *state) semantics() map[string]colour.Color {
	out := make(map[string]colour.Color, len(semanticBases))
	for _, sb := range semanticBases {
		ratio := s.chroma / (s.chroma + sb.base.Chroma() + semanticEpsilon)
		mixed := sb.base.Mix(s.anchor, ratio)
		out[sb.role] = mixed.WithHue(colour.RotateToward(mixed.Hue(), s.pole, semanticHarmony))
	}
	return out
}

func (s *state) syntax() map[string]colour.Color {
	key := s.anchor.WithLightness(synKeyLightness).ScaleChroma(synKeyChroma)
	return map[string]colour.Color{
		RoleSynKey: key,
		RoleSynFun: key.WithHue(key.Hue() + synSiblingHue),
		RoleSynStr: key.WithHue(key.Hue() - synSiblingHue),
		RoleSynAcc: colour.FromOKLCH(synAccLightness, s.chroma*synAccChroma, s.hue+180),
	}
}

// IsFallback reports whether err is a configuration fallback warning.
func IsFallback(err error) bool {
	return errors.Is(err, ErrConfigurationFallback)
}
