package colour

import "math"

// CIE LCh and Lab values are reported on the conventional 0-100 lightness scale.
// go-colorful works on a 0-1 scale, hence the factor.
const cieScale = 100.0

// CIELab returns CIE L*a*b* (D65) on the 0-100 scale.
func (c Color) CIELab() (l, a, b float64) {
	l, a, b = c.GamutMap().sRGB().Clamped().Lab()
	return l * cieScale, a * cieScale, b * cieScale
}

// CIELCh returns CIE LCh(ab) (D65): lightness 0-100, chroma and hue in degrees.
// The extraction thresholds are calibrated in this space.
func (c Color) CIELCh() (l, chroma, hue float64) {
	h, ch, lum := c.GamutMap().sRGB().Clamped().Hcl()
	return lum * cieScale, ch * cieScale, NormalizeHue(h)
}

// CIELChOf is a convenience for 8-bit pixels.
func CIELChOf(rgb RGB) (l, chroma, hue float64) {
	h, ch, lum := rgb.colorful().Hcl()
	return lum * cieScale, ch * cieScale, NormalizeHue(h)
}

// PerceptualDistance returns the CIEDE2000 difference between two colours on the
// 0-100 scale. It is symmetric and zero for identical colours.
func PerceptualDistance(a, b Color) float64 {
	ca := a.GamutMap().sRGB().Clamped()
	cb := b.GamutMap().sRGB().Clamped()
	return ca.DistanceCIEDE2000(cb) * cieScale
}

// DeltaECMC returns the CMC l:c (2:1) difference of sample from reference.
// CMC is not symmetric: the reference colour sets the weighting ellipse.
func DeltaECMC(reference, sample Color) float64 {
	const (
		weightL = 2.0
		weightC = 1.0
	)

	l1, a1, b1 := reference.CIELab()
	l2, a2, b2 := sample.CIELab()

	c1 := math.Hypot(a1, b1)
	c2 := math.Hypot(a2, b2)
	dl := l1 - l2
	dc := c1 - c2
	da := a1 - a2
	db := b1 - b2
	dh2 := math.Max(0, da*da+db*db-dc*dc)

	sl := 0.511
	if l1 >= 16 {
		sl = 0.040975 * l1 / (1 + 0.01765*l1)
	}
	sc := 0.0638*c1/(1+0.0131*c1) + 0.638

	h1 := NormalizeHue(math.Atan2(b1, a1) * 180 / math.Pi)
	var t float64
	if h1 >= 164 && h1 <= 345 {
		t = 0.56 + math.Abs(0.2*math.Cos((h1+168)*math.Pi/180))
	} else {
		t = 0.36 + math.Abs(0.4*math.Cos((h1+35)*math.Pi/180))
	}
	c14 := c1 * c1 * c1 * c1
	f := math.Sqrt(c14 / (c14 + 1900))
	sh := sc * (f*t + 1 - f)

	x := dl / (weightL * sl)
	y := dc / (weightC * sc)
	return math.Sqrt(x*x + y*y + dh2/(sh*sh))
}

// DeltaMethod names a colour difference formula.
type DeltaMethod string

const (
	// DeltaCMC is CMC l:c 2:1.
	DeltaCMC DeltaMethod = "cmc"
	// DeltaCIEDE2000 is CIEDE2000.
	DeltaCIEDE2000 DeltaMethod = "2000"
)

// Delta measures the difference of sample from reference using method.
// Unknown methods use CMC.
func Delta(method DeltaMethod, reference, sample Color) float64 {
	if method == DeltaCIEDE2000 {
		return PerceptualDistance(reference, sample)
	}
	return DeltaECMC(reference, sample)
}
