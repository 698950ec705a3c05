// Package anchor picks the single representative colour of an image by scoring
// its colour histogram for saliency.
package anchor

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/prism/internal/colour"
	imageutil "github.com/jmylchreest/prism/internal/image"
)

// Tuned thresholds. They are empirical and should be recalibrated against a
// reference corpus before being changed.
const (
	// CanonicalSize bounds both sides of the working copy of the image.
	CanonicalSize = 100

	// SaturationBoost is the imaging percentage applied before counting (+50% = 1.5x).
	SaturationBoost = 50

	// TopCandidates is the number of histogram entries that are scored.
	TopCandidates = 30

	// VividMinLightness and VividMinChroma admit any visibly coloured candidate.
	VividMinLightness = 1.0
	VividMinChroma    = 5.0

	// Mid-tone candidates only need a little chroma.
	MidMinLightness = 12.0
	MidMaxLightness = 98.0
	MidMinChroma    = 2.0

	// MonochromeChroma is the chroma below which the fallback anchor is used.
	MonochromeChroma = 5.0
)

// FailureHex is returned when extraction cannot complete.
const FailureHex = "#000000"

// HistogramEntry is one exact colour of the prepared image and its pixel count.
type HistogramEntry struct {
	Colour colour.RGB
	Count  int
}

// Result is the outcome of an extraction. It is never partially filled: a
// failed extraction carries FailureHex and Failed=true.
type Result struct {
	Hex     string  `json:"hex"`
	Chroma  float64 `json:"chroma"`
	Score   float64 `json:"score"`
	Rescued bool    `json:"rescued,omitempty"`
	Failed  bool    `json:"failed,omitempty"`
	Err     error   `json:"-"`
}

// Extractor turns images into anchor colours.
type Extractor struct {
	loader imageutil.Loader
	logger hclog.Logger
}

// New creates an Extractor. A nil loader reads from the OS filesystem and a nil
// logger discards output.
func New(loader imageutil.Loader, logger hclog.Logger) *Extractor {
	if loader == nil {
		loader = imageutil.NewFileLoader()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Extractor{loader: loader, logger: logger.Named("anchor")}
}

// ExtractFile loads and decodes path, then extracts its anchor.
func (e *Extractor) ExtractFile(path, fallbackHex string) Result {
	img, err := e.loader.Load(path)
	if err != nil {
		e.logger.Warn("extraction failed", "path", path, "error", err)
		return failed(err)
	}
	res := e.Extract(img, fallbackHex)
	e.logger.Debug("extracted anchor", "path", path, "hex", res.Hex, "chroma", res.Chroma, "rescued", res.Rescued)
	return res
}

// Extract returns the anchor of img. If the winning colour is near-neutral and
// fallbackHex is set, the fallback is returned instead. Extract never panics
// and never returns an error: failures yield FailureHex.
func (e *Extractor) Extract(img image.Image, fallbackHex string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", imageutil.ErrDecode, r)
			e.logger.Warn("extraction failed", "error", err)
			res = failed(err)
		}
	}()

	if img == nil || img.Bounds().Empty() {
		err := fmt.Errorf("%w: image has no pixels", imageutil.ErrDecode)
		e.logger.Warn("extraction failed", "error", err)
		return failed(err)
	}

	res = Select(Histogram(Prepare(img)))
	if res.Failed {
		e.logger.Warn("extraction failed", "error", res.Err)
		return res
	}

	rescued := Rescue(res, fallbackHex)
	if rescued.Failed {
		e.logger.Warn("monochrome rescue failed", "fallback", fallbackHex, "error", rescued.Err)
	} else if rescued.Rescued {
		e.logger.Debug("monochrome anchor rescued", "chroma", res.Chroma, "anchor", res.Hex, "fallback", rescued.Hex)
	}
	return rescued
}

// Prepare returns the working copy of img: fitted within CanonicalSize on both
// sides, preserving aspect ratio (small images are scaled up), then
// saturation boosted.
func Prepare(img image.Image) *image.NRGBA {
	w, h := fitSize(img.Bounds().Dx(), img.Bounds().Dy(), CanonicalSize)

	var resized *image.NRGBA
	if w == img.Bounds().Dx() && h == img.Bounds().Dy() {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return imaging.AdjustSaturation(resized, SaturationBoost)
}

// fitSize scales (w, h) so the longer side equals size.
func fitSize(w, h, size int) (int, int) {
	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)
	return nw, nh
}

// Histogram counts exact 8-bit colours, ignoring alpha. Entries are sorted by
// descending count, ties by ascending packed RGB, and truncated to TopCandidates.
func Histogram(img *image.NRGBA) []HistogramEntry {
	counts := make(map[colour.RGB]int)
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			counts[colour.RGB{R: row[x], G: row[x+1], B: row[x+2]}]++
		}
	}

	entries := make([]HistogramEntry, 0, len(counts))
	for rgb, n := range counts {
		entries = append(entries, HistogramEntry{Colour: rgb, Count: n})
	}
	slices.SortFunc(entries, func(a, b HistogramEntry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return int(a.Colour.Packed()) - int(b.Colour.Packed())
	})

	if len(entries) > TopCandidates {
		entries = entries[:TopCandidates]
	}
	return entries
}

// Valid reports whether a candidate with CIE lightness l and chroma c is
// coloured enough to be an anchor.
func Valid(l, c float64) bool {
	if l >= VividMinLightness && c > VividMinChroma {
		return true
	}
	return l >= MidMinLightness && l <= MidMaxLightness && c >= MidMinChroma
}

// Score is the saliency of a candidate: chroma weighted by log frequency.
func Score(chroma float64, count int) float64 {
	return chroma * math.Log(float64(max(count, 1)))
}

// Select scores the candidates and returns the winner. Candidates must be in
// descending frequency order; the first of equal scores wins. With no valid
// candidate the most frequent one is used.
func Select(candidates []HistogramEntry) Result {
	if len(candidates) == 0 {
		return failed(fmt.Errorf("%w: empty histogram", imageutil.ErrDecode))
	}

	var best Result
	found := false
	for _, cand := range candidates {
		l, c, _ := colour.CIELChOf(cand.Colour)
		if !Valid(l, c) {
			continue
		}
		score := Score(c, cand.Count)
		if score > best.Score {
			best = Result{Hex: cand.Colour.Hex(), Chroma: c, Score: score}
			found = true
		}
	}
	if found {
		return best
	}

	raw := candidates[0]
	_, c, _ := colour.CIELChOf(raw.Colour)
	return Result{Hex: raw.Colour.Hex(), Chroma: c, Score: Score(c, raw.Count)}
}

// Rescue applies the monochrome rescue: when res is near-neutral and a fallback
// is supplied, the fallback replaces it. A malformed fallback that would have
// been used yields FailureHex.
func Rescue(res Result, fallbackHex string) Result {
	if res.Failed || fallbackHex == "" || res.Chroma >= MonochromeChroma {
		return res
	}
	hex, err := colour.NormalizeHex(fallbackHex)
	if err != nil {
		return failed(fmt.Errorf("invalid fallback anchor: %w", err))
	}
	res.Hex = hex
	res.Rescued = true
	return res
}

func failed(err error) Result {
	return Result{Hex: FailureHex, Failed: true, Err: err}
}
