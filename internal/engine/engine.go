// Package engine runs the image to palette pipeline: cache probe, anchor
// extraction, mood generation and cache store.
package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/jmylchreest/prism/internal/anchor"
	"github.com/jmylchreest/prism/internal/cache"
	"github.com/jmylchreest/prism/internal/config"
	imageutil "github.com/jmylchreest/prism/internal/image"
	"github.com/jmylchreest/prism/internal/mood"
)

// Engine resolves palettes for images. It is safe for concurrent use.
type Engine struct {
	cache     *cache.Cache
	moods     *config.Moods
	extractor *anchor.Extractor
	generator *mood.Generator
	workers   int
	logger    hclog.Logger

	fs afero.Fs
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs sets the filesystem images are read from. It should match the
// filesystem of the cache so that hashes and pixels come from the same bytes.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithWorkers overrides the precache pool size from the moods file.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine. A nil cache disables caching and nil moods uses the
// built-in set.
func New(c *cache.Cache, moods *config.Moods, opts ...Option) *Engine {
	if moods == nil {
		moods = config.Builtin()
	}
	e := &Engine{
		cache:   c,
		moods:   moods,
		workers: moods.Workers,
		logger:  hclog.NewNullLogger(),
		fs:      afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = config.DefaultWorkers
	}
	e.logger = e.logger.Named("engine")
	e.extractor = anchor.New(imageutil.NewFileLoaderFs(e.fs), e.logger)
	e.generator = mood.NewGenerator(e.logger)
	return e
}

// Moods returns the mood set the engine resolves names against.
func (e *Engine) Moods() *config.Moods {
	return e.moods
}

// Workers returns the precache pool size.
func (e *Engine) Workers() int {
	return e.workers
}

// Result is the outcome of Resolve.
type Result struct {
	Image   string         `json:"image"`
	Mood    string         `json:"mood"`
	Hash    string         `json:"hash,omitempty"`
	Cached  bool           `json:"cached"`
	Anchor  *anchor.Result `json:"anchor,omitempty"`
	Palette *mood.Palette  `json:"palette"`
	// Warnings collects configuration fallbacks. It is nil on a cache hit
	// unless the mood name itself fell back.
	Warnings []string `json:"warnings,omitempty"`
}

// Resolve returns the palette for imagePath under moodName, generating and
// caching it on a miss. An empty moodName selects the active mood. A failed
// extraction still yields a palette built from anchor.FailureHex; such
// palettes are not cached. Cache write failures are logged, not returned.
func (e *Engine) Resolve(ctx context.Context, imagePath, moodName string) (*Result, error) {
	return e.resolve(ctx, imagePath, moodName, false)
}

// Regenerate is Resolve without the cache probe: the palette is always
// generated and replaces any cached entry. Used after mood definitions change.
func (e *Engine) Regenerate(ctx context.Context, imagePath, moodName string) (*Result, error) {
	return e.resolve(ctx, imagePath, moodName, true)
}

func (e *Engine) resolve(ctx context.Context, imagePath, moodName string, force bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, cfg, warn := e.moods.Resolve(moodName)
	res := &Result{Image: imagePath, Mood: name}
	if warn != nil {
		e.logger.Warn("mood fallback", "error", warn)
		res.Warnings = append(res.Warnings, warn.Error())
	}

	key, keyed := e.key(imagePath, name)
	if keyed {
		res.Hash = key.Hash
	}
	if keyed && !force {
		p, ok, err := e.cache.Lookup(key)
		if err != nil {
			e.logger.Warn("cache lookup failed", "key", key.String(), "error", err)
		} else if ok {
			e.logger.Debug("cache hit", "image", imagePath, "key", key.String())
			res.Cached = true
			res.Palette = p
			return res, nil
		}
	}

	ar := e.extractor.ExtractFile(imagePath, cfg.FallbackAnchor)
	res.Anchor = &ar

	p, err := e.generator.Generate(ar.Hex, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate palette: %w", err)
	}
	res.Palette = p
	res.Warnings = append(res.Warnings, p.Warnings...)

	if keyed && !ar.Failed {
		if err := e.cache.Store(key, p); err != nil {
			e.logger.Warn("failed to cache palette", "key", key.String(), "error", err)
		}
	}
	return res, nil
}

// key returns the cache key for imagePath, or false when caching is disabled
// or the image cannot be hashed.
func (e *Engine) key(imagePath, moodName string) (cache.Key, bool) {
	if e.cache == nil {
		return cache.Key{}, false
	}
	key, err := e.cache.KeyFor(imagePath, moodName)
	if err != nil {
		e.logger.Debug("image not cacheable", "image", imagePath, "error", err)
		return cache.Key{}, false
	}
	return key, true
}

// Anchor extracts the anchor of imagePath using moodName's fallback anchor.
func (e *Engine) Anchor(imagePath, moodName string) anchor.Result {
	_, cfg, warn := e.moods.Resolve(moodName)
	if warn != nil {
		e.logger.Warn("mood fallback", "error", warn)
	}
	return e.extractor.ExtractFile(imagePath, cfg.FallbackAnchor)
}

// Generate builds the palette for an anchor colour under moodName, bypassing
// extraction and the cache.
func (e *Engine) Generate(anchorHex, moodName string) (*mood.Palette, *mood.Report, error) {
	_, cfg, warn := e.moods.Resolve(moodName)
	if warn != nil {
		e.logger.Warn("mood fallback", "error", warn)
	}
	return e.generator.GenerateWithReport(anchorHex, cfg)
}
