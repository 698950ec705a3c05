package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/prism/internal/anchor"
	"github.com/jmylchreest/prism/internal/cache"
	"github.com/jmylchreest/prism/internal/mood"
)

// ItemResult reports what Precache did for one image.
type ItemResult struct {
	Image string `json:"image"`
	Hash  string `json:"hash,omitempty"`
	// Anchor is the extracted anchor before any mood's rescue. It is nil when
	// every mood was already cached.
	Anchor    *anchor.Result `json:"anchor,omitempty"`
	Generated []string       `json:"generated,omitempty"`
	Cached    []string       `json:"cached,omitempty"`
	Err       error          `json:"-"`
}

// OK reports whether the image was fully processed.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// Precache generates and stores the palette of every configured mood for each
// image, using a pool of Workers goroutines. Each image is extracted at most
// once. Failures are reported per item and never abort the batch. Once ctx is
// cancelled no further images are started; those items carry ctx's error.
// Results are in the order of paths.
func (e *Engine) Precache(ctx context.Context, paths []string) []ItemResult {
	results := make([]ItemResult, len(paths))
	if e.cache == nil {
		for i, p := range paths {
			results[i] = ItemResult{Image: p, Err: errors.New("cache disabled")}
		}
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for i, path := range paths {
		results[i].Image = path
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i] = e.precacheOne(path)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Info("precache complete", "images", len(paths), "failed", failed, "workers", e.workers)
	return results
}

func (e *Engine) precacheOne(path string) ItemResult {
	item := ItemResult{Image: path}

	hash, err := e.cache.HashFile(path)
	if err != nil {
		item.Err = err
		e.logger.Warn("precache skipped image", "image", path, "error", err)
		return item
	}
	item.Hash = hash

	var pending []string
	for _, name := range e.moods.Names() {
		key := cache.Key{Hash: hash, Mood: name}
		if _, ok, err := e.cache.Lookup(key); err == nil && ok {
			item.Cached = append(item.Cached, name)
			continue
		}
		pending = append(pending, name)
	}
	if len(pending) == 0 {
		return item
	}

	base := e.extractor.ExtractFile(path, "")
	item.Anchor = &base
	if base.Failed {
		item.Err = fmt.Errorf("failed to extract anchor: %w", base.Err)
		return item
	}

	var errs []error
	for _, name := range pending {
		cfg := e.moods.Moods[name]
		ar := anchor.Rescue(base, cfg.FallbackAnchor)
		if ar.Failed {
			errs = append(errs, fmt.Errorf("mood %s: %w", name, ar.Err))
			continue
		}
		p, err := e.generator.Generate(ar.Hex, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("mood %s: %w", name, err))
			continue
		}
		if err := e.cache.Store(cache.Key{Hash: hash, Mood: name}, p); err != nil {
			errs = append(errs, fmt.Errorf("mood %s: %w", name, err))
			continue
		}
		item.Generated = append(item.Generated, name)
	}
	item.Err = errors.Join(errs...)
	if item.Err != nil {
		e.logger.Warn("precache incomplete", "image", path, "error", item.Err)
	}
	return item
}

// Comparison holds one image's palette under every configured mood.
type Comparison struct {
	Image  string        `json:"image"`
	Anchor anchor.Result `json:"anchor"`
	// Anchors is the anchor each mood generated from, after its rescue.
	Anchors  map[string]string        `json:"anchors"`
	Palettes map[string]*mood.Palette `json:"palettes"`
}

// Compare extracts imagePath once and generates every configured mood from it.
// Nothing is cached.
func (e *Engine) Compare(ctx context.Context, imagePath string) (*Comparison, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := e.extractor.ExtractFile(imagePath, "")
	cmp := &Comparison{
		Image:    imagePath,
		Anchor:   base,
		Anchors:  make(map[string]string, len(e.moods.Moods)),
		Palettes: make(map[string]*mood.Palette, len(e.moods.Moods)),
	}

	for _, name := range e.moods.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg := e.moods.Moods[name]
		ar := anchor.Rescue(base, cfg.FallbackAnchor)
		p, err := e.generator.Generate(ar.Hex, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to generate mood %s: %w", name, err)
		}
		cmp.Anchors[name] = ar.Hex
		cmp.Palettes[name] = p
	}
	return cmp, nil
}
