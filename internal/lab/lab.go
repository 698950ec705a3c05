// Package lab stress tests moods against a fixed set of reference anchors and
// grades each result by WCAG contrast.
package lab

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/prism/internal/mood"
)

// Reference is a named anchor colour typical of wallpapers.
type Reference struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// References returns the reference anchors in display order.
func References() []Reference {
	return []Reference{
		{"Deep Purple", "#220975"},
		{"Sunset Orange", "#e07848"},
		{"Forest Green", "#2d5a3d"},
		{"Ocean Blue", "#1e4d6b"},
		{"Sakura Pink", "#d4a5a5"},
		{"Twilight", "#4a3b5c"},
		{"Desert Sand", "#c19a6b"},
		{"Arctic Blue", "#6b9dad"},
		{"Autumn Red", "#8b3a3a"},
		{"Storm Gray", "#4a5568"},
	}
}

// Cell is one anchor under one mood.
type Cell struct {
	Anchor Reference  `json:"anchor"`
	Mood   string     `json:"mood"`
	Status mood.Grade `json:"status"`
	// Ratio is the fg against bg contrast.
	Ratio   float64       `json:"ratio"`
	Checks  []mood.Check  `json:"checks"`
	Palette *mood.Palette `json:"palette,omitempty"`
}

// Matrix holds the cells in anchor-major order, moods in the given order.
type Matrix struct {
	Anchors []Reference `json:"anchors"`
	Moods   []string    `json:"moods"`
	Cells   []Cell      `json:"cells"`
}

// Cell returns the cell at anchor index a and mood index m.
func (mx *Matrix) Cell(a, m int) Cell {
	return mx.Cells[a*len(mx.Moods)+m]
}

// Count returns how many cells have status g.
func (mx *Matrix) Count(g mood.Grade) int {
	n := 0
	for _, c := range mx.Cells {
		if c.Status == g {
			n++
		}
	}
	return n
}

// Run generates every anchor under every named mood using up to workers
// goroutines. Names not present in moods are an error.
func Run(ctx context.Context, gen *mood.Generator, moods map[string]*mood.Config, names []string, anchors []Reference, workers int) (*Matrix, error) {
	for _, name := range names {
		if _, ok := moods[name]; !ok {
			return nil, fmt.Errorf("unknown mood %q", name)
		}
	}
	if workers < 1 {
		workers = 1
	}

	mx := &Matrix{
		Anchors: anchors,
		Moods:   names,
		Cells:   make([]Cell, len(anchors)*len(names)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for a, ref := range anchors {
		for m, name := range names {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				cell, err := grade(gen, ref, name, moods[name])
				if err != nil {
					return err
				}
				mx.Cells[a*len(names)+m] = cell
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mx, nil
}

func grade(gen *mood.Generator, ref Reference, name string, cfg *mood.Config) (Cell, error) {
	p, err := gen.Generate(ref.Hex, cfg)
	if err != nil {
		return Cell{}, fmt.Errorf("%s under %s: %w", ref.Name, name, err)
	}
	checks := mood.Audit(p)

	cell := Cell{Anchor: ref, Mood: name, Checks: checks, Palette: p, Status: mood.Worst(checks)}
	for _, c := range checks {
		if c.Role == mood.RoleFG {
			cell.Ratio = c.Ratio
		}
	}
	return cell, nil
}
