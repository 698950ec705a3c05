package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prism/internal/colour"
	"github.com/jmylchreest/prism/internal/engine"
	imageutil "github.com/jmylchreest/prism/internal/image"
	"github.com/jmylchreest/prism/internal/mood"
)

func newCompareCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "compare <image>",
		Short: "Show an image's palette under every mood",
		Long: `Extract an image's anchor once and generate every configured mood from it,
side by side. Nothing is cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
			}
			e, _, err := a.newEngine()
			if err != nil {
				return err
			}
			cmp, err := e.Compare(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if cmp.Anchor.Failed {
				a.logger.Warn("anchor extraction failed, using failure colour", "image", args[0], "error", cmp.Anchor.Err)
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), cmp)
			}
			return writeComparison(cmd.OutOrStdout(), cmp, e.Moods().Names())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	return cmd
}

func writeComparison(w io.Writer, cmp *engine.Comparison, names []string) error {
	table := NewTable(append([]string{"ROLE"}, names...))

	row := []string{"anchor"}
	for _, name := range names {
		row = append(row, colour.Swatch(cmp.Anchors[name], swatchWidth))
	}
	table.AddRow(row)

	for _, role := range mood.FixedRoles() {
		row := []string{role}
		for _, name := range names {
			row = append(row, colour.Swatch(cmp.Palettes[name].Get(role), swatchWidth))
		}
		table.AddRow(row)
	}

	row = []string{"contrast"}
	for _, name := range names {
		checks := mood.Audit(cmp.Palettes[name])
		row = append(row, gradeMark(mood.Worst(checks))+" "+string(mood.Worst(checks)))
	}
	table.AddRow(row)

	_, err := io.WriteString(w, table.Render())
	return err
}

func newPrecacheCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "precache <image|directory>...",
		Short: "Generate and cache every mood for a set of images",
		Long: `Generate and cache the palette of every configured mood for each image.
Directories are scanned one level deep. Images are processed in parallel
(see --workers); an image that cannot be read is reported and skipped.

Examples:
  # Warm the cache for a wallpaper directory with 8 workers
  prism precache -w 8 ~/Pictures/walls/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
			}
			e, _, err := a.newEngine()
			if err != nil {
				return err
			}
			paths, err := imageutil.ExpandPaths(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.status(cmd, "Precaching %d images with %d workers\n", len(paths), e.Workers())
			results := e.Precache(ctx, paths)

			failed := 0
			for _, r := range results {
				if !r.OK() {
					failed++
				}
			}

			if format == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), precacheJSON(results)); err != nil {
					return err
				}
			} else if err := writePrecache(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	return cmd
}

type precacheItem struct {
	engine.ItemResult
	Error string `json:"error,omitempty"`
}

func precacheJSON(results []engine.ItemResult) []precacheItem {
	out := make([]precacheItem, len(results))
	for i, r := range results {
		out[i] = precacheItem{ItemResult: r}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

func writePrecache(w io.Writer, results []engine.ItemResult) error {
	table := NewTable([]string{"IMAGE", "ANCHOR", "GENERATED", "CACHED", "STATUS"})
	table.SetColumnMaxWidth(4, 48)
	for _, r := range results {
		anchorHex := "-"
		if r.Anchor != nil {
			anchorHex = colour.Swatch(r.Anchor.Hex, 2)
		}
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		table.AddRow([]string{
			r.Image,
			anchorHex,
			strings.Join(r.Generated, ","),
			strings.Join(r.Cached, ","),
			status,
		})
	}
	_, err := io.WriteString(w, table.Render())
	return err
}
