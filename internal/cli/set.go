package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/prism/internal/cache"
	"github.com/jmylchreest/prism/internal/config"
	"github.com/jmylchreest/prism/internal/engine"
	imageutil "github.com/jmylchreest/prism/internal/image"
	"github.com/jmylchreest/prism/internal/mood"
)

type setOptions struct {
	mood   string
	output string
	format string
	print  bool
}

func (o *setOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.mood, "mood", "m", "", "mood to apply (default: active mood)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "also write the palette JSON to this file")
	cmd.Flags().StringVarP(&o.format, "format", "f", formatTable, "print format (table, json, hex)")
	cmd.Flags().BoolVarP(&o.print, "print", "p", false, "print the palette")
}

func newSetCmd(a *app) *cobra.Command {
	opts := &setOptions{}
	cmd := &cobra.Command{
		Use:   "set <image|directory>",
		Short: "Generate the palette for an image and make it current",
		Long: `Generate the palette for an image and write it as the current palette.

The palette is read from the cache when the same image (by content) was
seen before under the same mood. When a directory is given, a random image
from it is used.

Examples:
  # Apply the active mood
  prism set ~/Pictures/wallpaper.jpg

  # Apply a specific mood and print the result
  prism set --mood deep --print ~/Pictures/wallpaper.jpg

  # Pick a random wallpaper and also write the palette elsewhere
  prism set -o ~/.config/palette.json ~/Pictures/walls/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			e, paths, err := a.newEngine()
			if err != nil {
				return err
			}
			imagePath, err := imageutil.ResolveImagePath(args[0])
			if err != nil {
				return err
			}
			return a.apply(commandContext(cmd), cmd, e, paths, imagePath, opts, false)
		},
	}
	opts.register(cmd)
	return cmd
}

// apply resolves (or regenerates) the palette for imagePath and writes it as
// the current palette.
func (a *app) apply(ctx context.Context, cmd *cobra.Command, e *engine.Engine, paths config.Paths, imagePath string, opts *setOptions, regenerate bool) error {
	resolve := e.Resolve
	if regenerate {
		resolve = e.Regenerate
	}
	res, err := resolve(ctx, imagePath, opts.mood)
	if err != nil {
		return err
	}
	if res.Anchor != nil && res.Anchor.Failed {
		a.logger.Warn("anchor extraction failed, using failure colour", "image", imagePath, "error", res.Anchor.Err)
	}

	if err := writePaletteFile(paths.CurrentPalette(), res); err != nil {
		return err
	}
	if opts.output != "" {
		if err := writePaletteFile(opts.output, res); err != nil {
			return err
		}
	}

	source := "generated"
	if res.Cached {
		source = "cached"
	}
	a.status(cmd, "Applied %s mood to %s (%s, anchor %s)\n", res.Mood, imagePath, source, res.Palette.Get(mood.RoleAnchor))

	if opts.print {
		return writePalette(cmd.OutOrStdout(), res.Palette, opts.format)
	}
	return nil
}

func writePaletteFile(path string, res *engine.Result) error {
	data, err := json.MarshalIndent(res.Palette, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode palette: %w", err)
	}
	if err := cache.WriteFileAtomic(afero.NewOsFs(), path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write palette file: %w", err)
	}
	return nil
}

func newWatchCmd(a *app) *cobra.Command {
	opts := &setOptions{}
	cmd := &cobra.Command{
		Use:   "watch <image>",
		Short: "Regenerate the current palette whenever the moods file changes",
		Long: `Apply an image's palette, then watch the moods file and regenerate the
palette each time it changes. Useful while tuning a mood. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			e, paths, err := a.newEngine()
			if err != nil {
				return err
			}
			imagePath, err := imageutil.ResolveImagePath(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.apply(ctx, cmd, e, paths, imagePath, opts, false); err != nil {
				return err
			}

			reload := func() {
				next, _, err := a.newEngine()
				if err != nil {
					a.logger.Error("failed to reload moods", "error", err)
					return
				}
				if err := a.apply(ctx, cmd, next, paths, imagePath, opts, true); err != nil {
					a.logger.Error("failed to regenerate palette", "error", err)
				}
			}

			if a.moodsFile != "" {
				a.status(cmd, "Watching %s for mood changes\n", a.moodsFile)
				return config.WatchFile(ctx, a.moodsFile, config.DefaultDebounce, a.logger, reload)
			}
			if err := os.MkdirAll(paths.ConfigDir, 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			a.status(cmd, "Watching %s for mood changes\n", paths.ConfigDir)
			return config.Watch(ctx, paths.ConfigDir, config.DefaultDebounce, a.logger, reload)
		},
	}
	opts.register(cmd)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
