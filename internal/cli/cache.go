package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prism/internal/cache"
	"github.com/jmylchreest/prism/internal/mood"
)

func newMoodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "List the configured moods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.paths()
			if err != nil {
				return err
			}
			set, err := a.loadMoods(p)
			if err != nil {
				return err
			}

			source := set.File
			if source == "" {
				source = "built-in"
			}
			table := NewTable([]string{"MOOD", "BACKGROUND", "HERO", "TEXT", "FALLBACK"})
			for _, name := range set.Names() {
				cfg := set.Moods[name]
				label := name
				if name == set.ActiveMood {
					label += " *"
				}
				table.AddRow([]string{
					label,
					algoOr(cfg.Background.Algo, mood.BackgroundAlgorithms()[0]),
					algoOr(cfg.Hero.Algo, mood.HeroAlgorithms()[0]),
					algoOr(cfg.Text.Algo, mood.TextAlgorithms()[0]),
					cfg.FallbackAnchor,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Moods from %s (* active)\n\n", source)
			_, err = io.WriteString(out, table.Render())
			return err
		},
	}
}

func algoOr(algo, def mood.Algorithm) string {
	if algo == "" {
		return string(def)
	}
	return string(algo)
}

func newCacheCmd(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the palette cache",
	}

	openCache := func() (*cache.Cache, error) {
		p, err := a.paths()
		if err != nil {
			return nil, err
		}
		return a.openCache(p)
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Root())
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			keys, err := c.Entries()
			if err != nil {
				return err
			}
			byHash := make(map[string][]string)
			var hashes []string
			for _, k := range keys {
				if _, ok := byHash[k.Hash]; !ok {
					hashes = append(hashes, k.Hash)
				}
				byHash[k.Hash] = append(byHash[k.Hash], k.Mood)
			}
			table := NewTable([]string{"HASH", "MOODS"})
			for _, h := range hashes {
				table.AddRow([]string{h, strings.Join(byHash[h], ", ")})
			}
			out := cmd.OutOrStdout()
			_, err = io.WriteString(out, table.Render())
			if err == nil {
				_, err = fmt.Fprintf(out, "\n%d palettes for %d images\n", len(keys), len(hashes))
			}
			return err
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <file.tar.xz|->",
		Short: "Export the cache as a tar.xz archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if args[0] != "-" {
				f, err := os.Create(args[0]) // #nosec G304 - User-specified output path
				if err != nil {
					return fmt.Errorf("failed to create archive: %w", err)
				}
				defer f.Close()
				w = f
			}
			n, err := c.Export(w)
			if err != nil {
				return err
			}
			a.status(cmd, "Exported %d palettes\n", n)
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.tar.xz|->",
		Short: "Import palettes from an archive made by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0]) // #nosec G304 - User-specified archive path
				if err != nil {
					return fmt.Errorf("failed to open archive: %w", err)
				}
				defer f.Close()
				r = f
			}
			n, err := c.Import(r)
			if err != nil {
				return err
			}
			a.status(cmd, "Imported %d palettes\n", n)
			return nil
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every cached palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			if err := c.Purge(); err != nil {
				return err
			}
			a.status(cmd, "Purged %s\n", c.Root())
			return nil
		},
	}

	cacheCmd.AddCommand(pathCmd, listCmd, exportCmd, importCmd, purgeCmd)
	return cacheCmd
}
