package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prism/internal/anchor"
	"github.com/jmylchreest/prism/internal/colour"
	"github.com/jmylchreest/prism/internal/mood"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		moodName string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the anchor colour of an image",
		Long: `Extract the anchor colour of an image.

The image is fitted within 100x100, saturation boosted, and its 30 most
frequent colours are scored by chroma and frequency. Near-neutral winners
are replaced by the mood's fallback anchor when it has one.

Supported image formats: JPEG, PNG, GIF, WebP, BMP

Examples:
  # Extract using the active mood's fallback
  prism extract wallpaper.jpg

  # Extract as JSON, rescuing greyscale images with the pastel fallback
  prism extract --mood pastel --format json wallpaper.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			e, _, err := a.newEngine()
			if err != nil {
				return err
			}
			a.logger.Debug("extracting anchor", "image", args[0])

			res := e.Anchor(args[0], moodName)
			if err := writeAnchor(cmd.OutOrStdout(), res, format); err != nil {
				return err
			}
			if res.Failed {
				return fmt.Errorf("failed to extract anchor: %w", res.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&moodName, "mood", "m", "", "mood whose fallback anchor is used (default: active mood)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json, hex)")
	return cmd
}

func writeAnchor(w io.Writer, res anchor.Result, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, res)
	case formatHex:
		_, err := fmt.Fprintln(w, res.Hex)
		return err
	}

	table := NewTable([]string{"ANCHOR", "CHROMA", "SCORE", "NOTE"})
	note := ""
	switch {
	case res.Failed:
		note = "failed"
	case res.Rescued:
		note = "monochrome rescue"
	case res.Chroma < anchor.MonochromeChroma:
		note = "near neutral"
	}
	table.AddRow([]string{
		colour.Swatch(res.Hex, swatchWidth),
		fmt.Sprintf("%.1f", res.Chroma),
		fmt.Sprintf("%.1f", res.Score),
		note,
	})
	_, err := io.WriteString(w, table.Render())
	return err
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		moodName string
		format   string
		trace    bool
		audit    bool
	)
	cmd := &cobra.Command{
		Use:   "generate <hex>",
		Short: "Generate a palette from an anchor colour",
		Long: `Generate a palette directly from an anchor colour, without an image.
Nothing is cached.

Examples:
  # Generate the active mood from a hex colour
  prism generate "#1e4d6b"

  # Show how the hero colour was found and how legible the text is
  prism generate --mood vibrant --trace --audit e07848`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			e, _, err := a.newEngine()
			if err != nil {
				return err
			}

			p, report, err := e.Generate(args[0], moodName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := writePalette(out, p, format); err != nil {
				return err
			}
			if trace {
				fmt.Fprintln(out)
				if err := writeReport(out, report); err != nil {
					return err
				}
			}
			if audit {
				fmt.Fprintln(out)
				return writeAudit(out, p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&moodName, "mood", "m", "", "mood to generate (default: active mood)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json, hex)")
	cmd.Flags().BoolVar(&trace, "trace", false, "show the intermediate colours and the hero search")
	cmd.Flags().BoolVar(&audit, "audit", false, "show WCAG contrast of text and hero against the background")
	return cmd
}

func writeReport(w io.Writer, r *mood.Report) error {
	temp := "warm"
	if r.Cool {
		temp = "cool"
	}
	table := NewTable([]string{"STEP", "VALUE"})
	table.AddRow([]string{"anchor", colour.Swatch(r.Anchor.Hex(), swatchWidth)})
	table.AddRow([]string{"temperature", fmt.Sprintf("%s (pole %.0f°)", temp, r.Pole)})
	table.AddRow([]string{"background", colour.Swatch(r.Background.Hex(), swatchWidth)})
	table.AddRow([]string{"hero algorithm", string(r.Hero.Algorithm)})
	table.AddRow([]string{"hero seed", colour.Swatch(r.Hero.Seed.Hex(), swatchWidth)})
	table.AddRow([]string{"hero result", colour.Swatch(r.Hero.Result.Hex(), swatchWidth)})
	table.AddRow([]string{"hero iterations", fmt.Sprintf("%d (exit: %s)", r.Hero.Iterations, r.Hero.Exit)})
	table.AddRow([]string{"hero distance", fmt.Sprintf("%.1f", r.Hero.Distance)})
	for _, warn := range r.Warnings {
		table.AddRow([]string{"warning", warn.Error()})
	}
	_, err := io.WriteString(w, table.Render())
	return err
}
