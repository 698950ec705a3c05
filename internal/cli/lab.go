package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prism/internal/colour"
	"github.com/jmylchreest/prism/internal/lab"
	"github.com/jmylchreest/prism/internal/mood"
)

func newLabCmd(a *app) *cobra.Command {
	var (
		moods  []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "lab",
		Short: "Stress test moods against reference anchors",
		Long: `Generate ten reference wallpaper anchors under each mood and grade the
result by WCAG contrast of text and hero colours against the background:
✓ pass (7:1 or better), ⚠ warn (4.5:1 or better), ✗ fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
			}
			p, err := a.paths()
			if err != nil {
				return err
			}
			set, err := a.loadMoods(p)
			if err != nil {
				return err
			}

			names := set.Names()
			if len(moods) > 0 {
				names = moods
			}
			workers := set.Workers
			if a.workers > 0 {
				workers = a.workers
			}

			mx, err := lab.Run(commandContext(cmd), mood.NewGenerator(a.logger), set.Moods, names, lab.References(), workers)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), mx)
			}
			return writeMatrix(cmd.OutOrStdout(), mx)
		},
	}
	cmd.Flags().StringSliceVar(&moods, "only", nil, "moods to test (default: all)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	return cmd
}

func writeMatrix(w io.Writer, mx *lab.Matrix) error {
	table := NewTable(slices.Concat([]string{"ANCHOR", ""}, mx.Moods))
	for a, ref := range mx.Anchors {
		row := []string{ref.Name, colour.Swatch(ref.Hex, 2)}
		for m := range mx.Moods {
			cell := mx.Cell(a, m)
			row = append(row, fmt.Sprintf("%s %.1f", gradeMark(cell.Status), cell.Ratio))
		}
		table.AddRow(row)
	}
	if _, err := io.WriteString(w, table.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d pass, %d warn, %d fail\n",
		mx.Count(mood.GradePass), mx.Count(mood.GradeWarn), mx.Count(mood.GradeFail))
	return err
}
