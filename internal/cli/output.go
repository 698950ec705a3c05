package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jmylchreest/prism/internal/colour"
	"github.com/jmylchreest/prism/internal/mood"
)

const swatchWidth = 6

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatHex   = "hex"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatHex:
		return nil
	}
	return fmt.Errorf("unsupported format: %s (supported: table, json, hex)", format)
}

// displayRoles orders roles as fixed roles, anchor, aliases, then anything else.
func displayRoles(p *mood.Palette) []string {
	order := append(mood.FixedRoles(), mood.RoleAnchor)
	order = append(order, slices.Sorted(maps.Keys(mood.Aliases()))...)
	order = append(order, mood.RoleBarBG)

	seen := make(map[string]bool, len(order))
	roles := make([]string, 0, len(p.Colors))
	for _, r := range order {
		seen[r] = true
		if _, ok := p.Colors[r]; ok {
			roles = append(roles, r)
		}
	}
	for _, r := range p.Roles() {
		if !seen[r] {
			roles = append(roles, r)
		}
	}
	return roles
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to convert to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writePalette renders p in format.
func writePalette(w io.Writer, p *mood.Palette, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, p)
	case formatHex:
		var b strings.Builder
		for _, role := range displayRoles(p) {
			fmt.Fprintf(&b, "%s=%s\n", role, p.Colors[role])
		}
		_, err := io.WriteString(w, b.String())
		return err
	default:
		table := NewTable([]string{"ROLE", "COLOUR"})
		for _, role := range displayRoles(p) {
			table.AddRow([]string{role, colour.Swatch(p.Colors[role], swatchWidth)})
		}
		_, err := io.WriteString(w, table.Render())
		return err
	}
}

// gradeMark returns a short marker for a contrast grade.
func gradeMark(g mood.Grade) string {
	switch g {
	case mood.GradePass:
		return "✓"
	case mood.GradeWarn:
		return "⚠"
	default:
		return "✗"
	}
}

// writeAudit renders the contrast checks of p.
func writeAudit(w io.Writer, p *mood.Palette) error {
	table := NewTable([]string{"ROLE", "SAMPLE", "CONTRAST", "GRADE"})
	bg := p.Get(mood.RoleBG)
	for _, c := range mood.Audit(p) {
		table.AddRow([]string{
			c.Role,
			colour.SampleHex(p.Get(c.Role), bg, "Aa", swatchWidth),
			fmt.Sprintf("%.2f:1", c.Ratio),
			gradeMark(c.Grade) + " " + string(c.Grade),
		})
	}
	_, err := io.WriteString(w, table.Render())
	return err
}
