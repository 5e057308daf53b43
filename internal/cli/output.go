package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/mamaar/reimport/pkg/types"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func validateFormat(f string) error {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", f)
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return validateFormat(format)
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

// renderBatch prints a human summary of an edit batch.
func renderBatch(w io.Writer, ws *types.Workspace, batch *types.EditBatch, applied bool) {
	req := batch.Request
	fmt.Fprintf(w, "%s %s -> %s\n", color.New(color.Bold).Sprint("rename"), ws.Rel(req.OldPath), ws.Rel(req.NewPath))

	for _, edit := range batch.Edits {
		fmt.Fprintf(w, "  %s\n", color.New(color.FgCyan).Sprint(ws.Rel(edit.File)))
		for _, r := range edit.Replacements {
			fmt.Fprintf(w, "    %4d  %s -> %s\n", r.Line+1,
				color.New(color.FgRed).Sprint(r.OldText), color.New(color.FgGreen).Sprint(r.NewText))
		}
	}

	s := batch.Stats
	var skipped []string
	if s.TooLarge > 0 {
		skipped = append(skipped, fmt.Sprintf("%s too large", humanize.Comma(int64(s.TooLarge))))
	}
	if s.Unreadable > 0 {
		skipped = append(skipped, fmt.Sprintf("%s unreadable", humanize.Comma(int64(s.Unreadable))))
	}
	fmt.Fprintf(w, "%s candidates, %s scanned", humanize.Comma(int64(s.Candidates)), humanize.Comma(int64(s.Scanned)))
	if len(skipped) > 0 {
		fmt.Fprintf(w, ", %s", color.New(color.FgYellow).Sprint("skipped "+strings.Join(skipped, ", ")))
	}
	fmt.Fprintln(w)

	switch {
	case batch.Empty():
		fmt.Fprintln(w, batch.Message())
	case applied:
		color.New(color.FgGreen).Fprintf(w, "applied %d changes in %d files\n", batch.ChangeCount(), len(batch.Edits))
		if batch.Stats.Truncated {
			color.New(color.FgYellow).Fprintln(w, "file limit reached, results may be incomplete")
		}
	default:
		color.New(color.FgGreen).Fprintln(w, batch.Message())
	}
}

// displayPath shortens p for tables.
func displayPath(ws *types.Workspace, p string) string {
	return filepath.ToSlash(ws.Rel(p))
}
