package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/pkg/scanner"
	"github.com/mamaar/reimport/pkg/types"
)

func newScanCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "List the import statements reimport recognizes in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			path := app.Workspace.Abs(args[0])
			content, err := os.ReadFile(path)
			if err != nil {
				return &types.RefactorError{Type: types.FileUnreadable, File: path, Message: "cannot read file", Cause: err}
			}
			stmts := scanner.ScanFile(path, content)

			out := cmd.OutOrStdout()
			if format != FormatText {
				return encode(out, format, stmts)
			}
			if len(stmts) == 0 {
				fmt.Fprintf(out, "no imports found in %s (%s)\n", displayPath(app.Workspace, path), types.DetectLanguage(path))
				return nil
			}
			tbl := newTable(out)
			tbl.AppendHeader(table.Row{"line", "col", "kind", "path"})
			for _, s := range stmts {
				tbl.AppendRow(table.Row{s.Line + 1, s.StartCol + 1, s.Kind, s.Path})
			}
			tbl.AppendFooter(table.Row{"", "", "total", len(stmts)})
			tbl.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, json or yaml")
	return cmd
}
