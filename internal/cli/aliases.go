package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/types"
)

type aliasRow struct {
	Language string `json:"language" yaml:"language"`
	alias.Entry `yaml:",inline"`
}

func newAliasesCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Show the import aliases found in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			set := app.Engine().Aliases()

			var rows []aliasRow
			for _, lang := range types.Languages {
				r := set.For(lang)
				if r == nil {
					continue
				}
				for _, e := range r.Entries() {
					rows = append(rows, aliasRow{Language: lang.String(), Entry: e})
				}
			}

			out := cmd.OutOrStdout()
			if format != FormatText {
				return encode(out, format, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "no aliases configured")
				return nil
			}
			tbl := newTable(out)
			tbl.AppendHeader(table.Row{"language", "prefix", "target", "source"})
			for _, r := range rows {
				tbl.AppendRow(table.Row{r.Language, r.Prefix, displayPath(app.Workspace, r.Target), r.Source})
			}
			tbl.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, json or yaml")
	return cmd
}
