package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
)

type renameOptions struct {
	dryRun bool
	diff   bool
	move   bool
	format string
	exts   []string
}

func newRenameCommand(app *App) *cobra.Command {
	opts := &renameOptions{}

	cmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Update imports for a renamed file or directory",
		Long: `Compute and apply the import edits for a file or directory that moved from
<old> to <new>. The rename itself may already have happened; pass --move to let
reimport move the file after updating the imports.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return runRename(cmd, app, opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "compute edits without writing them")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "print a unified diff of the edits")
	cmd.Flags().BoolVar(&opts.move, "move", false, "move <old> to <new> after updating imports")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "output format: text, json or yaml")
	cmd.Flags().StringSliceVar(&opts.exts, "ext", nil, "restrict candidate files to these extensions")
	return cmd
}

func runRename(cmd *cobra.Command, app *App, opts *renameOptions, oldPath, newPath string) error {
	out := cmd.OutOrStdout()
	req := app.Workspace.Request(oldPath, newPath)
	req.Extensions = normalizeExts(opts.exts)

	engine := app.Engine()
	batch, err := engine.ComputeEdits(cmd.Context(), req)
	if err != nil {
		if typ, ok := types.TypeOf(err); ok && typ == types.OperationTimedOut && batch != nil {
			app.Logger.Warn("partial results", "changes", batch.ChangeCount(), "files", len(batch.Edits))
		}
		return err
	}

	if opts.diff {
		preview, err := engine.Preview(batch)
		if err != nil {
			return err
		}
		fmt.Fprint(out, preview)
	}

	applied := false
	if !opts.dryRun && !batch.Empty() {
		if _, err := refactor.NewSerializer().Apply(cmd.Context(), batch); err != nil {
			return err
		}
		applied = true
	}
	if opts.move && !opts.dryRun {
		if err := refactor.Move(req.OldPath, req.NewPath); err != nil {
			return err
		}
	}

	if opts.format != FormatText {
		return encode(out, opts.format, batch)
	}
	renderBatch(out, app.Workspace, batch, applied)
	return nil
}

func normalizeExts(exts []string) []string {
	var out []string
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
