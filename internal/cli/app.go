// Package cli implements the reimport command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/internal/config"
	"github.com/mamaar/reimport/internal/logging"
	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
)

// App carries the state shared by every subcommand once flags are parsed.
type App struct {
	workspacePath string
	configPath    string
	verbose       bool

	Workspace *types.Workspace
	Config    *config.Config
	Logger    *slog.Logger
}

// NewRootCommand builds the reimport command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "reimport",
		Short: "Rewrite import references after files or directories are renamed",
		Long: `reimport keeps import statements pointing at the right place when files or
directories move. It understands JavaScript/TypeScript, Python, Go and
CSS/SCSS/Less imports, including project aliases (tsconfig paths, Python
package roots, Go module paths, bundler aliases).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&app.workspacePath, "workspace", "w", ".", "workspace root")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default <workspace>/"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRenameCommand(app),
		newScanCommand(app),
		newAliasesCommand(app),
		newWatchCommand(app),
		newVersionCommand(),
	)
	return root
}

func (app *App) init(cmd *cobra.Command) error {
	ws, err := types.NewWorkspace(app.workspacePath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws.RootPath, app.configPath)
	if err != nil {
		return err
	}
	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if app.verbose {
		opts.Level = "debug"
	}

	app.Workspace = ws
	app.Config = cfg
	app.Logger = logging.New(opts, cmd.ErrOrStderr())
	return nil
}

// Engine creates a rename engine for the workspace.
func (app *App) Engine() *refactor.DefaultEngine {
	return refactor.CreateEngine(app.Workspace.RootPath, app.Config.Engine(), refactor.WithLogger(app.Logger))
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
