package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/watch"
)

func newWatchCommand(app *App) *cobra.Command {
	var (
		dryRun   bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the workspace and update imports as files are renamed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.NewWatcher(app.Workspace.RootPath, debounce, app.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			ledger := refactor.NewLedger(app.Config.History.MaxEntries, app.Logger)
			u := watch.NewUpdater(app.Engine(), refactor.NewSerializer(), ledger, app.Logger)
			u.DryRun = dryRun

			app.Logger.Info("watching for renames", "workspace", app.Workspace.RootPath, "dry_run", dryRun)
			if err := u.Watch(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log edits without writing them")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before a batch of events is processed")
	return cmd
}
