package watch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
)

// PairRenames turns the Rename+Create pairs of a batch into rename requests. A
// Rename whose path no longer exists is matched with the next Create of the same
// kind; files must also stay in the same language family.
func PairRenames(events []ChangeEvent) []types.RenameRequest {
	var (
		olds []ChangeEvent
		reqs []types.RenameRequest
	)
	for _, ev := range events {
		if alias.IsConfigFile(ev.Path) {
			continue
		}
		_, statErr := os.Stat(ev.Path)
		switch {
		case ev.Op.Has(fsnotify.Rename) && statErr != nil:
			olds = append(olds, ev)
		case ev.Op.Has(fsnotify.Create) && statErr == nil:
			for i, old := range olds {
				if old.IsDir != ev.IsDir || old.Path == ev.Path {
					continue
				}
				if !ev.IsDir && types.DetectLanguage(old.Path) != types.DetectLanguage(ev.Path) {
					continue
				}
				reqs = append(reqs, types.RenameRequest{OldPath: old.Path, NewPath: ev.Path, IsDirectory: ev.IsDir})
				olds = append(olds[:i], olds[i+1:]...)
				break
			}
		}
	}
	return reqs
}

// Updater rewrites imports for the renames a Watcher observes.
type Updater struct {
	engine  refactor.RenameEngine
	applier refactor.Applier
	ledger  *refactor.Ledger
	logger  *slog.Logger
	// DryRun computes and logs batches without writing them.
	DryRun bool
}

// NewUpdater creates an Updater. ledger may be nil.
func NewUpdater(engine refactor.RenameEngine, applier refactor.Applier, ledger *refactor.Ledger, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Updater{engine: engine, applier: applier, ledger: ledger, logger: logger}
}

// HandleChanges processes a batch of change events. Alias config changes reload
// the resolvers before any rename in the same batch is computed. It returns the
// computed edit batches.
func (u *Updater) HandleChanges(ctx context.Context, events []ChangeEvent) []*types.EditBatch {
	start := time.Now()

	for _, ev := range events {
		if alias.IsConfigFile(ev.Path) {
			u.logger.Info("alias configuration changed, reloading", "file", ev.Path)
			u.engine.ReloadAliases()
			break
		}
	}

	var batches []*types.EditBatch
	for _, req := range PairRenames(events) {
		batch, err := u.engine.ComputeEdits(ctx, req)
		if err != nil {
			u.logger.Error("compute rename edits failed", "old", req.OldPath, "new", req.NewPath, "err", err)
			continue
		}
		batches = append(batches, batch)
		u.logger.Info(batch.Message(), "old", req.OldPath, "new", req.NewPath, "batch", batch.ID)
		if batch.Empty() || u.DryRun {
			continue
		}

		snaps, err := u.applier.Apply(ctx, batch)
		if err != nil {
			u.logger.Error("apply rename edits failed", "batch", batch.ID, "err", err)
			continue
		}
		if u.ledger != nil {
			u.ledger.Record(types.HistoryEntry{BatchID: batch.ID, Snapshots: snaps})
		}
	}

	u.logger.Debug("batch complete",
		"events", len(events),
		"renames", len(batches),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return batches
}

// Watch runs w and feeds every batch it emits to HandleChanges until ctx ends.
func (u *Updater) Watch(ctx context.Context, w *Watcher) error {
	out := make(chan []ChangeEvent, 16)
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx, out) }()

	for {
		select {
		case events := <-out:
			u.HandleChanges(ctx, events)
		case err := <-errc:
			return err
		}
	}
}
