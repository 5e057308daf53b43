package refactor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/mamaar/reimport/pkg/types"
)

// DefaultHistorySize bounds the undo ledger.
const DefaultHistorySize = 50

// Ledger is the undo/redo history of applied batches. Recording a new batch
// discards everything that was undone; past the cap the oldest entry is evicted.
type Ledger struct {
	mu      sync.Mutex
	entries []types.HistoryEntry
	cursor  int // entries[:cursor] are applied
	max     int
	fs      FileSystem
	logger  *slog.Logger
}

// NewLedger returns an empty ledger holding at most max entries.
func NewLedger(size int, logger *slog.Logger) *Ledger {
	return NewLedgerFS(size, osFS{}, logger)
}

// NewLedgerFS is NewLedger with a custom file system.
func NewLedgerFS(size int, fsys FileSystem, logger *slog.Logger) *Ledger {
	if size <= 0 {
		size = DefaultHistorySize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{max: size, fs: fsys, logger: logger}
}

// Record appends an applied batch.
func (l *Ledger) Record(entry types.HistoryEntry) {
	if len(entry.Snapshots) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries[:l.cursor], entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	l.cursor = len(l.entries)
}

// Undo restores the original contents of the most recent applied batch. It
// reports false when there is nothing to undo.
func (l *Ledger) Undo() (types.HistoryEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor == 0 {
		return types.HistoryEntry{}, false, nil
	}
	entry := l.entries[l.cursor-1]
	if err := l.restore(entry, func(s types.FileSnapshot) ([]byte, []byte) { return s.Result, s.Original }); err != nil {
		return entry, false, err
	}
	l.cursor--
	return entry, true, nil
}

// Redo reapplies the most recently undone batch.
func (l *Ledger) Redo() (types.HistoryEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor == len(l.entries) {
		return types.HistoryEntry{}, false, nil
	}
	entry := l.entries[l.cursor]
	if err := l.restore(entry, func(s types.FileSnapshot) ([]byte, []byte) { return s.Original, s.Result }); err != nil {
		return entry, false, err
	}
	l.cursor++
	return entry, true, nil
}

// CanUndo reports whether an applied batch is on the ledger.
func (l *Ledger) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor > 0
}

// CanRedo reports whether an undone batch can be reapplied.
func (l *Ledger) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor < len(l.entries)
}

// Len is the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// restore writes the "to" side of every snapshot. Files edited since the batch
// was applied are overwritten and the drift is logged. If a write fails, the
// files already written get their previous content back.
func (l *Ledger) restore(entry types.HistoryEntry, sides func(types.FileSnapshot) (from, to []byte)) error {
	work := make([]pending, 0, len(entry.Snapshots))
	for _, snap := range entry.Snapshots {
		from, to := sides(snap)
		p := pending{file: snap.File, perm: defaultPerm, original: from, result: to}
		if info, err := l.fs.Stat(snap.File); err == nil {
			p.perm = info.Mode().Perm()
		}
		if current, err := l.fs.ReadFile(snap.File); err == nil {
			if !bytes.Equal(current, from) {
				l.logger.Warn("file changed since batch was applied, overwriting", "batch", entry.BatchID, "file", snap.File)
			}
			p.original = current
		}
		work = append(work, p)
	}

	for i, p := range work {
		if err := l.fs.WriteFile(p.file, p.result, p.perm); err != nil {
			werr := &types.RefactorError{
				Type:    types.ApplyFailed,
				File:    p.file,
				Message: fmt.Sprintf("restore batch %s", entry.BatchID),
				Cause:   err,
			}
			var errs []error
			for _, done := range work[:i] {
				if rerr := l.fs.WriteFile(done.file, done.original, done.perm); rerr != nil {
					errs = append(errs, applyError(done.file, "rollback failed", rerr))
				}
			}
			return errors.Join(append([]error{werr}, errs...)...)
		}
	}
	return nil
}

const defaultPerm fs.FileMode = 0o644
