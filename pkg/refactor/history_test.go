package refactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamaar/reimport/pkg/types"
)

func entry(id, file, before, after string) types.HistoryEntry {
	return types.HistoryEntry{BatchID: id, Snapshots: []types.FileSnapshot{
		{File: file, Original: []byte(before), Result: []byte(after)},
	}}
}

func TestLedger_UndoRedo(t *testing.T) {
	fsys := newMemFS(map[string]string{"/w/a.ts": "v2"})
	l := NewLedgerFS(10, fsys, nil)

	_, ok, err := l.Undo()
	require.NoError(t, err)
	assert.False(t, ok, "empty ledger has nothing to undo")

	l.Record(entry("b1", "/w/a.ts", "v1", "v2"))
	assert.True(t, l.CanUndo())
	assert.False(t, l.CanRedo())

	e, ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b1", e.BatchID)
	assert.Equal(t, "v1", string(fsys.files["/w/a.ts"]))

	_, ok, err = l.Undo()
	require.NoError(t, err)
	assert.False(t, ok)

	e, ok, err = l.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b1", e.BatchID)
	assert.Equal(t, "v2", string(fsys.files["/w/a.ts"]))

	_, ok, err = l.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_RecordTruncatesRedo(t *testing.T) {
	fsys := newMemFS(map[string]string{"/w/a.ts": "v3"})
	l := NewLedgerFS(10, fsys, nil)
	l.Record(entry("b1", "/w/a.ts", "v1", "v2"))
	l.Record(entry("b2", "/w/a.ts", "v2", "v3"))

	_, ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	l.Record(entry("b3", "/w/a.ts", "v2", "v4"))

	assert.Equal(t, 2, l.Len())
	assert.False(t, l.CanRedo())
	e, ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b3", e.BatchID)
}

func TestLedger_Cap(t *testing.T) {
	fsys := newMemFS(map[string]string{"/w/a.ts": ""})
	l := NewLedgerFS(3, fsys, nil)
	for i := range 5 {
		l.Record(entry(fmt.Sprintf("b%d", i), "/w/a.ts", "", ""))
	}
	assert.Equal(t, 3, l.Len())

	var ids []string
	for l.CanUndo() {
		e, ok, err := l.Undo()
		require.NoError(t, err)
		require.True(t, ok)
		ids = append(ids, e.BatchID)
	}
	assert.Equal(t, []string{"b4", "b3", "b2"}, ids)
}

func TestLedger_IgnoresEmptyEntries(t *testing.T) {
	l := NewLedger(0, nil)
	l.Record(types.HistoryEntry{BatchID: "empty"})
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.CanUndo())
}

func TestLedger_UndoOverwritesDrift(t *testing.T) {
	fsys := newMemFS(map[string]string{"/w/a.ts": "edited by hand"})
	l := NewLedgerFS(0, fsys, nil)
	l.Record(entry("b1", "/w/a.ts", "v1", "v2"))

	_, ok, err := l.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(fsys.files["/w/a.ts"]))
}

func TestLedger_UndoWriteFailure(t *testing.T) {
	fsys := newMemFS(map[string]string{"/w/a.ts": "v2"})
	fsys.failOn["/w/a.ts"] = true
	l := NewLedgerFS(0, fsys, nil)
	l.Record(entry("b1", "/w/a.ts", "v1", "v2"))

	_, ok, err := l.Undo()
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrApplyFailed)
	assert.True(t, l.CanUndo(), "failed undo keeps the entry applied")
}

func TestLedger_UndoRollsBackPartialRestore(t *testing.T) {
	fsys := newMemFS(map[string]string{"/w/a.ts": "a2", "/w/b.ts": "b2"})
	fsys.failOn["/w/b.ts"] = true
	l := NewLedgerFS(0, fsys, nil)
	l.Record(types.HistoryEntry{BatchID: "b1", Snapshots: []types.FileSnapshot{
		{File: "/w/a.ts", Original: []byte("a1"), Result: []byte("a2")},
		{File: "/w/b.ts", Original: []byte("b1"), Result: []byte("b2")},
	}})

	_, ok, err := l.Undo()
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrApplyFailed)
	assert.Equal(t, []string{"/w/a.ts", "/w/b.ts", "/w/a.ts"}, fsys.writes)
	assert.Equal(t, "a2", string(fsys.files["/w/a.ts"]), "restored file is rolled back")
	assert.Equal(t, "b2", string(fsys.files["/w/b.ts"]))
	assert.True(t, l.CanUndo())
}
