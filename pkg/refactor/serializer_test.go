package refactor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamaar/reimport/pkg/types"
)

// memFS is an in-memory FileSystem whose writes can be made to fail per file.
type memFS struct {
	files  map[string][]byte
	failOn map[string]bool
	writes []string
}

func newMemFS(files map[string]string) *memFS {
	m := &memFS{files: make(map[string][]byte), failOn: make(map[string]bool)}
	for name, content := range files {
		m.files[name] = []byte(content)
	}
	return m
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *memFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	m.writes = append(m.writes, name)
	if m.failOn[name] {
		return errors.New("disk full")
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return memInfo{name: name, size: int64(len(data))}, nil
}

type memInfo struct {
	name string
	size int64
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o644 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }

func rep(line, start, end int, old, repl string) types.Replacement {
	return types.Replacement{Line: line, StartCol: start, EndCol: end, OldText: old, NewText: repl}
}

func TestApplyReplacements(t *testing.T) {
	content := []byte("import a from './utils'\r\nimport b from './utils/x'\nlast")

	tests := []struct {
		name    string
		reps    []types.Replacement
		want    string
		wantErr string
	}{
		{
			name: "multiple lines",
			reps: []types.Replacement{
				rep(1, 15, 24, "./utils/x", "./helpers/x"),
				rep(0, 15, 22, "./utils", "./helpers"),
			},
			want: "import a from './helpers'\r\nimport b from './helpers/x'\nlast",
		},
		{
			name: "last line without newline",
			reps: []types.Replacement{rep(2, 0, 4, "last", "final")},
			want: "import a from './utils'\r\nimport b from './utils/x'\nfinal",
		},
		{
			name:    "stale content",
			reps:    []types.Replacement{rep(0, 15, 22, "./other", "./helpers")},
			wantErr: "old text mismatch",
		},
		{
			name:    "line out of range",
			reps:    []types.Replacement{rep(7, 0, 1, "x", "y")},
			wantErr: "line out of range",
		},
		{
			name:    "span past end of line",
			reps:    []types.Replacement{rep(2, 0, 9, "last", "y")},
			wantErr: "invalid bounds",
		},
		{
			name: "overlap",
			reps: []types.Replacement{
				rep(0, 14, 23, "'./utils'", "'./helpers'"),
				rep(0, 15, 22, "./utils", "./helpers"),
			},
			wantErr: "overlapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyReplacements(content, tt.reps)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSerializer_Apply(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"/w/a.ts": "import a from './utils'\n",
		"/w/b.ts": "import b from './utils'\n",
	})
	batch := &types.EditBatch{ID: "b1", Edits: []types.FileEdit{
		{File: "/w/a.ts", Replacements: []types.Replacement{rep(0, 15, 22, "./utils", "./helpers")}},
		{File: "/w/b.ts", Replacements: []types.Replacement{rep(0, 15, 22, "./utils", "./helpers")}},
	}}

	snaps, err := NewSerializerFS(fsys).Apply(context.Background(), batch)
	require.NoError(t, err)

	want := []types.FileSnapshot{
		{File: "/w/a.ts", Original: []byte("import a from './utils'\n"), Result: []byte("import a from './helpers'\n")},
		{File: "/w/b.ts", Original: []byte("import b from './utils'\n"), Result: []byte("import b from './helpers'\n")},
	}
	if diff := cmp.Diff(want, snaps); diff != "" {
		t.Errorf("snapshots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "import b from './helpers'\n", string(fsys.files["/w/b.ts"]))
}

func TestSerializer_ApplyRollsBack(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"/w/a.ts": "import a from './utils'\n",
		"/w/b.ts": "import b from './utils'\n",
	})
	fsys.failOn["/w/b.ts"] = true
	batch := &types.EditBatch{Edits: []types.FileEdit{
		{File: "/w/a.ts", Replacements: []types.Replacement{rep(0, 15, 22, "./utils", "./helpers")}},
		{File: "/w/b.ts", Replacements: []types.Replacement{rep(0, 15, 22, "./utils", "./helpers")}},
	}}

	_, err := NewSerializerFS(fsys).Apply(context.Background(), batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrApplyFailed)
	assert.Equal(t, "import a from './utils'\n", string(fsys.files["/w/a.ts"]))
	assert.Equal(t, []string{"/w/a.ts", "/w/b.ts", "/w/a.ts"}, fsys.writes)
}

func TestSerializer_ApplyStaleWritesNothing(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"/w/a.ts": "import a from './utils'\n",
		"/w/b.ts": "import b from './changed'\n",
	})
	batch := &types.EditBatch{Edits: []types.FileEdit{
		{File: "/w/a.ts", Replacements: []types.Replacement{rep(0, 15, 22, "./utils", "./helpers")}},
		{File: "/w/b.ts", Replacements: []types.Replacement{rep(0, 15, 22, "./utils", "./helpers")}},
	}}

	_, err := NewSerializerFS(fsys).Apply(context.Background(), batch)
	require.Error(t, err)
	typ, ok := types.TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ApplyFailed, typ)
	assert.Empty(t, fsys.writes)
}

func TestSerializer_ApplyEmpty(t *testing.T) {
	snaps, err := NewSerializer().Apply(context.Background(), &types.EditBatch{})
	require.NoError(t, err)
	assert.Nil(t, snaps)
}

func TestSerializer_ApplyKeepsPermissions(t *testing.T) {
	root := writeTree(t, map[string]string{"run.js": "require('./utils')\n"})
	file := root + "/run.js"
	require.NoError(t, os.Chmod(file, 0o755))

	batch := &types.EditBatch{Edits: []types.FileEdit{
		{File: file, Replacements: []types.Replacement{rep(0, 9, 16, "./utils", "./helpers")}},
	}}
	_, err := NewSerializer().Apply(context.Background(), batch)
	require.NoError(t, err)

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.Equal(t, "require('./helpers')\n", read(t, root, "run.js"))
}

func TestUnifiedDiff(t *testing.T) {
	before := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\n"
	after := "A\nb\nc\nd\ne\nf\ng\nh\ni\nJ\n"

	got := UnifiedDiff("x.ts", before, after)
	want := "--- x.ts\n+++ x.ts\n" +
		"@@ -1,3 +1,3 @@\n-a\n+A\n b\n c\n" +
		"@@ -8,3 +8,3 @@\n h\n i\n-j\n+J\n"
	assert.Equal(t, want, got)
	assert.Empty(t, UnifiedDiff("x.ts", before, before))
}
