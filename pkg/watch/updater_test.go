package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
)

func setupWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestPairRenames(t *testing.T) {
	root := setupWorkspace(t, map[string]string{
		"helpers.ts":     "",
		"lib/new/x.py":   "",
		"tsconfig.json":  "{}",
		"unrelated.css":  "",
		"fresh/notes.py": "",
	})
	events := []ChangeEvent{
		{Path: filepath.Join(root, "utils.ts"), Op: fsnotify.Rename},
		{Path: filepath.Join(root, "lib/old"), Op: fsnotify.Rename, IsDir: true},
		{Path: filepath.Join(root, "tsconfig.json"), Op: fsnotify.Write},
		{Path: filepath.Join(root, "unrelated.css"), Op: fsnotify.Create},
		{Path: filepath.Join(root, "lib/new"), Op: fsnotify.Create, IsDir: true},
		{Path: filepath.Join(root, "helpers.ts"), Op: fsnotify.Create},
	}

	reqs := PairRenames(events)
	assert.Equal(t, []types.RenameRequest{
		{OldPath: filepath.Join(root, "lib/old"), NewPath: filepath.Join(root, "lib/new"), IsDirectory: true},
		{OldPath: filepath.Join(root, "utils.ts"), NewPath: filepath.Join(root, "helpers.ts")},
	}, reqs)
}

func TestPairRenames_CreateWithoutRename(t *testing.T) {
	root := setupWorkspace(t, map[string]string{"a.ts": ""})
	reqs := PairRenames([]ChangeEvent{{Path: filepath.Join(root, "a.ts"), Op: fsnotify.Create}})
	assert.Empty(t, reqs)
}

func TestUpdater_HandleChangesAppliesAndRecords(t *testing.T) {
	root := setupWorkspace(t, map[string]string{
		"helpers.ts": "export const a = 1\n",
		"app.ts":     "import { a } from './utils'\n",
	})
	engine := refactor.CreateEngine(root, refactor.DefaultConfig())
	ledger := refactor.NewLedger(10, nil)
	u := NewUpdater(engine, refactor.NewSerializer(), ledger, nil)

	batches := u.HandleChanges(context.Background(), []ChangeEvent{
		{Path: filepath.Join(root, "utils.ts"), Op: fsnotify.Rename},
		{Path: filepath.Join(root, "helpers.ts"), Op: fsnotify.Create},
	})
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].ChangeCount())

	data, err := os.ReadFile(filepath.Join(root, "app.ts"))
	require.NoError(t, err)
	assert.Equal(t, "import { a } from './helpers'\n", string(data))
	assert.True(t, ledger.CanUndo())

	_, ok, err := ledger.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	data, err = os.ReadFile(filepath.Join(root, "app.ts"))
	require.NoError(t, err)
	assert.Equal(t, "import { a } from './utils'\n", string(data))
}

func TestUpdater_DryRunWritesNothing(t *testing.T) {
	root := setupWorkspace(t, map[string]string{
		"helpers.ts": "",
		"app.ts":     "import { a } from './utils'\n",
	})
	u := NewUpdater(refactor.CreateEngine(root, nil), refactor.NewSerializer(), nil, nil)
	u.DryRun = true

	batches := u.HandleChanges(context.Background(), []ChangeEvent{
		{Path: filepath.Join(root, "utils.ts"), Op: fsnotify.Rename},
		{Path: filepath.Join(root, "helpers.ts"), Op: fsnotify.Create},
	})
	require.Len(t, batches, 1)
	data, err := os.ReadFile(filepath.Join(root, "app.ts"))
	require.NoError(t, err)
	assert.Equal(t, "import { a } from './utils'\n", string(data))
}

func TestUpdater_ReloadsAliases(t *testing.T) {
	root := setupWorkspace(t, map[string]string{
		"src/components/CustomButton.tsx": "",
		"src/pages/Home.tsx":              "import { Button } from '@/components/Button'\n",
	})
	engine := refactor.CreateEngine(root, nil)
	require.Empty(t, engine.Aliases().JS.Entries())

	require.NoError(t, os.WriteFile(filepath.Join(root, "tsconfig.json"),
		[]byte(`{"compilerOptions":{"baseUrl":".","paths":{"@/*":["src/*"]}}}`), 0o644))

	u := NewUpdater(engine, refactor.NewSerializer(), nil, nil)
	batches := u.HandleChanges(context.Background(), []ChangeEvent{
		{Path: filepath.Join(root, "tsconfig.json"), Op: fsnotify.Create},
		{Path: filepath.Join(root, "src/components/Button.tsx"), Op: fsnotify.Rename},
		{Path: filepath.Join(root, "src/components/CustomButton.tsx"), Op: fsnotify.Create},
	})
	require.Len(t, batches, 1)
	assert.NotEmpty(t, engine.Aliases().JS.Entries())

	data, err := os.ReadFile(filepath.Join(root, "src/pages/Home.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "import { Button } from '@/components/CustomButton'\n", string(data))
}
