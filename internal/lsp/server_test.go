package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mamaar/reimport/pkg/types"
)

func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func initialized(t *testing.T, root string) *Server {
	t.Helper()
	srv := NewServer(Options{Version: "1.2.3"})
	uri := pathToURI(root)
	result, err := srv.initialize(nil, &protocol.InitializeParams{RootURI: &uri})
	require.NoError(t, err)

	res, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, Name, res.ServerInfo.Name)
	assert.Equal(t, "1.2.3", *res.ServerInfo.Version)
	require.NotNil(t, res.Capabilities.Workspace)
	require.NotNil(t, res.Capabilities.Workspace.FileOperations)
	assert.NotNil(t, res.Capabilities.Workspace.FileOperations.WillRename)
	return srv
}

func TestWillRenameFiles(t *testing.T) {
	root := workspace(t, map[string]string{
		"utils.ts": "export const x = 1\n",
		"app.ts":   "// café\nimport { x } from './utils'\nimport { ü } from './utils'\n",
	})
	srv := initialized(t, root)

	edit, err := srv.willRenameFiles(nil, &protocol.RenameFilesParams{
		Files: []protocol.FileRename{{
			OldURI: pathToURI(filepath.Join(root, "utils.ts")),
			NewURI: pathToURI(filepath.Join(root, "helpers.ts")),
		}},
	})
	require.NoError(t, err)

	edits := edit.Changes[pathToURI(filepath.Join(root, "app.ts"))]
	require.Len(t, edits, 2)
	assert.Equal(t, "./helpers", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 1, Character: 19}, edits[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 26}, edits[0].Range.End)
	// "ü" is two bytes but one UTF-16 unit
	assert.Equal(t, protocol.Position{Line: 2, Character: 19}, edits[1].Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 26}, edits[1].Range.End)
}

func TestWillRenameFiles_DirectoryAndDedupe(t *testing.T) {
	root := workspace(t, map[string]string{
		"src/utils/strings.ts": "",
		"src/app.ts":           "import { s } from './utils/strings'\n",
	})
	srv := initialized(t, root)

	rename := protocol.FileRename{
		OldURI: pathToURI(filepath.Join(root, "src", "utils")),
		NewURI: pathToURI(filepath.Join(root, "src", "shared")),
	}
	edit, err := srv.willRenameFiles(nil, &protocol.RenameFilesParams{Files: []protocol.FileRename{rename, rename}})
	require.NoError(t, err)

	edits := edit.Changes[pathToURI(filepath.Join(root, "src", "app.ts"))]
	require.Len(t, edits, 1)
	assert.Equal(t, "./shared/strings", edits[0].NewText)
}

func TestWillRenameFiles_NotInitialized(t *testing.T) {
	srv := NewServer(Options{})
	_, err := srv.willRenameFiles(nil, &protocol.RenameFilesParams{})
	assert.ErrorIs(t, err, errNotInitialized)
}

func TestDidChangeWatchedFiles_ReloadsAliases(t *testing.T) {
	root := workspace(t, map[string]string{"src/Button.tsx": ""})
	srv := initialized(t, root)
	engine, err := srv.current()
	require.NoError(t, err)
	assert.Empty(t, engine.Aliases().JS.Entries())

	cfg := filepath.Join(root, "tsconfig.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"compilerOptions":{"paths":{"@/*":["src/*"]}}}`), 0o644))
	require.NoError(t, srv.didChangeWatchedFiles(nil, &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{{URI: pathToURI(cfg), Type: protocol.FileChangeTypeChanged}},
	}))
	assert.NotEmpty(t, engine.Aliases().JS.Entries())
}

func TestInitialize_NoRoot(t *testing.T) {
	srv := NewServer(Options{})
	_, err := srv.initialize(nil, &protocol.InitializeParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestURIConversion(t *testing.T) {
	path, err := uriToPath("file:///home/me/my%20project/a.ts")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/me/my project/a.ts"), path)
	assert.Equal(t, "file:///home/me/my%20project/a.ts", pathToURI("/home/me/my project/a.ts"))

	_, err = uriToPath("untitled:Untitled-1")
	assert.Error(t, err)
}

func TestUTF16Col(t *testing.T) {
	line := []byte("a😀b")
	assert.Equal(t, protocol.UInteger(1), utf16Col(line, 1))
	assert.Equal(t, protocol.UInteger(3), utf16Col(line, 5))
	assert.Equal(t, protocol.UInteger(4), utf16Col(line, 100))
}
