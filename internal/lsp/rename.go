package lsp

import (
	"context"
	"os"
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/types"
)

// willRenameFiles computes the import edits for the pending renames. The files
// have not moved yet, so edits target their current URIs.
func (srv *Server) willRenameFiles(_ *glsp.Context, params *protocol.RenameFilesParams) (*protocol.WorkspaceEdit, error) {
	engine, err := srv.current()
	if err != nil {
		return nil, err
	}

	edits := newEditSet()
	for _, f := range params.Files {
		oldPath, err := uriToPath(f.OldURI)
		if err != nil {
			return nil, err
		}
		newPath, err := uriToPath(f.NewURI)
		if err != nil {
			return nil, err
		}
		req := types.RenameRequest{OldPath: oldPath, NewPath: newPath}
		if info, err := os.Stat(oldPath); err == nil {
			req.IsDirectory = info.IsDir()
		}

		batch, err := engine.ComputeEdits(context.Background(), req)
		if err != nil {
			srv.logger.Error("willRenameFiles failed", "old", oldPath, "new", newPath, "err", err)
			return nil, err
		}
		srv.logger.Info(batch.Message(), "old", oldPath, "new", newPath, "batch", batch.ID)
		if err := edits.add(batch); err != nil {
			return nil, err
		}
	}
	return edits.workspaceEdit(), nil
}

// didChangeWatchedFiles reloads aliases when a project config file changes.
func (srv *Server) didChangeWatchedFiles(_ *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	engine, err := srv.current()
	if err != nil {
		return nil
	}
	for _, change := range params.Changes {
		path, err := uriToPath(change.URI)
		if err != nil {
			continue
		}
		if alias.IsConfigFile(path) {
			srv.logger.Info("alias configuration changed, reloading", "file", path)
			engine.ReloadAliases()
			return nil
		}
	}
	return nil
}

// editSet merges the batches of several renames into one WorkspaceEdit. A
// range already edited by an earlier rename is kept as is.
type editSet struct {
	changes map[protocol.DocumentUri][]protocol.TextEdit
	seen    map[protocol.DocumentUri]map[protocol.Range]bool
}

func newEditSet() *editSet {
	return &editSet{
		changes: make(map[protocol.DocumentUri][]protocol.TextEdit),
		seen:    make(map[protocol.DocumentUri]map[protocol.Range]bool),
	}
}

func (s *editSet) add(batch *types.EditBatch) error {
	for _, fe := range batch.Edits {
		content, err := os.ReadFile(fe.File)
		if err != nil {
			return &types.RefactorError{Type: types.FileUnreadable, File: fe.File, Message: "cannot read file", Cause: err}
		}
		lines := splitLines(content)
		uri := pathToURI(fe.File)
		if s.seen[uri] == nil {
			s.seen[uri] = make(map[protocol.Range]bool)
		}
		for _, r := range fe.Replacements {
			edit := textEdit(lines, r)
			if s.seen[uri][edit.Range] {
				continue
			}
			s.seen[uri][edit.Range] = true
			s.changes[uri] = append(s.changes[uri], edit)
		}
	}
	return nil
}

func (s *editSet) workspaceEdit() *protocol.WorkspaceEdit {
	for uri := range s.changes {
		edits := s.changes[uri]
		sort.Slice(edits, func(i, j int) bool {
			a, b := edits[i].Range.Start, edits[j].Range.Start
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Character < b.Character
		})
	}
	return &protocol.WorkspaceEdit{Changes: s.changes}
}
