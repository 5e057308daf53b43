package types

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the project root a rename session operates in.
type Workspace struct {
	RootPath string
}

// NewWorkspace resolves root to an absolute, existing directory.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", abs)
	}
	return &Workspace{RootPath: abs}, nil
}

// Abs resolves a workspace-relative path. Absolute paths are cleaned and returned.
func (ws *Workspace) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(ws.RootPath, p)
}

// Rel returns p relative to the workspace root, or p itself when it lies outside.
func (ws *Workspace) Rel(p string) string {
	rel, err := filepath.Rel(ws.RootPath, p)
	if err != nil || !IsWithin(ws.RootPath, p) {
		return p
	}
	return rel
}

// Request builds a RenameRequest from workspace-relative or absolute paths.
// isDir is detected from whichever of the two paths exists on disk.
func (ws *Workspace) Request(oldPath, newPath string) RenameRequest {
	req := RenameRequest{OldPath: ws.Abs(oldPath), NewPath: ws.Abs(newPath)}
	for _, p := range []string{req.NewPath, req.OldPath} {
		if info, err := os.Stat(p); err == nil {
			req.IsDirectory = info.IsDir()
			break
		}
	}
	return req
}
