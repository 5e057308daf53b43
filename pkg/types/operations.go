package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RenameRequest represents a file or directory that moved from OldPath to NewPath.
// Paths are absolute.
type RenameRequest struct {
	OldPath     string
	NewPath     string
	IsDirectory bool
	// Extensions restricts the candidate files. Empty means the family of the renamed
	// file, or every family for directories.
	Extensions []string
}

// Validate checks the request is well formed.
func (r RenameRequest) Validate() error {
	if r.OldPath == "" || r.NewPath == "" {
		return &RefactorError{Type: InvalidRequest, Message: "old and new paths are required"}
	}
	if !filepath.IsAbs(r.OldPath) || !filepath.IsAbs(r.NewPath) {
		return &RefactorError{Type: InvalidRequest, Message: fmt.Sprintf("paths must be absolute: %s -> %s", r.OldPath, r.NewPath)}
	}
	if filepath.Clean(r.OldPath) == filepath.Clean(r.NewPath) {
		return &RefactorError{Type: InvalidRequest, Message: "source and destination are the same: " + r.OldPath}
	}
	return nil
}

// OldName is the last segment of the old path.
func (r RenameRequest) OldName() string { return filepath.Base(r.OldPath) }

// NewName is the last segment of the new path.
func (r RenameRequest) NewName() string { return filepath.Base(r.NewPath) }

// OldBase is the old file name without extension; for directories it equals OldName.
func (r RenameRequest) OldBase() string {
	if r.IsDirectory {
		return r.OldName()
	}
	return StripExt(r.OldName())
}

// NewBase is the new file name without extension; for directories it equals NewName.
func (r RenameRequest) NewBase() string {
	if r.IsDirectory {
		return r.NewName()
	}
	return StripExt(r.NewName())
}

// Language is the grammar of the renamed file, LanguageUnknown for directories.
func (r RenameRequest) Language() Language {
	if r.IsDirectory {
		return LanguageUnknown
	}
	return DetectLanguage(r.OldPath)
}

// CandidateExtensions returns the extension set to enumerate.
func (r RenameRequest) CandidateExtensions() []string {
	if len(r.Extensions) > 0 {
		return r.Extensions
	}
	if r.IsDirectory {
		return AllExtensions()
	}
	if exts := r.Language().Extensions(); exts != nil {
		return exts
	}
	return []string{filepath.Ext(r.OldPath)}
}

// MapPath translates a path under the old location to its post-rename location.
// Paths outside the renamed entity are returned unchanged.
func (r RenameRequest) MapPath(p string) string {
	if p == r.OldPath {
		return r.NewPath
	}
	if r.IsDirectory && IsWithin(r.OldPath, p) {
		return filepath.Join(r.NewPath, strings.TrimPrefix(p, r.OldPath))
	}
	return p
}

// Inverse returns the request that moves the entity back.
func (r RenameRequest) Inverse() RenameRequest {
	return RenameRequest{OldPath: r.NewPath, NewPath: r.OldPath, IsDirectory: r.IsDirectory, Extensions: r.Extensions}
}

// CandidateFile is one file offered for scanning.
type CandidateFile struct {
	Path string
	Size int64
}

// Replacement is a single text replacement on one line of the original content.
type Replacement struct {
	Line     int    `json:"line" yaml:"line"`
	StartCol int    `json:"start_col" yaml:"start_col"`
	EndCol   int    `json:"end_col" yaml:"end_col"`
	OldText  string `json:"old_text" yaml:"old_text"`
	NewText  string `json:"new_text" yaml:"new_text"`
}

// FileEdit groups the disjoint replacements of one file, computed against its
// original content.
type FileEdit struct {
	File         string        `json:"file" yaml:"file"`
	Replacements []Replacement `json:"replacements" yaml:"replacements"`
	Summary      string        `json:"summary" yaml:"summary"`
}

// BatchStats reports the per-file failures and limits hit while computing a batch.
type BatchStats struct {
	Candidates int  `json:"candidates" yaml:"candidates"`
	Scanned    int  `json:"scanned" yaml:"scanned"`
	Filtered   int  `json:"filtered" yaml:"filtered"`
	Unreadable int  `json:"unreadable" yaml:"unreadable"`
	TooLarge   int  `json:"too_large" yaml:"too_large"`
	Truncated  bool `json:"truncated" yaml:"truncated"`
}

// EditBatch is the output of one rename session.
type EditBatch struct {
	ID      string        `json:"id" yaml:"id"`
	Request RenameRequest `json:"request" yaml:"request"`
	Edits   []FileEdit    `json:"edits" yaml:"edits"`
	Stats   BatchStats    `json:"stats" yaml:"stats"`
}

// ChangeCount is the total number of replacements.
func (b *EditBatch) ChangeCount() int {
	n := 0
	for _, e := range b.Edits {
		n += len(e.Replacements)
	}
	return n
}

// AffectedFiles lists the files with edits.
func (b *EditBatch) AffectedFiles() []string {
	files := make([]string, 0, len(b.Edits))
	for _, e := range b.Edits {
		files = append(files, e.File)
	}
	return files
}

// Empty reports the "no changes needed" outcome.
func (b *EditBatch) Empty() bool {
	return b == nil || len(b.Edits) == 0
}

// Message is the user-facing outcome line.
func (b *EditBatch) Message() string {
	msg := "No changes needed"
	if !b.Empty() {
		msg = fmt.Sprintf("%d changes in %d files, ready to apply", b.ChangeCount(), len(b.Edits))
	}
	if b != nil && b.Stats.Truncated {
		msg += " (file limit reached, results may be incomplete)"
	}
	return msg
}

// FileSnapshot is the before/after content of one file touched by an applied batch.
type FileSnapshot struct {
	File     string
	Original []byte
	Result   []byte
}

// HistoryEntry is one applied batch.
type HistoryEntry struct {
	BatchID   string
	Snapshots []FileSnapshot
}

// StripExt removes the final extension of a file name.
func StripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IsWithin reports whether p equals dir or lives below it.
func IsWithin(dir, p string) bool {
	if p == dir {
		return true
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
