package refactor

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mamaar/reimport/pkg/types"
)

// Enumerate walks the workspace and returns the files whose extension is in exts.
// Hidden and vendored directories are skipped, as is anything matching an exclude
// pattern. The walk stops at MaxFiles and reports truncation.
func (e *DefaultEngine) Enumerate(ctx context.Context, exts []string) ([]types.CandidateFile, bool, error) {
	var (
		files     []types.CandidateFile
		truncated bool
	)
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Debug("walk error", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(e.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || types.IsVendored(rel+"/") || e.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !types.HasExtension(exts, filepath.Ext(path)) || e.excluded(rel) {
			return nil
		}
		if e.config.MaxFiles > 0 && len(files) >= e.config.MaxFiles {
			truncated = true
			return filepath.SkipAll
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		files = append(files, types.CandidateFile{Path: path, Size: size})
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	e.metrics.observeEnumerated(len(files))
	return files, truncated, nil
}

func (e *DefaultEngine) excluded(rel string) bool {
	for _, pattern := range e.config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// excludedDir prunes directories matched by "dir/**" style patterns.
func (e *DefaultEngine) excludedDir(rel string) bool {
	for _, pattern := range e.config.Exclude {
		dirPattern := strings.TrimSuffix(pattern, "/**")
		if dirPattern == pattern {
			continue
		}
		if ok, _ := doublestar.Match(dirPattern, rel); ok {
			return true
		}
	}
	return false
}
