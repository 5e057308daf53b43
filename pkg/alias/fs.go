package alias

import (
	"os"
	"path/filepath"
	"strings"
)

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// exists reports whether base names a directory, a file, or a file once one of exts
// is appended.
func exists(base string, exts []string) bool {
	if _, err := os.Stat(base); err == nil {
		return true
	}
	for _, ext := range exts {
		if isFile(base + ext) {
			return true
		}
	}
	return false
}

// within returns the slash-separated path of p below dir.
func within(dir, p string) (string, bool) {
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
