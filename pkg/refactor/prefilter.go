package refactor

import (
	"bytes"
	"fmt"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mamaar/reimport/pkg/scanner"
	"github.com/mamaar/reimport/pkg/types"
)

// Needles returns the substrings a file must contain to possibly reference the
// renamed entity.
func Needles(req types.RenameRequest) [][]byte {
	seen := make(map[string]bool)
	var needles [][]byte
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		needles = append(needles, []byte(s))
	}

	add(req.OldBase())
	// SCSS partials are imported without their underscore
	add(strings.TrimPrefix(req.OldBase(), "_"))
	if !req.IsDirectory && req.OldBase() == "index" {
		// "./components" resolves to components/index.ts
		add(filepath.Base(filepath.Dir(req.OldPath)))
	}
	return needles
}

// Prefilter reports whether content contains any of the needles. Files that fail
// it cannot reference the renamed entity by name and are not scanned.
func Prefilter(content []byte, needles [][]byte) bool {
	for _, n := range needles {
		if bytes.Contains(content, n) {
			return true
		}
	}
	return false
}

var packageDeclRe = regexp.MustCompile(`^(\s*package\s+)([A-Za-z_][A-Za-z0-9_]*)\b`)

// PackageDeclReplacement renames the package clause of a Go file that moved with
// its directory. Only the first scanLines lines are searched, and only a clause
// naming oldName (or its _test variant) is replaced.
func PackageDeclReplacement(content []byte, oldName, newName string, scanLines int) (types.Replacement, bool) {
	if !token.IsIdentifier(newName) || oldName == newName {
		return types.Replacement{}, false
	}
	lines := scanner.Lines(content)
	if scanLines > 0 && len(lines) > scanLines {
		lines = lines[:scanLines]
	}
	for i, line := range lines {
		m := packageDeclRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		name := line[m[4]:m[5]]
		var repl string
		switch name {
		case oldName:
			repl = newName
		case oldName + "_test":
			repl = newName + "_test"
		default:
			return types.Replacement{}, false
		}
		return types.Replacement{
			Line:     i,
			StartCol: m[4],
			EndCol:   m[5],
			OldText:  name,
			NewText:  repl,
		}, true
	}
	return types.Replacement{}, false
}

// describe renders a replacement for logs and previews.
func describe(r types.Replacement) string {
	return fmt.Sprintf("%d:%d %q -> %q", r.Line+1, r.StartCol+1, r.OldText, r.NewText)
}
