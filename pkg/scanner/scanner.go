// Package scanner locates import statements and the byte span of their path token.
// Scanning is line based; each grammar sits behind the Scanner interface so a real
// tokenizer can replace it without touching matching or rewriting.
package scanner

import (
	"bytes"
	"sort"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

// Scanner extracts the import statements of one grammar.
type Scanner interface {
	Language() types.Language
	Scan(content []byte) []types.ImportStatement
}

// For returns the scanner of lang, or nil when the language has none.
func For(lang types.Language) Scanner {
	switch lang {
	case types.LanguageJS:
		return JS{}
	case types.LanguagePython:
		return Python{}
	case types.LanguageGo:
		return Go{}
	case types.LanguageCSS:
		return CSS{}
	default:
		return nil
	}
}

// ScanFile picks the scanner by file extension.
func ScanFile(path string, content []byte) []types.ImportStatement {
	s := For(types.DetectLanguage(path))
	if s == nil {
		return nil
	}
	return s.Scan(content)
}

// Lines splits content on \n and drops a trailing \r from each line. The returned
// lines index the same byte columns as the file content.
func Lines(content []byte) []string {
	raw := bytes.Split(content, []byte("\n"))
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(bytes.TrimSuffix(l, []byte("\r")))
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isSlashComment approximates C-style comment lines: //, /* and the * continuation
// of block comments.
func isSlashComment(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*")
}

// collect sorts statements by column and drops duplicates found by overlapping patterns.
func collect(stmts []types.ImportStatement) []types.ImportStatement {
	sort.SliceStable(stmts, func(i, j int) bool { return stmts[i].StartCol < stmts[j].StartCol })
	out := stmts[:0]
	for i, s := range stmts {
		if i > 0 && s.StartCol == out[len(out)-1].StartCol {
			continue
		}
		out = append(out, s)
	}
	return out
}
