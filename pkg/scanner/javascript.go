package scanner

import (
	"regexp"

	"github.com/mamaar/reimport/pkg/types"
)

var (
	jsFromRe    = regexp.MustCompile(`\b(import|export)\b[^'"]*?\bfrom\s*(['"])([^'"\n]+)['"]`)
	jsBareRe    = regexp.MustCompile(`^\s*import\s*(['"])([^'"\n]+)['"]`)
	jsContRe    = regexp.MustCompile(`^\s*}\s*from\s*(['"])([^'"\n]+)['"]`)
	jsRequireRe = regexp.MustCompile(`\brequire\s*\(\s*(['"])([^'"\n]+)['"]\s*\)`)
	jsDynamicRe = regexp.MustCompile(`\bimport\s*\(\s*(['"])([^'"\n]+)['"]\s*\)`)
)

// JS scans JavaScript and TypeScript, including the script blocks of .vue and .svelte files.
type JS struct{}

func (JS) Language() types.Language { return types.LanguageJS }

func (JS) Scan(content []byte) []types.ImportStatement {
	var out []types.ImportStatement
	for i, line := range Lines(content) {
		if isBlank(line) || isSlashComment(line) {
			continue
		}
		out = append(out, scanJSLine(line, i)...)
	}
	return out
}

func scanJSLine(line string, lineNo int) []types.ImportStatement {
	var stmts []types.ImportStatement
	add := func(kind types.ImportKind, m []int, quoteGroup int) {
		q, p := 2*quoteGroup, 2*(quoteGroup+1)
		stmts = append(stmts, types.ImportStatement{
			Language: types.LanguageJS,
			Line:     lineNo,
			StartCol: m[p],
			EndCol:   m[p+1],
			Path:     line[m[p]:m[p+1]],
			Kind:     kind,
			Quote:    line[m[q]:m[q+1]],
		})
	}

	for _, m := range jsFromRe.FindAllStringSubmatchIndex(line, -1) {
		kind := types.PlainImport
		if line[m[2]:m[3]] == "export" {
			kind = types.ReExport
		}
		add(kind, m, 2)
	}
	if m := jsBareRe.FindStringSubmatchIndex(line); m != nil {
		add(types.PlainImport, m, 1)
	}
	if m := jsContRe.FindStringSubmatchIndex(line); m != nil {
		add(types.PlainImport, m, 1)
	}
	for _, m := range jsRequireRe.FindAllStringSubmatchIndex(line, -1) {
		add(types.RequireImport, m, 1)
	}
	for _, m := range jsDynamicRe.FindAllStringSubmatchIndex(line, -1) {
		add(types.DynamicImport, m, 1)
	}
	return collect(stmts)
}
