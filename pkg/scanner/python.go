package scanner

import (
	"regexp"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

var (
	pyFromRe   = regexp.MustCompile(`^\s*from\s+(\.*[\w.]*)\s+import\b`)
	pyImportRe = regexp.MustCompile(`^\s*import\s+`)
	pyItemRe   = regexp.MustCompile(`^\s*([\w.]+)(?:\s+as\s+\w+)?\s*$`)
	pyNameRe   = regexp.MustCompile(`[A-Za-z_]\w*`)
)

// Python scans from-imports and import lists. Leading dots stay part of Path.
type Python struct{}

func (Python) Language() types.Language { return types.LanguagePython }

func (Python) Scan(content []byte) []types.ImportStatement {
	var out []types.ImportStatement
	for i, line := range Lines(content) {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if m := pyFromRe.FindStringSubmatchIndex(line); m != nil && m[3] > m[2] {
			out = append(out, types.ImportStatement{
				Language: types.LanguagePython,
				Line:     i,
				StartCol: m[2],
				EndCol:   m[3],
				Path:     line[m[2]:m[3]],
				Kind:     types.FromImport,
				Names:    importedNames(line, m[1]),
			})
			continue
		}
		if m := pyImportRe.FindStringIndex(line); m != nil {
			out = append(out, importList(line, i, m[1])...)
		}
	}
	return out
}

// codeEnd returns the column where a trailing # comment starts, or len(line).
func codeEnd(line string) int {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return i
	}
	return len(line)
}

// importedNames locates the names after "import" in a from-import, skipping
// "as" aliases and parentheses.
func importedNames(line string, from int) []types.NameSpan {
	end := codeEnd(line)
	if from >= end {
		return nil
	}
	var names []types.NameSpan
	col := from
	for _, part := range strings.Split(line[from:end], ",") {
		if loc := pyNameRe.FindStringIndex(part); loc != nil {
			names = append(names, types.NameSpan{
				Name:     part[loc[0]:loc[1]],
				StartCol: col + loc[0],
				EndCol:   col + loc[1],
			})
		}
		col += len(part) + 1
	}
	return names
}

// importList splits "import a.b as c, d" into one statement per module.
func importList(line string, lineNo, from int) []types.ImportStatement {
	end := codeEnd(line)
	if from >= end {
		return nil
	}
	var stmts []types.ImportStatement
	col := from
	for _, part := range strings.Split(line[from:end], ",") {
		if m := pyItemRe.FindStringSubmatchIndex(part); m != nil {
			stmts = append(stmts, types.ImportStatement{
				Language: types.LanguagePython,
				Line:     lineNo,
				StartCol: col + m[2],
				EndCol:   col + m[3],
				Path:     part[m[2]:m[3]],
				Kind:     types.PlainImport,
			})
		}
		col += len(part) + 1
	}
	return stmts
}
