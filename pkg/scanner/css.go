package scanner

import (
	"regexp"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

var (
	cssAtRuleRe = regexp.MustCompile(`@(import|use|forward)\b`)
	cssURLRe    = regexp.MustCompile(`url\(\s*(['"]?)([^'")\s]+)['"]?\s*\)`)
	cssQuotedRe = regexp.MustCompile(`(['"])([^'"]+)['"]`)
)

// CSS scans @import (quoted or url()), and the Sass module rules @use and @forward.
type CSS struct{}

func (CSS) Language() types.Language { return types.LanguageCSS }

func (CSS) Scan(content []byte) []types.ImportStatement {
	var out []types.ImportStatement
	for i, line := range Lines(content) {
		if isBlank(line) || isSlashComment(line) {
			continue
		}
		for _, at := range cssAtRuleRe.FindAllStringIndex(line, -1) {
			out = append(out, scanCSSRule(line, i, at[1])...)
		}
	}
	return out
}

// scanCSSRule reads the paths of one at-rule, up to its terminating semicolon.
func scanCSSRule(line string, lineNo, from int) []types.ImportStatement {
	end := len(line)
	if i := strings.IndexByte(line[from:], ';'); i >= 0 {
		end = from + i
	}
	rule := line[from:end]

	var stmts []types.ImportStatement
	add := func(m []int) {
		stmts = append(stmts, types.ImportStatement{
			Language: types.LanguageCSS,
			Line:     lineNo,
			StartCol: from + m[4],
			EndCol:   from + m[5],
			Path:     rule[m[4]:m[5]],
			Kind:     types.CSSImport,
			Quote:    rule[m[2]:m[3]],
		})
	}
	urls := cssURLRe.FindAllStringSubmatchIndex(rule, -1)
	for _, m := range urls {
		add(m)
	}
	for _, m := range cssQuotedRe.FindAllStringSubmatchIndex(rule, -1) {
		if insideAny(m[0], urls) {
			continue
		}
		add(m)
	}
	return collect(stmts)
}

func insideAny(pos int, spans [][]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}
