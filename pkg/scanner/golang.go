package scanner

import (
	"regexp"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

var (
	goImportRe = regexp.MustCompile("^\\s*import\\s+(?:([\\w.]+)\\s+)?([\"`])([^\"`]+)[\"`]")
	goSpecRe   = regexp.MustCompile("^\\s*(?:([\\w.]+)\\s+)?([\"`])([^\"`]+)[\"`]")
	goOpenRe   = regexp.MustCompile(`^\s*import\s*\(\s*(?://.*)?$`)
)

// Go scans single imports and parenthesised import blocks. The block flag is the
// only state carried between lines.
type Go struct{}

func (Go) Language() types.Language { return types.LanguageGo }

func (Go) Scan(content []byte) []types.ImportStatement {
	var out []types.ImportStatement
	inBlock := false
	for i, line := range Lines(content) {
		if isBlank(line) || isSlashComment(line) {
			continue
		}
		if inBlock {
			if strings.HasPrefix(strings.TrimSpace(line), ")") {
				inBlock = false
				continue
			}
			if m := goSpecRe.FindStringSubmatchIndex(line); m != nil {
				out = append(out, goStatement(line, i, m))
			}
			continue
		}
		if goOpenRe.MatchString(line) {
			inBlock = true
			continue
		}
		if m := goImportRe.FindStringSubmatchIndex(line); m != nil {
			out = append(out, goStatement(line, i, m))
		}
	}
	return out
}

func goStatement(line string, lineNo int, m []int) types.ImportStatement {
	s := types.ImportStatement{
		Language: types.LanguageGo,
		Line:     lineNo,
		StartCol: m[6],
		EndCol:   m[7],
		Path:     line[m[6]:m[7]],
		Kind:     types.PackageImport,
		Quote:    line[m[4]:m[5]],
	}
	if m[2] >= 0 {
		s.Alias = line[m[2]:m[3]]
	}
	return s
}
