// Package style re-renders import lines around a new path while keeping the
// author's quotes, semicolons, indentation and trailing comments.
package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

// Quote is the configured quote preference.
type Quote int

const (
	QuoteAuto Quote = iota
	QuoteSingle
	QuoteDouble
)

// Semicolon is the configured statement terminator preference for JS/TS.
type Semicolon int

const (
	SemicolonAuto Semicolon = iota
	SemicolonAlways
	SemicolonNever
)

// ParseQuote accepts auto, single or double.
func ParseQuote(s string) (Quote, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return QuoteAuto, nil
	case "single":
		return QuoteSingle, nil
	case "double":
		return QuoteDouble, nil
	}
	return QuoteAuto, fmt.Errorf("unknown quote style %q (want auto, single or double)", s)
}

// ParseSemicolon accepts auto, always or never.
func ParseSemicolon(s string) (Semicolon, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return SemicolonAuto, nil
	case "always":
		return SemicolonAlways, nil
	case "never":
		return SemicolonNever, nil
	}
	return SemicolonAuto, fmt.Errorf("unknown semicolon style %q (want auto, always or never)", s)
}

// Options are the configuration overrides.
type Options struct {
	Quote     Quote
	Semicolon Semicolon
}

// FileStyle is the majority convention of a file's declaration lines.
type FileStyle struct {
	Quote     string
	Semicolon bool
	Lines     int
}

// Detect counts the quote character and trailing semicolon of import, export,
// const, let and var lines and keeps the more frequent of each.
func Detect(lines []string) FileStyle {
	var single, double, semi, bare int
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if !isDeclaration(t) {
			continue
		}
		if i := strings.IndexAny(t, `'"`); i >= 0 {
			if t[i] == '\'' {
				single++
			} else {
				double++
			}
		}
		if strings.HasSuffix(t, ";") {
			semi++
		} else {
			bare++
		}
	}
	fs := FileStyle{Lines: semi + bare, Semicolon: semi > bare}
	switch {
	case single > double:
		fs.Quote = "'"
	case double > single:
		fs.Quote = `"`
	}
	return fs
}

func isDeclaration(t string) bool {
	for _, kw := range []string{"import ", "export ", "const ", "let ", "var "} {
		if strings.HasPrefix(t, kw) {
			return true
		}
	}
	return false
}

// Formatter renders replacements for one file.
type Formatter struct {
	Options Options
	File    FileStyle
}

// New detects the file's majority style from its lines.
func New(opts Options, lines []string) *Formatter {
	return &Formatter{Options: opts, File: Detect(lines)}
}

// QuoteFor picks the quote of a rewritten path: override, then the statement's own
// quote, then the file majority, then a single quote. Go keeps its own quotes;
// Python and unquoted url() have none.
func (f *Formatter) QuoteFor(stmt types.ImportStatement) string {
	switch stmt.Language {
	case types.LanguageGo:
		return stmt.Quote
	case types.LanguagePython:
		return ""
	case types.LanguageCSS:
		if stmt.Quote == "" {
			return ""
		}
	}
	switch f.Options.Quote {
	case QuoteSingle:
		return "'"
	case QuoteDouble:
		return `"`
	}
	if stmt.Quote != "" {
		return stmt.Quote
	}
	if f.File.Quote != "" {
		return f.File.Quote
	}
	return "'"
}

// SemicolonFor decides terminator presence for a JS line that currently has (or
// lacks) one. Without an override the line's own convention stands.
func (f *Formatter) SemicolonFor(has bool) bool {
	switch f.Options.Semicolon {
	case SemicolonAlways:
		return true
	case SemicolonNever:
		return false
	}
	return has
}

// Edit is the rewrite of one statement on a line.
type Edit struct {
	Stmt  types.ImportStatement
	Path  string
	Names map[int]string
}

type span struct {
	start, end int
	text       string
}

// Format applies edits to line and returns the smallest replacement covering
// every changed region. It reports false when the line is unchanged.
func (f *Formatter) Format(lineNo int, line string, edits []Edit) (types.Replacement, bool) {
	var spans []span
	js := false
	for _, e := range edits {
		s := e.Stmt
		if s.Language == types.LanguageJS {
			js = true
		}
		q := f.QuoteFor(s)
		quoted := s.Quote != "" && s.StartCol > 0 && s.EndCol < len(line) &&
			line[s.StartCol-1:s.StartCol] == s.Quote && line[s.EndCol:s.EndCol+1] == s.Quote
		switch {
		case quoted && q != s.Quote:
			spans = append(spans, span{s.StartCol - 1, s.EndCol + 1, q + e.Path + q})
		case e.Path != s.Path:
			spans = append(spans, span{s.StartCol, s.EndCol, e.Path})
		}
		for i, name := range e.Names {
			if i < len(s.Names) && s.Names[i].Name != name {
				spans = append(spans, span{s.Names[i].StartCol, s.Names[i].EndCol, name})
			}
		}
	}
	if js && len(spans) > 0 {
		if sp, ok := f.semicolonSpan(line); ok {
			spans = append(spans, sp)
		}
	}
	if len(spans) == 0 {
		return types.Replacement{}, false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	start, end := spans[0].start, spans[0].end
	var b strings.Builder
	prev := start
	for _, sp := range spans {
		if sp.start < prev {
			// overlapping statement spans are never produced by the scanners
			continue
		}
		b.WriteString(line[prev:sp.start])
		b.WriteString(sp.text)
		prev = sp.end
		if sp.end > end {
			end = sp.end
		}
	}
	b.WriteString(line[prev:end])

	r := types.Replacement{
		Line:     lineNo,
		StartCol: start,
		EndCol:   end,
		OldText:  line[start:end],
		NewText:  b.String(),
	}
	if r.OldText == r.NewText {
		return types.Replacement{}, false
	}
	return r, true
}

// semicolonSpan adds or drops the terminator of a single-line JS statement when the
// chosen convention differs from the line's.
func (f *Formatter) semicolonSpan(line string) (span, bool) {
	code := line
	if i := strings.Index(line, "//"); i >= 0 {
		code = line[:i]
	}
	trimmed := strings.TrimRight(code, " \t")
	if trimmed == "" {
		return span{}, false
	}
	end := len(trimmed)
	last := trimmed[end-1]
	has := last == ';'
	if !has && last != '\'' && last != '"' && last != ')' {
		return span{}, false
	}
	want := f.SemicolonFor(has)
	switch {
	case want && !has:
		return span{end, end, ";"}, true
	case !want && has:
		return span{end - 1, end, ""}, true
	}
	return span{}, false
}
