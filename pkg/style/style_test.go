package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamaar/reimport/pkg/scanner"
	"github.com/mamaar/reimport/pkg/types"
)

func firstStmt(t *testing.T, lang types.Language, line string) types.ImportStatement {
	t.Helper()
	stmts := scanner.For(lang).Scan([]byte(line))
	require.NotEmpty(t, stmts)
	return stmts[0]
}

func TestFormat_PathOnly(t *testing.T) {
	line := "import { hello } from './utils';"
	stmt := firstStmt(t, types.LanguageJS, line)

	f := New(Options{}, []string{line})
	r, ok := f.Format(0, line, []Edit{{Stmt: stmt, Path: "./helpers"}})
	require.True(t, ok)
	assert.Equal(t, "./utils", r.OldText)
	assert.Equal(t, "./helpers", r.NewText)
	assert.Equal(t, "import { hello } from './helpers';", apply(line, r))
}

func TestFormat_PreservesNoSemicolonAndComment(t *testing.T) {
	lines := []string{
		"import a from 'a'",
		"  import { b } from './b' // keep me",
	}
	stmt := firstStmt(t, types.LanguageJS, lines[1])
	f := New(Options{}, lines)
	r, ok := f.Format(1, lines[1], []Edit{{Stmt: stmt, Path: "./c"}})
	require.True(t, ok)
	assert.Equal(t, "  import { b } from './c' // keep me", apply(lines[1], r))
}

func TestFormat_Overrides(t *testing.T) {
	line := `import x from "./old"`
	stmt := firstStmt(t, types.LanguageJS, line)

	f := New(Options{Quote: QuoteSingle, Semicolon: SemicolonAlways}, nil)
	r, ok := f.Format(0, line, []Edit{{Stmt: stmt, Path: "./new"}})
	require.True(t, ok)
	assert.Equal(t, "import x from './new';", apply(line, r))

	line = "const y = require('./old');"
	stmt = firstStmt(t, types.LanguageJS, line)
	f = New(Options{Semicolon: SemicolonNever}, nil)
	r, ok = f.Format(0, line, []Edit{{Stmt: stmt, Path: "./new"}})
	require.True(t, ok)
	assert.Equal(t, "const y = require('./new')", apply(line, r))
}

func TestFormat_NoChange(t *testing.T) {
	line := "import x from './same';"
	stmt := firstStmt(t, types.LanguageJS, line)
	_, ok := New(Options{}, nil).Format(0, line, []Edit{{Stmt: stmt, Path: "./same"}})
	assert.False(t, ok)
}

func TestFormat_PythonNames(t *testing.T) {
	line := "from . import helpers, other  # note"
	stmt := firstStmt(t, types.LanguagePython, line)
	r, ok := New(Options{Quote: QuoteDouble}, nil).Format(3, line, []Edit{{
		Stmt:  stmt,
		Path:  "..b",
		Names: map[int]string{0: "tools"},
	}})
	require.True(t, ok)
	assert.Equal(t, 3, r.Line)
	assert.Equal(t, "from ..b import tools, other  # note", apply(line, r))
}

func TestFormat_TwoStatementsOneLine(t *testing.T) {
	line := `const a = require('./x'), b = require("./x");`
	stmts := scanner.JS{}.Scan([]byte(line))
	require.Len(t, stmts, 2)
	r, ok := New(Options{}, nil).Format(0, line, []Edit{
		{Stmt: stmts[0], Path: "./y"},
		{Stmt: stmts[1], Path: "./y"},
	})
	require.True(t, ok)
	assert.Equal(t, `const a = require('./y'), b = require("./y");`, apply(line, r))
}

func TestFormat_GoKeepsQuotes(t *testing.T) {
	line := "\tu `example.com/app/internal/utils`"
	stmt := scanner.Go{}.Scan([]byte("import (\n" + line + "\n)"))[0]
	stmt.Line = 0
	r, ok := New(Options{Quote: QuoteSingle}, nil).Format(0, line, []Edit{{Stmt: stmt, Path: "example.com/app/internal/common/utils"}})
	require.True(t, ok)
	assert.Equal(t, "\tu `example.com/app/internal/common/utils`", apply(line, r))
}

func TestDetect(t *testing.T) {
	fs := Detect([]string{
		`import a from "a";`,
		`import b from "b";`,
		`const c = require('c')`,
		`function f() { return 'x' }`,
	})
	assert.Equal(t, `"`, fs.Quote)
	assert.True(t, fs.Semicolon)
	assert.Equal(t, 3, fs.Lines)
}

func TestQuoteFor_Precedence(t *testing.T) {
	js := types.ImportStatement{Language: types.LanguageJS, Quote: `"`}
	assert.Equal(t, `"`, (&Formatter{}).QuoteFor(js))
	assert.Equal(t, "'", (&Formatter{Options: Options{Quote: QuoteSingle}}).QuoteFor(js))

	unquoted := types.ImportStatement{Language: types.LanguageJS}
	assert.Equal(t, `"`, (&Formatter{File: FileStyle{Quote: `"`}}).QuoteFor(unquoted))
	assert.Equal(t, "'", (&Formatter{}).QuoteFor(unquoted))

	url := types.ImportStatement{Language: types.LanguageCSS}
	assert.Equal(t, "", (&Formatter{Options: Options{Quote: QuoteDouble}}).QuoteFor(url))
}

func TestParse(t *testing.T) {
	q, err := ParseQuote("double")
	require.NoError(t, err)
	assert.Equal(t, QuoteDouble, q)
	_, err = ParseQuote("backtick")
	assert.Error(t, err)

	s, err := ParseSemicolon("")
	require.NoError(t, err)
	assert.Equal(t, SemicolonAuto, s)
	_, err = ParseSemicolon("sometimes")
	assert.Error(t, err)
}

func apply(line string, r types.Replacement) string {
	return line[:r.StartCol] + r.NewText + line[r.EndCol:]
}
