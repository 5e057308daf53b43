package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamaar/reimport/pkg/types"
)

// span checks that the statement columns cover exactly its path on the given line.
func span(t *testing.T, content string, s types.ImportStatement) {
	t.Helper()
	lines := Lines([]byte(content))
	require.Less(t, s.Line, len(lines))
	assert.Equal(t, s.Path, lines[s.Line][s.StartCol:s.EndCol])
}

func TestJS_Scan(t *testing.T) {
	content := `import React from 'react';
import { hello } from "./utils";
export * from './types'
import './styles.css';
const fs = require('fs'), x = require("../lib/x");
const lazy = () => import('./pages/Home');
// import { old } from './old';
/* import gone from './gone' */
import {
  a,
  b,
} from '@/components/Button';
`
	stmts := JS{}.Scan([]byte(content))
	require.Len(t, stmts, 8)

	want := []struct {
		path  string
		kind  types.ImportKind
		quote string
		line  int
	}{
		{"react", types.PlainImport, "'", 0},
		{"./utils", types.PlainImport, `"`, 1},
		{"./types", types.ReExport, "'", 2},
		{"./styles.css", types.PlainImport, "'", 3},
		{"fs", types.RequireImport, "'", 4},
		{"../lib/x", types.RequireImport, `"`, 4},
		{"./pages/Home", types.DynamicImport, "'", 5},
		{"@/components/Button", types.PlainImport, "'", 11},
	}
	for i, w := range want {
		assert.Equal(t, w.path, stmts[i].Path)
		assert.Equal(t, w.kind, stmts[i].Kind, w.path)
		assert.Equal(t, w.quote, stmts[i].Quote, w.path)
		assert.Equal(t, w.line, stmts[i].Line, w.path)
		span(t, content, stmts[i])
	}
}

func TestJS_ScanCRLF(t *testing.T) {
	content := "import a from './a';\r\nimport b from './b';\r\n"
	stmts := JS{}.Scan([]byte(content))
	require.Len(t, stmts, 2)
	assert.Equal(t, "./b", stmts[1].Path)
	span(t, content, stmts[1])
}

func TestPython_Scan(t *testing.T) {
	content := `import os
import pkg.a.helpers as h, json  # stdlib
from . import helpers, utils as u
from ..core.models import (User,
from app.services import auth
# from nope import x
`
	stmts := Python{}.Scan([]byte(content))
	require.Len(t, stmts, 6)

	assert.Equal(t, "os", stmts[0].Path)
	assert.Equal(t, types.PlainImport, stmts[0].Kind)

	assert.Equal(t, "pkg.a.helpers", stmts[1].Path)
	assert.Equal(t, "json", stmts[2].Path)
	span(t, content, stmts[2])

	rel := stmts[3]
	assert.Equal(t, ".", rel.Path)
	assert.Equal(t, 1, rel.Dots())
	assert.Equal(t, types.FromImport, rel.Kind)
	require.Len(t, rel.Names, 2)
	assert.Equal(t, "helpers", rel.Names[0].Name)
	assert.Equal(t, "utils", rel.Names[1].Name)
	line := Lines([]byte(content))[2]
	assert.Equal(t, "utils", line[rel.Names[1].StartCol:rel.Names[1].EndCol])

	assert.Equal(t, "..core.models", stmts[4].Path)
	assert.Equal(t, 2, stmts[4].Dots())
	require.Len(t, stmts[4].Names, 1)
	assert.Equal(t, "User", stmts[4].Names[0].Name)

	assert.Equal(t, "app.services", stmts[5].Path)
	for _, s := range stmts {
		span(t, content, s)
		assert.Empty(t, s.Quote)
	}
}

func TestGo_Scan(t *testing.T) {
	content := "package main\n\nimport \"fmt\"\n\nimport (\n\t\"os\"\n\t// \"commented/out\"\n\tu \"example.com/app/internal/utils\"\n\t_ \"embed\"\n\t. `example.com/app/dot`\n)\n\nvar s = \"not/an/import\"\n"
	stmts := Go{}.Scan([]byte(content))
	require.Len(t, stmts, 5)

	assert.Equal(t, "fmt", stmts[0].Path)
	assert.Equal(t, "os", stmts[1].Path)
	assert.Equal(t, "example.com/app/internal/utils", stmts[2].Path)
	assert.Equal(t, "u", stmts[2].Alias)
	assert.Equal(t, "_", stmts[3].Alias)
	assert.Equal(t, "example.com/app/dot", stmts[4].Path)
	assert.Equal(t, "`", stmts[4].Quote)
	for _, s := range stmts {
		assert.Equal(t, types.PackageImport, s.Kind)
		span(t, content, s)
	}
}

func TestGo_ScanAliasedSingle(t *testing.T) {
	content := "import u \"example.com/app/utils\" // helpers\n"
	stmts := Go{}.Scan([]byte(content))
	require.Len(t, stmts, 1)
	assert.Equal(t, "u", stmts[0].Alias)
	assert.Equal(t, "example.com/app/utils", stmts[0].Path)
	span(t, content, stmts[0])
}

func TestCSS_Scan(t *testing.T) {
	content := `@import "base.css";
@import url(theme/dark.css) screen;
@import url('./print.css');
@import 'variables', 'mixins';
@use "sass:math";
@forward "src/list" hide list-reset;
// @import "old";
.a { color: red; }
`
	stmts := CSS{}.Scan([]byte(content))
	require.Len(t, stmts, 7)

	paths := []string{}
	for _, s := range stmts {
		paths = append(paths, s.Path)
		span(t, content, s)
		assert.Equal(t, types.CSSImport, s.Kind)
	}
	assert.Equal(t, []string{"base.css", "theme/dark.css", "./print.css", "variables", "mixins", "sass:math", "src/list"}, paths)
	assert.Equal(t, "", stmts[1].Quote)
	assert.Equal(t, "'", stmts[2].Quote)
}

func TestScanFile(t *testing.T) {
	assert.Len(t, ScanFile("a.tsx", []byte("import x from './x'\n")), 1)
	assert.Len(t, ScanFile("a.py", []byte("import x\n")), 1)
	assert.Nil(t, ScanFile("README.md", []byte("import x from './x'\n")))
}
