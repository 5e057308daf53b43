package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameRequest_Validate(t *testing.T) {
	ok := RenameRequest{OldPath: "/p/a.ts", NewPath: "/p/b.ts"}
	require.NoError(t, ok.Validate())

	for name, req := range map[string]RenameRequest{
		"empty":    {},
		"relative": {OldPath: "a.ts", NewPath: "b.ts"},
		"same":     {OldPath: "/p/a.ts", NewPath: "/p/a.ts"},
	} {
		t.Run(name, func(t *testing.T) {
			err := req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestRenameRequest_Names(t *testing.T) {
	file := RenameRequest{OldPath: "/p/src/utils.ts", NewPath: "/p/src/helpers.tsx"}
	assert.Equal(t, "utils", file.OldBase())
	assert.Equal(t, "helpers", file.NewBase())
	assert.Equal(t, LanguageJS, file.Language())
	assert.Equal(t, JSExtensions, file.CandidateExtensions())

	dir := RenameRequest{OldPath: "/p/internal/utils", NewPath: "/p/internal/common", IsDirectory: true}
	assert.Equal(t, "utils", dir.OldBase())
	assert.Equal(t, "common", dir.NewName())
	assert.Equal(t, LanguageUnknown, dir.Language())
	assert.ElementsMatch(t, AllExtensions(), dir.CandidateExtensions())
}

func TestRenameRequest_MapPath(t *testing.T) {
	dir := RenameRequest{OldPath: "/p/a", NewPath: "/p/b/c", IsDirectory: true}
	assert.Equal(t, "/p/b/c", dir.MapPath("/p/a"))
	assert.Equal(t, filepath.Join("/p/b/c", "x", "y.py"), dir.MapPath("/p/a/x/y.py"))
	assert.Equal(t, "/p/ab/y.py", dir.MapPath("/p/ab/y.py"))

	file := RenameRequest{OldPath: "/p/a.go", NewPath: "/p/b.go"}
	assert.Equal(t, "/p/b.go", file.MapPath("/p/a.go"))
	assert.Equal(t, "/p/c.go", file.MapPath("/p/c.go"))
}

func TestEditBatch_Message(t *testing.T) {
	var empty *EditBatch
	assert.Equal(t, "No changes needed", empty.Message())
	truncated := &EditBatch{Stats: BatchStats{Truncated: true}}
	assert.Equal(t, "No changes needed (file limit reached, results may be incomplete)", truncated.Message())

	b := &EditBatch{Edits: []FileEdit{
		{File: "/p/a.ts", Replacements: []Replacement{{Line: 0}, {Line: 3}}},
		{File: "/p/b.ts", Replacements: []Replacement{{Line: 1}}},
	}}
	assert.Equal(t, 3, b.ChangeCount())
	assert.Equal(t, []string{"/p/a.ts", "/p/b.ts"}, b.AffectedFiles())
	assert.Equal(t, "3 changes in 2 files, ready to apply", b.Message())

	b.Stats.Truncated = true
	assert.Contains(t, b.Message(), "results may be incomplete")
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("/p/a", "/p/a"))
	assert.True(t, IsWithin("/p/a", "/p/a/b/c.ts"))
	assert.False(t, IsWithin("/p/a", "/p/ab"))
	assert.False(t, IsWithin("/p/a", "/p"))
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"app.ts":        LanguageJS,
		"App.tsx":       LanguageJS,
		"index.mjs":     LanguageJS,
		"Comp.vue":      LanguageJS,
		"helpers.py":    LanguagePython,
		"stubs.pyi":     LanguagePython,
		"main.go":       LanguageGo,
		"site.css":      LanguageCSS,
		"_vars.scss":    LanguageCSS,
		"theme.less":    LanguageCSS,
		"README.md":     LanguageUnknown,
		"Makefile":      LanguageUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectLanguage(name), name)
	}
}

func TestImportStatement_Segments(t *testing.T) {
	py := ImportStatement{Language: LanguagePython, Path: "..pkg.helpers"}
	assert.Equal(t, 2, py.Dots())
	assert.True(t, py.IsRelative())
	assert.Equal(t, []string{"pkg", "helpers"}, py.Segments())
	assert.Equal(t, "helpers", py.Terminal())

	dots := ImportStatement{Language: LanguagePython, Path: "."}
	assert.Empty(t, dots.Segments())
	assert.Equal(t, "", dots.Terminal())

	js := ImportStatement{Language: LanguageJS, Path: "../lib/utils"}
	assert.True(t, js.IsRelative())
	assert.Equal(t, "utils", js.Terminal())

	bare := ImportStatement{Language: LanguageJS, Path: "react"}
	assert.False(t, bare.IsRelative())
}
