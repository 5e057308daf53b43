package refactor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamaar/reimport/pkg/types"
)

func needleStrings(req types.RenameRequest) []string {
	var out []string
	for _, n := range Needles(req) {
		out = append(out, string(n))
	}
	return out
}

func TestNeedles(t *testing.T) {
	root := string(filepath.Separator) + "w"
	tests := []struct {
		name string
		req  types.RenameRequest
		want []string
	}{
		{"file", request(root, "src/utils.ts", "src/helpers.ts", false), []string{"utils"}},
		{"partial", request(root, "styles/_theme.scss", "styles/_colors.scss", false), []string{"_theme", "theme"}},
		{"index", request(root, "src/components/index.ts", "src/components/main.ts", false), []string{"index", "components"}},
		{"directory", request(root, "src/lib.v2", "src/lib", true), []string{"lib.v2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needleStrings(tt.req))
		})
	}
}

func TestPrefilter(t *testing.T) {
	needles := Needles(request("/w", "utils.ts", "helpers.ts", false))
	assert.True(t, Prefilter([]byte("import { a } from './utils'"), needles))
	assert.False(t, Prefilter([]byte("import { a } from './helpers'"), needles))
}

func TestPackageDeclReplacement(t *testing.T) {
	tests := []struct {
		name    string
		content string
		oldName string
		newName string
		want    types.Replacement
		ok      bool
	}{
		{
			name:    "after doc comment",
			content: "// Package util does things.\npackage util\n",
			oldName: "util", newName: "helpers",
			want: types.Replacement{Line: 1, StartCol: 8, EndCol: 12, OldText: "util", NewText: "helpers"},
			ok:   true,
		},
		{
			name:    "external test package",
			content: "package util_test\n",
			oldName: "util", newName: "helpers",
			want: types.Replacement{Line: 0, StartCol: 8, EndCol: 17, OldText: "util_test", NewText: "helpers_test"},
			ok:   true,
		},
		{
			name:    "different package name",
			content: "package main\n",
			oldName: "util", newName: "helpers",
		},
		{
			name:    "new name is not an identifier",
			content: "package util\n",
			oldName: "util", newName: "my-helpers",
		},
		{
			name:    "clause beyond scanned lines",
			content: "//\n//\n//\npackage util\n",
			oldName: "util", newName: "helpers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PackageDeclReplacement([]byte(tt.content), tt.oldName, tt.newName, 3)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
