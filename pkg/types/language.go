package types

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// Language identifies an import grammar family.
type Language int

const (
	LanguageUnknown Language = iota
	LanguageJS               // JavaScript, TypeScript and their JSX/SFC variants
	LanguagePython
	LanguageGo
	LanguageCSS // CSS, SCSS, Sass, Less
)

// String returns the string representation of Language
func (l Language) String() string {
	switch l {
	case LanguageJS:
		return "javascript"
	case LanguagePython:
		return "python"
	case LanguageGo:
		return "go"
	case LanguageCSS:
		return "css"
	default:
		return "unknown"
	}
}

// MarshalText renders languages by name in JSON and YAML output.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLanguage is the inverse of Language.String.
func ParseLanguage(s string) Language {
	switch strings.ToLower(s) {
	case "javascript", "js", "typescript", "ts":
		return LanguageJS
	case "python", "py":
		return LanguagePython
	case "go", "golang":
		return LanguageGo
	case "css", "scss", "sass", "less":
		return LanguageCSS
	default:
		return LanguageUnknown
	}
}

// Extension families. Enumeration only considers files whose extension is listed here.
var (
	JSExtensions     = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".mts", ".cts", ".vue", ".svelte"}
	PythonExtensions = []string{".py", ".pyi"}
	GoExtensions     = []string{".go"}
	CSSExtensions    = []string{".css", ".scss", ".sass", ".less"}
)

// Languages lists every supported grammar.
var Languages = []Language{LanguageJS, LanguagePython, LanguageGo, LanguageCSS}

// Extensions returns the extension family of the language.
func (l Language) Extensions() []string {
	switch l {
	case LanguageJS:
		return JSExtensions
	case LanguagePython:
		return PythonExtensions
	case LanguageGo:
		return GoExtensions
	case LanguageCSS:
		return CSSExtensions
	default:
		return nil
	}
}

// AllExtensions returns the union of every extension family.
func AllExtensions() []string {
	var exts []string
	for _, l := range Languages {
		exts = append(exts, l.Extensions()...)
	}
	return exts
}

// DetectLanguage maps a file name to its grammar family. Linguist names reported by
// enry are preferred; the static extension tables catch what enry leaves ambiguous.
func DetectLanguage(path string) Language {
	name, _ := enry.GetLanguageByExtension(filepath.Base(path))
	switch name {
	case "JavaScript", "TypeScript", "TSX", "JSX", "Vue", "Svelte":
		return LanguageJS
	case "Python":
		return LanguagePython
	case "Go":
		return LanguageGo
	case "CSS", "SCSS", "Sass", "Less":
		return LanguageCSS
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range Languages {
		if HasExtension(l.Extensions(), ext) {
			return l
		}
	}
	return LanguageUnknown
}

// HasExtension reports whether ext (with leading dot) is in exts.
func HasExtension(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// IsVendored reports whether a workspace-relative path lives in a dependency or
// generated directory (node_modules, vendor, ...).
func IsVendored(relPath string) bool {
	return enry.IsVendor(filepath.ToSlash(relPath))
}
