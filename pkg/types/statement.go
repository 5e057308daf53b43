package types

import "strings"

// ImportKind tags the grammar form an ImportStatement was found in.
type ImportKind int

const (
	PlainImport ImportKind = iota
	RequireImport
	DynamicImport
	ReExport
	FromImport
	PackageImport
	CSSImport
)

// String returns the string representation of ImportKind
func (k ImportKind) String() string {
	switch k {
	case PlainImport:
		return "plain-import"
	case RequireImport:
		return "require"
	case DynamicImport:
		return "dynamic-import"
	case ReExport:
		return "re-export"
	case FromImport:
		return "from-import"
	case PackageImport:
		return "package-import"
	case CSSImport:
		return "css-import"
	default:
		return "unknown"
	}
}

// MarshalText lets kinds render by name in JSON and YAML output.
func (k ImportKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ImportStatement is one located reference in a file. Columns are byte offsets into
// the line and exclude surrounding quote characters.
type ImportStatement struct {
	Language Language
	Line     int
	StartCol int
	EndCol   int
	Path     string
	Kind     ImportKind
	Quote    string

	// Names holds the imported names of a Python from-import.
	Names []NameSpan
	// Alias is the local name preceding a Go import path (u, _, .).
	Alias string
}

// NameSpan is an imported identifier and its span on the statement line.
type NameSpan struct {
	Name     string
	StartCol int
	EndCol   int
}

// Dots returns the leading-dot count of a Python relative import (0 when absolute).
func (s ImportStatement) Dots() int {
	return len(s.Path) - len(strings.TrimLeft(s.Path, "."))
}

// IsRelative reports whether the statement path is relative to the importing file.
func (s ImportStatement) IsRelative() bool {
	switch s.Language {
	case LanguagePython:
		return s.Dots() > 0
	case LanguageGo:
		return strings.HasPrefix(s.Path, "./") || strings.HasPrefix(s.Path, "../")
	default:
		return s.Path == "." || s.Path == ".." ||
			strings.HasPrefix(s.Path, "./") || strings.HasPrefix(s.Path, "../")
	}
}

// Segments splits the path on the language's separator. Python leading dots are dropped.
func (s ImportStatement) Segments() []string {
	if s.Language == LanguagePython {
		trimmed := strings.TrimLeft(s.Path, ".")
		if trimmed == "" {
			return nil
		}
		return strings.Split(trimmed, ".")
	}
	var segs []string
	for _, p := range strings.Split(s.Path, "/") {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// Terminal returns the last path segment, the module or file name being imported.
func (s ImportStatement) Terminal() string {
	segs := s.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
