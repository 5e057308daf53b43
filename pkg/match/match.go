// Package match decides whether an import statement references the entity being renamed.
package match

import (
	"path/filepath"
	"strings"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/types"
)

// Rule names the reason a statement matched.
type Rule int

const (
	NoMatch Rule = iota
	// ViaAlias: the path is alias-prefixed and resolves into the renamed entity.
	ViaAlias
	// ViaTerminal: alias-prefixed or module-style but unresolvable; the last segment
	// equals the old base name.
	ViaTerminal
	// ViaPath: a relative, root-relative or bare stylesheet path resolving into the entity.
	ViaPath
	// ViaModule: an absolute Python module resolved against the package roots.
	ViaModule
	// ViaName: a name imported by a Python from-import is the renamed module.
	ViaName
	// ViaSegment: directory rename, the old directory appears as whole path components.
	ViaSegment
	// ViaMovedFile: the importing file itself moves, so its relative imports are recomputed.
	ViaMovedFile
)

func (r Rule) String() string {
	switch r {
	case ViaAlias:
		return "alias"
	case ViaTerminal:
		return "terminal"
	case ViaPath:
		return "path"
	case ViaModule:
		return "module"
	case ViaName:
		return "name"
	case ViaSegment:
		return "segment"
	case ViaMovedFile:
		return "moved-file"
	default:
		return "none"
	}
}

// Match describes how a statement references the renamed entity.
type Match struct {
	Rule Rule
	// Resolved is the absolute form of the statement path (or of the matched name) when
	// it could be resolved. It keeps whatever extension the statement spelled out.
	Resolved string
	// Base is the directory a relative or bare path was resolved from.
	Base string
	// Name indexes Statement.Names for ViaName, -1 otherwise.
	Name int
}

// Classifier is built per rename session and is safe for concurrent use.
type Classifier struct {
	Request types.RenameRequest
	Aliases *alias.Set
	Root    string
}

// New returns a classifier for req. aliases may be nil, in which case only relative
// and module-root resolution is available.
func New(req types.RenameRequest, aliases *alias.Set) *Classifier {
	if aliases == nil {
		aliases = &alias.Set{}
	}
	return &Classifier{Request: req, Aliases: aliases, Root: aliases.Root}
}

// Matches reports whether stmt, found in the file at file, references the renamed entity.
func (c *Classifier) Matches(file string, stmt types.ImportStatement) bool {
	_, ok := c.Classify(file, stmt)
	return ok
}

// Classify applies the matching rules for stmt. file is the importing file's location
// before the rename.
func (c *Classifier) Classify(file string, stmt types.ImportStatement) (Match, bool) {
	switch stmt.Language {
	case types.LanguageJS, types.LanguageCSS:
		return c.classifyPath(file, stmt)
	case types.LanguagePython:
		return c.classifyPython(file, stmt)
	case types.LanguageGo:
		return c.classifyGo(stmt)
	default:
		return Match{}, false
	}
}

// Refers reports whether abs names the renamed file, or lies inside the renamed directory.
func (c *Classifier) Refers(abs string, lang types.Language) bool {
	if c.Request.IsDirectory {
		return types.IsWithin(c.Request.OldPath, abs)
	}
	return c.IsOldFile(abs, lang)
}

// IsOldFile reports whether abs spells the renamed file: with or without extension,
// as a directory index for JS, or as a Sass partial for stylesheets.
func (c *Classifier) IsOldFile(abs string, lang types.Language) bool {
	if c.Request.IsDirectory {
		return false
	}
	if sameFile(abs, c.Request.OldPath, lang) {
		return true
	}
	switch lang {
	case types.LanguageJS:
		return c.Request.OldBase() == "index" && abs == filepath.Dir(c.Request.OldPath)
	case types.LanguageCSS:
		return sameFile(filepath.Join(filepath.Dir(abs), "_"+filepath.Base(abs)), c.Request.OldPath, lang)
	}
	return false
}

func sameFile(abs, file string, lang types.Language) bool {
	if abs == file {
		return true
	}
	stripped := types.StripExt(file)
	if abs == stripped {
		return true
	}
	ext := filepath.Ext(abs)
	return ext != "" && types.HasExtension(lang.Extensions(), ext) && types.StripExt(abs) == stripped
}

// moves reports whether the importing file itself is relocated by the request.
func (c *Classifier) moves(file string) bool {
	if c.Request.IsDirectory {
		return types.IsWithin(c.Request.OldPath, file)
	}
	return file == c.Request.OldPath
}

func (c *Classifier) classifyPath(file string, stmt types.ImportStatement) (Match, bool) {
	p := stmt.Path
	if strings.Contains(p, ":") {
		// URLs, data URIs and Sass built-ins (sass:math)
		return Match{}, false
	}
	dir := filepath.Dir(file)
	res := c.Aliases.For(stmt.Language)

	switch {
	case stmt.IsRelative():
		abs := filepath.Join(dir, filepath.FromSlash(p))
		if c.Refers(abs, stmt.Language) {
			return Match{Rule: ViaPath, Resolved: abs, Base: dir, Name: -1}, true
		}
		if c.moves(file) {
			return Match{Rule: ViaMovedFile, Resolved: abs, Base: dir, Name: -1}, true
		}
		return Match{}, false

	case res != nil && res.IsAliased(p):
		if abs, ok := res.ToAbsolutePath(p); ok {
			if c.Refers(abs, stmt.Language) {
				return Match{Rule: ViaAlias, Resolved: abs, Name: -1}, true
			}
			return Match{}, false
		}
		if !c.Request.IsDirectory && terminalBase(stmt) == c.Request.OldBase() {
			return Match{Rule: ViaTerminal, Name: -1}, true
		}
		return Match{}, false

	case strings.HasPrefix(p, "/") && c.Root != "":
		abs := filepath.Join(c.Root, filepath.FromSlash(p))
		if c.Refers(abs, stmt.Language) {
			return Match{Rule: ViaPath, Resolved: abs, Base: c.Root, Name: -1}, true
		}
		return Match{}, false

	case stmt.Language == types.LanguageCSS:
		bases := []string{dir}
		if c.Aliases.CSS != nil {
			bases = append(bases, c.Aliases.CSS.LoadPaths()...)
		}
		for _, base := range bases {
			if abs := filepath.Join(base, filepath.FromSlash(p)); c.Refers(abs, stmt.Language) {
				return Match{Rule: ViaPath, Resolved: abs, Base: base, Name: -1}, true
			}
		}
	}

	// bare JS specifiers that no alias claims are external packages
	return Match{}, false
}

// terminalBase is the last path segment without extension or Sass partial prefix.
func terminalBase(stmt types.ImportStatement) string {
	t := stmt.Terminal()
	if stmt.Language == types.LanguagePython || stmt.Language == types.LanguageGo {
		return t
	}
	if types.HasExtension(stmt.Language.Extensions(), filepath.Ext(t)) {
		t = types.StripExt(t)
	}
	if stmt.Language == types.LanguageCSS {
		t = strings.TrimPrefix(t, "_")
	}
	return t
}

func (c *Classifier) classifyPython(file string, stmt types.ImportStatement) (Match, bool) {
	if stmt.IsRelative() {
		// relative imports are left to the per-file pass on directory renames
		if c.Request.IsDirectory {
			return Match{}, false
		}
		base := filepath.Dir(file)
		for i := 1; i < stmt.Dots(); i++ {
			base = filepath.Dir(base)
		}
		abs := filepath.Join(append([]string{base}, stmt.Segments()...)...)
		if m, ok := c.pythonTarget(abs, stmt, ViaPath); ok {
			m.Base = base
			return m, true
		}
		if c.moves(file) {
			return Match{Rule: ViaMovedFile, Resolved: abs, Base: base, Name: -1}, true
		}
		return Match{}, false
	}

	if res := c.Aliases.Python; res != nil {
		if abs, ok := res.ToAbsolutePath(stmt.Path); ok {
			rule := ViaModule
			if res.IsAliased(stmt.Path) {
				rule = ViaAlias
			}
			return c.pythonTarget(abs, stmt, rule)
		}
	}

	segs := stmt.Segments()
	if c.Request.IsDirectory {
		// unresolvable modules only match from their first segment, so
		// os.path never matches a renamed top-level path/ directory
		if c.segmentIndex(segs) == 0 {
			return Match{Rule: ViaSegment, Name: -1}, true
		}
		return Match{}, false
	}
	if stmt.Terminal() == c.Request.OldBase() {
		return Match{Rule: ViaTerminal, Name: -1}, true
	}
	for i, n := range stmt.Names {
		if n.Name == c.Request.OldBase() {
			return Match{Rule: ViaName, Name: i}, true
		}
	}
	return Match{}, false
}

// pythonTarget checks the module at abs, then each from-imported name below it.
func (c *Classifier) pythonTarget(abs string, stmt types.ImportStatement, rule Rule) (Match, bool) {
	if c.Refers(abs, types.LanguagePython) {
		return Match{Rule: rule, Resolved: abs, Name: -1}, true
	}
	for i, n := range stmt.Names {
		if p := filepath.Join(abs, n.Name); c.Refers(p, types.LanguagePython) {
			return Match{Rule: ViaName, Resolved: p, Name: i}, true
		}
	}
	return Match{}, false
}

func (c *Classifier) classifyGo(stmt types.ImportStatement) (Match, bool) {
	if !c.Request.IsDirectory {
		// a file rename never changes a package import path
		return Match{}, false
	}
	if res := c.Aliases.Go; res != nil {
		if abs, ok := res.ToAbsolutePath(stmt.Path); ok {
			if types.IsWithin(c.Request.OldPath, abs) {
				return Match{Rule: ViaAlias, Resolved: abs, Name: -1}, true
			}
			return Match{}, false
		}
		if len(res.Modules()) > 0 {
			// owned by a module outside the project
			return Match{}, false
		}
	}
	if c.segmentIndex(stmt.Segments()) >= 0 {
		return Match{Rule: ViaSegment, Name: -1}, true
	}
	return Match{}, false
}

// OldSegments is the renamed directory relative to the project root, split into components.
func (c *Classifier) OldSegments() []string {
	return relSegments(c.Root, c.Request.OldPath)
}

// NewSegments is the destination directory relative to the project root.
func (c *Classifier) NewSegments() []string {
	return relSegments(c.Root, c.Request.NewPath)
}

func relSegments(root, p string) []string {
	if root == "" {
		return []string{filepath.Base(p)}
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return []string{filepath.Base(p)}
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

// segmentIndex finds the old directory as a run of whole components in segs.
func (c *Classifier) segmentIndex(segs []string) int {
	return IndexRun(segs, c.OldSegments())
}

// IndexRun returns the index of the first occurrence of run in segs, or -1.
func IndexRun(segs, run []string) int {
	if len(run) == 0 || len(run) > len(segs) {
		return -1
	}
outer:
	for i := 0; i+len(run) <= len(segs); i++ {
		for j := range run {
			if segs[i+j] != run[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
