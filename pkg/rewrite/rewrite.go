// Package rewrite computes the replacement path text of a matched import statement.
package rewrite

import (
	"path/filepath"
	"strings"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/match"
	"github.com/mamaar/reimport/pkg/types"
)

// PythonRootMarkers are directory names that anchor absolute Python module paths.
// Modules below src/ start after it; the others start with the marker itself.
var PythonRootMarkers = []string{"src", "lib", "app", "pkg"}

// Result is the new text of one statement.
type Result struct {
	Path string
	// Names maps Statement.Names indexes to their replacement.
	Names map[int]string
}

// Rewriter renders new import text for one rename session.
type Rewriter struct {
	Request    types.RenameRequest
	Aliases    *alias.Set
	Classifier *match.Classifier
}

// New shares the request and alias set of the classifier.
func New(c *match.Classifier) *Rewriter {
	return &Rewriter{Request: c.Request, Aliases: c.Aliases, Classifier: c}
}

// Rewrite computes the new text of stmt. oldFile and newFile are the importing
// file's locations before and after the rename. It reports false when nothing changes.
func (r *Rewriter) Rewrite(oldFile, newFile string, stmt types.ImportStatement, m match.Match) (Result, bool) {
	var res Result
	switch stmt.Language {
	case types.LanguageJS, types.LanguageCSS:
		res = Result{Path: r.rewritePath(oldFile, newFile, stmt, m)}
	case types.LanguagePython:
		res = r.rewritePython(newFile, stmt, m)
	case types.LanguageGo:
		res = Result{Path: r.rewriteGo(stmt, m)}
	default:
		return Result{}, false
	}
	return res, res.changed(stmt)
}

func (res Result) changed(stmt types.ImportStatement) bool {
	if res.Path != stmt.Path {
		return true
	}
	for i, name := range res.Names {
		if i < len(stmt.Names) && stmt.Names[i].Name != name {
			return true
		}
	}
	return false
}

// target maps the resolved statement path to where it points after the rename.
// A reference to the renamed file yields NewPath with its extension.
func (r *Rewriter) target(resolved string, lang types.Language) string {
	if resolved == "" {
		return ""
	}
	if !r.Request.IsDirectory {
		if r.Classifier.IsOldFile(resolved, lang) {
			return r.Request.NewPath
		}
		return resolved
	}
	return r.Request.MapPath(resolved)
}

// spell adapts the target to the way the statement spelled the original: extension
// present or not, directory index, Sass partial underscore.
func (r *Rewriter) spell(stmt types.ImportStatement, m match.Match, target string) string {
	if r.Request.IsDirectory || target != r.Request.NewPath {
		return target
	}
	if stmt.Language == types.LanguageJS && m.Resolved == filepath.Dir(r.Request.OldPath) {
		if r.Request.NewBase() == "index" {
			return filepath.Dir(r.Request.NewPath)
		}
		return types.StripExt(r.Request.NewPath)
	}

	dir, name := filepath.Split(r.Request.NewPath)
	name = respell(stmt.Terminal(), r.Request.OldName(), name, stmt.Language)
	return filepath.Join(dir, name)
}

// respell renders newName the way written spelled oldName: extension kept, swapped
// or dropped, and the Sass partial underscore kept or dropped.
func respell(written, oldName, newName string, lang types.Language) string {
	out := newName
	ext := filepath.Ext(written)
	switch {
	case ext == "" || !types.HasExtension(lang.Extensions(), ext):
		out = types.StripExt(newName)
	case ext != filepath.Ext(oldName):
		out = types.StripExt(newName) + ext
	}
	if lang == types.LanguageCSS && strings.HasPrefix(oldName, "_") && !strings.HasPrefix(written, "_") {
		out = strings.TrimPrefix(out, "_")
	}
	return out
}

func (r *Rewriter) rewritePath(oldFile, newFile string, stmt types.ImportStatement, m match.Match) string {
	res := r.Aliases.For(stmt.Language)

	switch m.Rule {
	case match.ViaAlias:
		spelled := r.spell(stmt, m, r.target(m.Resolved, stmt.Language))
		if res != nil {
			if a, ok := res.ToAlias(spelled); ok {
				return a
			}
		}
		return replaceTerminal(stmt.Path, "/", filepath.Base(spelled))

	case match.ViaTerminal:
		name := respell(stmt.Terminal(), r.Request.OldName(), r.Request.NewName(), stmt.Language)
		return replaceTerminal(stmt.Path, "/", name)

	case match.ViaPath, match.ViaMovedFile:
		spelled := r.spell(stmt, m, r.target(m.Resolved, stmt.Language))
		switch {
		case strings.HasPrefix(stmt.Path, "/"):
			if rel, err := filepath.Rel(m.Base, spelled); err == nil {
				return "/" + filepath.ToSlash(rel)
			}
		case !stmt.IsRelative() && m.Base != filepath.Dir(oldFile):
			// bare stylesheet import found on a load path
			if rel, err := filepath.Rel(m.Base, spelled); err == nil && !strings.HasPrefix(rel, "..") {
				return filepath.ToSlash(rel)
			}
		case !stmt.IsRelative():
			if rel, err := filepath.Rel(filepath.Dir(newFile), spelled); err == nil && !strings.HasPrefix(rel, "..") {
				return filepath.ToSlash(rel)
			}
		}
		return relativePath(filepath.Dir(newFile), spelled)
	}
	return stmt.Path
}

// relativePath renders target relative to fromDir in POSIX form, with a ./ lead.
func relativePath(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "./") || strings.HasPrefix(rel, "../") {
		return rel
	}
	return "./" + rel
}

// replaceTerminal swaps the segment after the last sep.
func replaceTerminal(p, sep, name string) string {
	i := strings.LastIndex(p, sep)
	if i < 0 {
		return name
	}
	return p[:i+len(sep)] + name
}

func (r *Rewriter) rewritePython(newFile string, stmt types.ImportStatement, m match.Match) Result {
	res := Result{Path: stmt.Path}

	switch m.Rule {
	case match.ViaPath:
		res.Path = relativeModule(filepath.Dir(newFile), r.moduleTarget(m.Resolved))

	case match.ViaMovedFile:
		res.Path = relativeModule(filepath.Dir(newFile), m.Resolved)

	case match.ViaAlias, match.ViaModule:
		res.Path = r.absoluteModule(stmt, m.Resolved, r.moduleTarget(m.Resolved))

	case match.ViaName:
		res.Names = map[int]string{}
		if m.Resolved == "" {
			res.Names[m.Name] = r.Request.NewBase()
			break
		}
		target := r.moduleTarget(m.Resolved)
		res.Names[m.Name] = filepath.Base(target)
		if stmt.IsRelative() {
			res.Path = relativeModule(filepath.Dir(newFile), filepath.Dir(target))
		} else {
			res.Path = r.absoluteModule(stmt, filepath.Dir(m.Resolved), filepath.Dir(target))
		}

	case match.ViaTerminal:
		res.Path = replaceTerminal(stmt.Path, ".", r.Request.NewBase())

	case match.ViaSegment:
		res.Path = replaceRun(stmt.Path, ".", r.Classifier.OldSegments(), r.Classifier.NewSegments())
	}
	return res
}

// moduleTarget is the post-rename module path (no extension) of a resolved module.
func (r *Rewriter) moduleTarget(resolved string) string {
	t := r.target(resolved, types.LanguagePython)
	if types.HasExtension(types.PythonExtensions, filepath.Ext(t)) {
		t = types.StripExt(t)
	}
	return t
}

// relativeModule renders target as a dotted relative import from fromDir. The dot
// count comes from the new depth only.
func relativeModule(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return "."
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	ups := 0
	for ups < len(parts) && parts[ups] == ".." {
		ups++
	}
	rest := parts[ups:]
	if len(rest) == 1 && rest[0] == "." {
		rest = nil
	}
	return strings.Repeat(".", ups+1) + strings.Join(rest, ".")
}

// absoluteModule rebuilds a dotted module path for target. resolved is where the
// original statement pointed; its package root is reused when target stays below it.
func (r *Rewriter) absoluteModule(stmt types.ImportStatement, resolved, target string) string {
	if res := r.Aliases.Python; res != nil && res.IsAliased(stmt.Path) {
		if a, ok := res.ToAlias(target); ok {
			return a
		}
	}

	segs := stmt.Segments()
	root := resolved
	for range segs {
		root = filepath.Dir(root)
	}
	if rel, err := filepath.Rel(root, target); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
	}

	if dotted, ok := r.fromMarker(target); ok {
		return dotted
	}
	if len(segs) == 0 {
		return stmt.Path
	}
	return strings.Join(append(segs[:len(segs)-1:len(segs)-1], filepath.Base(target)), ".")
}

// fromMarker anchors target at the first project-root marker directory.
func (r *Rewriter) fromMarker(target string) (string, bool) {
	rel := target
	if r.Aliases.Root != "" {
		if rr, err := filepath.Rel(r.Aliases.Root, target); err == nil && !strings.HasPrefix(rr, "..") {
			rel = rr
		}
	}
	comps := strings.Split(filepath.ToSlash(rel), "/")
	for i, c := range comps {
		for _, marker := range PythonRootMarkers {
			if c != marker {
				continue
			}
			rest := comps[i:]
			if marker == "src" {
				rest = comps[i+1:]
			}
			if len(rest) > 0 {
				return strings.Join(rest, "."), true
			}
		}
	}
	return "", false
}

func (r *Rewriter) rewriteGo(stmt types.ImportStatement, m match.Match) string {
	if m.Rule == match.ViaAlias && r.Aliases.Go != nil {
		if p, ok := r.Aliases.Go.ToAlias(r.Request.MapPath(m.Resolved)); ok {
			return p
		}
	}
	if m.Rule == match.ViaAlias || m.Rule == match.ViaSegment {
		return replaceRun(stmt.Path, "/", r.Classifier.OldSegments(), r.Classifier.NewSegments())
	}
	return stmt.Path
}

// replaceRun substitutes the first whole-component occurrence of old with repl.
func replaceRun(p, sep string, old, repl []string) string {
	segs := strings.Split(p, sep)
	i := match.IndexRun(segs, old)
	if i < 0 {
		return p
	}
	out := make([]string, 0, len(segs)-len(old)+len(repl))
	out = append(out, segs[:i]...)
	out = append(out, repl...)
	out = append(out, segs[i+len(old):]...)
	return strings.Join(out, sep)
}
