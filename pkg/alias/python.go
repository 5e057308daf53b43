package alias

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mamaar/reimport/pkg/types"
)

// PythonConventionalDirs act as implicit single-segment aliases when nothing is declared.
var PythonConventionalDirs = []string{"src", "app", "lib", "utils"}

// PythonResolver maps dotted module names to directories.
type PythonResolver struct {
	Root    string
	entries []Entry
	roots   []string
}

type pyproject struct {
	Tool struct {
		Reimport struct {
			Aliases map[string]string `toml:"aliases"`
		} `toml:"reimport"`
	} `toml:"tool"`
}

// LoadPython reads [tool.reimport.aliases] from pyproject.toml and merges the
// configured aliases over it. Conventional directories fill in when both are empty.
func LoadPython(root string, configured map[string]string) (*PythonResolver, error) {
	r := &PythonResolver{Root: root, roots: []string{root}}
	if isDir(filepath.Join(root, "src")) {
		r.roots = append(r.roots, filepath.Join(root, "src"))
	}

	var loadErr error
	path := filepath.Join(root, "pyproject.toml")
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if len(configured) == 0 {
			loadErr = unavailable("no pyproject.toml in " + root)
		}
	case err != nil:
		loadErr = malformed(path, err)
	default:
		var doc pyproject
		if err := toml.Unmarshal(data, &doc); err != nil {
			loadErr = malformed(path, err)
		}
		for name, dir := range doc.Tool.Reimport.Aliases {
			r.entries = append(r.entries, Entry{Prefix: name, Target: filepath.Join(root, filepath.FromSlash(dir)), Source: path})
		}
	}

	for name, dir := range configured {
		r.entries = append(r.entries, Entry{Prefix: name, Target: filepath.Join(root, filepath.FromSlash(dir)), Source: "config"})
	}

	if len(r.entries) == 0 {
		for _, dir := range PythonConventionalDirs {
			if target := filepath.Join(root, dir); isDir(target) {
				r.entries = append(r.entries, Entry{Prefix: dir, Target: target, Source: "convention"})
			}
		}
	}
	sortEntries(r.entries)
	return r, loadErr
}

func (r *PythonResolver) Language() types.Language { return types.LanguagePython }

func (r *PythonResolver) lookup(text string) (Entry, string, bool) {
	for _, e := range r.entries {
		if text == e.Prefix {
			return e, "", true
		}
		if strings.HasPrefix(text, e.Prefix+".") {
			return e, text[len(e.Prefix)+1:], true
		}
	}
	return Entry{}, "", false
}

func (r *PythonResolver) IsAliased(importText string) bool {
	if strings.HasPrefix(importText, ".") {
		return false
	}
	_, _, ok := r.lookup(importText)
	return ok
}

// ToAbsolutePath resolves an absolute dotted module through the aliases, then against
// the package roots (the project root and a src/ layout). Relative imports are not
// handled here.
func (r *PythonResolver) ToAbsolutePath(importText string) (string, bool) {
	if importText == "" || strings.HasPrefix(importText, ".") {
		return "", false
	}
	if e, rest, ok := r.lookup(importText); ok {
		if rest == "" {
			return e.Target, true
		}
		return filepath.Join(e.Target, filepath.FromSlash(strings.ReplaceAll(rest, ".", "/"))), true
	}
	segs := strings.Split(importText, ".")
	for _, root := range r.roots {
		head := filepath.Join(root, segs[0])
		if isDir(head) || exists(head, types.PythonExtensions) {
			return filepath.Join(root, filepath.Join(segs...)), true
		}
	}
	return "", false
}

// ToAlias renders absPath through the most specific alias that contains it.
func (r *PythonResolver) ToAlias(absPath string) (string, bool) {
	for _, e := range r.entries {
		rel, ok := within(e.Target, absPath)
		if !ok {
			continue
		}
		if rel == "." {
			return e.Prefix, true
		}
		return e.Prefix + "." + strings.ReplaceAll(rel, "/", "."), true
	}
	return "", false
}

// Roots returns the directories absolute module names are resolved from.
func (r *PythonResolver) Roots() []string { return r.roots }

func (r *PythonResolver) Entries() []Entry { return r.entries }
