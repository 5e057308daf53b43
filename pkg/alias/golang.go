package alias

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/mamaar/reimport/pkg/types"
)

// Module is a module path rooted at a directory of the project.
type Module struct {
	Path   string `json:"path" yaml:"path"`
	Dir    string `json:"dir" yaml:"dir"`
	Source string `json:"source" yaml:"source"`
}

// GoResolver treats every module-owned import as aliased by its module path.
type GoResolver struct {
	Root    string
	Main    string
	modules []Module
}

// LoadGo reads go.mod (module path and local replace directives), go.work members,
// and the configured prefix rules.
func LoadGo(root string, rules []Rule) (*GoResolver, error) {
	r := &GoResolver{Root: root}
	var errs []error
	found := false

	gomod := filepath.Join(root, "go.mod")
	if data, err := os.ReadFile(gomod); err == nil {
		found = true
		if err := r.addModFile(gomod, data, root, true); err != nil {
			errs = append(errs, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, malformed(gomod, err))
	}

	gowork := filepath.Join(root, "go.work")
	if data, err := os.ReadFile(gowork); err == nil {
		found = true
		if err := r.addWorkFile(gowork, data); err != nil {
			errs = append(errs, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, malformed(gowork, err))
	}

	for _, rule := range rules {
		if err := module.CheckImportPath(rule.From); err != nil {
			errs = append(errs, malformed("aliases.go_rules", fmt.Errorf("rule %q: %w", rule.From, err)))
			continue
		}
		found = true
		r.modules = append(r.modules, Module{Path: rule.From, Dir: filepath.Join(root, filepath.FromSlash(rule.To)), Source: "config"})
	}

	sort.SliceStable(r.modules, func(i, j int) bool {
		return len(r.modules[i].Path) > len(r.modules[j].Path)
	})

	if !found && len(errs) == 0 {
		return r, unavailable("no go.mod or go.work in " + root)
	}
	return r, errors.Join(errs...)
}

func (r *GoResolver) addModFile(path string, data []byte, dir string, main bool) error {
	parse := modfile.ParseLax
	if main {
		// replace directives only apply in the main module
		parse = modfile.Parse
	}
	f, err := parse(path, data, nil)
	if err != nil {
		return malformed(path, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return malformed(path, errors.New("missing module directive"))
	}
	if main {
		r.Main = f.Module.Mod.Path
	}
	r.add(Module{Path: f.Module.Mod.Path, Dir: dir, Source: path})
	for _, rep := range f.Replace {
		if modfile.IsDirectoryPath(rep.New.Path) {
			r.add(Module{Path: rep.Old.Path, Dir: filepath.Join(dir, filepath.FromSlash(rep.New.Path)), Source: path})
		}
	}
	return nil
}

func (r *GoResolver) addWorkFile(path string, data []byte) error {
	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return malformed(path, err)
	}
	var errs []error
	for _, use := range wf.Use {
		dir := filepath.Join(r.Root, filepath.FromSlash(use.Path))
		modPath := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(modPath)
		if err != nil {
			errs = append(errs, malformed(modPath, err))
			continue
		}
		if err := r.addModFile(modPath, data, dir, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *GoResolver) add(m Module) {
	for _, existing := range r.modules {
		if existing.Path == m.Path {
			return
		}
	}
	r.modules = append(r.modules, m)
}

func (r *GoResolver) Language() types.Language { return types.LanguageGo }

func (r *GoResolver) lookup(importPath string) (Module, string, bool) {
	for _, m := range r.modules {
		if importPath == m.Path {
			return m, "", true
		}
		if strings.HasPrefix(importPath, m.Path+"/") {
			return m, importPath[len(m.Path)+1:], true
		}
	}
	return Module{}, "", false
}

func (r *GoResolver) IsAliased(importText string) bool {
	_, _, ok := r.lookup(importText)
	return ok
}

// ToAbsolutePath maps an import path to its package directory.
func (r *GoResolver) ToAbsolutePath(importText string) (string, bool) {
	m, rest, ok := r.lookup(importText)
	if !ok {
		return "", false
	}
	return filepath.Join(m.Dir, filepath.FromSlash(rest)), true
}

// ToAlias maps a package directory to its import path using the deepest owning module.
func (r *GoResolver) ToAlias(absPath string) (string, bool) {
	best, bestLen := "", -1
	for _, m := range r.modules {
		rel, ok := within(m.Dir, absPath)
		if !ok || len(m.Dir) <= bestLen {
			continue
		}
		bestLen = len(m.Dir)
		if rel == "." {
			best = m.Path
		} else {
			best = m.Path + "/" + rel
		}
	}
	return best, bestLen >= 0
}

// Modules lists the known module roots, longest path first.
func (r *GoResolver) Modules() []Module { return r.modules }

func (r *GoResolver) Entries() []Entry {
	entries := make([]Entry, 0, len(r.modules))
	for _, m := range r.modules {
		entries = append(entries, Entry{Prefix: m.Path, Target: m.Dir, Source: m.Source})
	}
	return entries
}
