// Package alias translates between on-disk paths and the short names a project
// configures for them (tsconfig paths, Python package roots, Go module paths, bundler
// aliases for stylesheets).
package alias

import (
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"

	"github.com/mamaar/reimport/pkg/types"
)

// Entry is one alias prefix and the directory it stands for.
type Entry struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Target string `json:"target" yaml:"target"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Resolver is the uniform contract of the per-language resolvers. Paths handed to
// ToAlias and returned by ToAbsolutePath are absolute and carry no file extension.
type Resolver interface {
	Language() types.Language
	IsAliased(importText string) bool
	ToAlias(absPath string) (string, bool)
	ToAbsolutePath(importText string) (string, bool)
	Entries() []Entry
}

// Rule maps an import prefix to a directory relative to the project root.
type Rule struct {
	From string `mapstructure:"from" json:"from" yaml:"from"`
	To   string `mapstructure:"to" json:"to" yaml:"to"`
}

// Options carries the aliases that come from user configuration instead of project files.
type Options struct {
	PythonAliases map[string]string
	GoRules       []Rule
}

// Set holds one resolver per supported language for a single rename session.
// Resolvers are never nil; a missing or malformed config yields an empty resolver.
type Set struct {
	Root   string
	JS     *JSResolver
	Python *PythonResolver
	Go     *GoResolver
	CSS    *CSSResolver
}

// Load builds every resolver for root. Config problems are logged and degrade the
// affected language to relative-only resolution.
func Load(root string, opts Options, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Set{Root: root}

	var err error
	s.JS, err = LoadJS(root)
	report(logger, types.LanguageJS, err)
	s.Python, err = LoadPython(root, opts.PythonAliases)
	report(logger, types.LanguagePython, err)
	s.Go, err = LoadGo(root, opts.GoRules)
	report(logger, types.LanguageGo, err)
	s.CSS, err = LoadCSS(root)
	report(logger, types.LanguageCSS, err)

	return s
}

// IsConfigFile reports whether path names a file one of the resolvers reads.
func IsConfigFile(path string) bool {
	name := filepath.Base(path)
	switch name {
	case "pyproject.toml", "go.mod", "go.work":
		return true
	}
	return slices.Contains(JSConfigFiles, name) || slices.Contains(BundlerConfigFiles, name)
}

func report(logger *slog.Logger, lang types.Language, err error) {
	switch {
	case err == nil:
	case errors.Is(err, types.ErrConfigUnavailable):
		logger.Debug("no alias configuration", "language", lang.String(), "reason", err.Error())
	default:
		logger.Warn("ignoring alias configuration", "language", lang.String(), "error", err)
	}
}

// For returns the resolver of lang, or nil for unsupported or unloaded languages.
func (s *Set) For(lang types.Language) Resolver {
	switch {
	case lang == types.LanguageJS && s.JS != nil:
		return s.JS
	case lang == types.LanguagePython && s.Python != nil:
		return s.Python
	case lang == types.LanguageGo && s.Go != nil:
		return s.Go
	case lang == types.LanguageCSS && s.CSS != nil:
		return s.CSS
	default:
		return nil
	}
}

// sortEntries orders entries longest prefix first so that nested aliases win.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if len(entries[i].Prefix) != len(entries[j].Prefix) {
			return len(entries[i].Prefix) > len(entries[j].Prefix)
		}
		return entries[i].Prefix < entries[j].Prefix
	})
}

func unavailable(msg string) error {
	return &types.RefactorError{Type: types.ConfigUnavailable, Message: msg}
}

func malformed(file string, cause error) error {
	return &types.RefactorError{Type: types.ConfigMalformed, Message: "cannot parse alias configuration", File: file, Cause: cause}
}
