package alias

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

// JSConfigFiles are tried in order; the first one present wins.
var JSConfigFiles = []string{"tsconfig.json", "jsconfig.json"}

type jsPattern struct {
	alias    string
	prefix   string
	suffix   string
	wildcard bool
	targets  []string
}

func (p jsPattern) capture(text string) (string, bool) {
	if !p.wildcard {
		return "", text == p.alias
	}
	if len(text) < len(p.prefix)+len(p.suffix) {
		return "", false
	}
	if !strings.HasPrefix(text, p.prefix) || !strings.HasSuffix(text, p.suffix) {
		return "", false
	}
	return text[len(p.prefix) : len(text)-len(p.suffix)], true
}

// JSResolver maps compilerOptions.paths patterns of a tsconfig/jsconfig file.
type JSResolver struct {
	ConfigFile string
	BaseDir    string
	patterns   []jsPattern
}

type tsconfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadJS reads the first JS config file found in root.
func LoadJS(root string) (*JSResolver, error) {
	for _, name := range JSConfigFiles {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return &JSResolver{BaseDir: root}, malformed(path, err)
		}
		r, err := ParseJSConfig(data, root)
		if err != nil {
			return &JSResolver{BaseDir: root}, malformed(path, err)
		}
		r.ConfigFile = path
		return r, nil
	}
	return &JSResolver{BaseDir: root}, unavailable("no tsconfig.json or jsconfig.json in " + root)
}

// ParseJSConfig decodes tsconfig content located in dir. Comments and trailing
// commas are accepted.
func ParseJSConfig(data []byte, dir string) (*JSResolver, error) {
	var cfg tsconfig
	if err := json.Unmarshal(stripJSONC(data), &cfg); err != nil {
		return nil, err
	}

	r := &JSResolver{BaseDir: dir}
	if cfg.CompilerOptions.BaseURL != "" {
		r.BaseDir = filepath.Join(dir, filepath.FromSlash(cfg.CompilerOptions.BaseURL))
	}

	for alias, targets := range cfg.CompilerOptions.Paths {
		p := jsPattern{alias: alias}
		if i := strings.IndexByte(alias, '*'); i >= 0 {
			p.wildcard = true
			p.prefix, p.suffix = alias[:i], alias[i+1:]
		} else {
			p.prefix = alias
		}
		for _, t := range targets {
			p.targets = append(p.targets, filepath.Join(r.BaseDir, filepath.FromSlash(t)))
		}
		if len(p.targets) > 0 {
			r.patterns = append(r.patterns, p)
		}
	}
	sort.SliceStable(r.patterns, func(i, j int) bool {
		if len(r.patterns[i].prefix) != len(r.patterns[j].prefix) {
			return len(r.patterns[i].prefix) > len(r.patterns[j].prefix)
		}
		return r.patterns[i].alias < r.patterns[j].alias
	})
	return r, nil
}

func (r *JSResolver) Language() types.Language { return types.LanguageJS }

func (r *JSResolver) match(text string) (jsPattern, string, bool) {
	for _, p := range r.patterns {
		if c, ok := p.capture(text); ok {
			return p, c, true
		}
	}
	return jsPattern{}, "", false
}

func (r *JSResolver) IsAliased(importText string) bool {
	_, _, ok := r.match(importText)
	return ok
}

// ToAbsolutePath substitutes the wildcard capture into the pattern's targets and
// returns the first one present on disk, or the first target when none is.
func (r *JSResolver) ToAbsolutePath(importText string) (string, bool) {
	p, capture, ok := r.match(importText)
	if !ok {
		return "", false
	}
	var candidates []string
	for _, t := range p.targets {
		candidates = append(candidates, strings.Replace(t, "*", filepath.FromSlash(capture), 1))
	}
	for _, c := range candidates {
		if exists(c, types.JSExtensions) {
			return c, true
		}
	}
	return candidates[0], true
}

// ToAlias returns the alias whose target most specifically contains absPath.
func (r *JSResolver) ToAlias(absPath string) (string, bool) {
	best, bestLen := "", -1
	for _, p := range r.patterns {
		for _, t := range p.targets {
			if !p.wildcard || !strings.Contains(t, "*") {
				if absPath == t && len(t) > bestLen {
					best, bestLen = p.alias, len(t)
				}
				continue
			}
			i := strings.IndexByte(t, '*')
			head, tail := t[:i], t[i+1:]
			if !strings.HasPrefix(absPath, head) || !strings.HasSuffix(absPath[len(head):], tail) {
				continue
			}
			capture := absPath[len(head) : len(absPath)-len(tail)]
			if capture == "" || len(head) <= bestLen {
				continue
			}
			best, bestLen = p.prefix+filepath.ToSlash(capture)+p.suffix, len(head)
		}
	}
	return best, bestLen >= 0
}

func (r *JSResolver) Entries() []Entry {
	entries := make([]Entry, 0, len(r.patterns))
	for _, p := range r.patterns {
		entries = append(entries, Entry{Prefix: p.alias, Target: strings.Join(p.targets, ", "), Source: r.ConfigFile})
	}
	return entries
}
