package alias

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mamaar/reimport/pkg/types"
)

// BundlerConfigFiles are scanned for alias declarations. Their source is never evaluated.
var BundlerConfigFiles = []string{
	"webpack.config.js", "webpack.config.ts", "webpack.config.mjs", "webpack.config.cjs",
	"vite.config.js", "vite.config.ts", "vite.config.mjs", "vite.config.cjs",
}

// CSSConventionalDirs are searched for bare stylesheet imports.
var CSSConventionalDirs = []string{"src/styles", "styles", "src/assets", "assets"}

var (
	// '@': path.resolve(__dirname, 'src')   @styles: path.join(__dirname, "src/styles")
	webpackAliasRe = regexp.MustCompile(`(?:'([^']+)'|"([^"]+)"|([@~$][\w/-]*))\s*:\s*path\.(?:resolve|join)\(\s*__dirname\s*,\s*['"]([^'"]+)['"]`)
	// { find: '@', replacement: '/src' }   { find: '@', replacement: path.resolve(__dirname, 'src') }
	viteFindRe = regexp.MustCompile(`find\s*:\s*['"]([^'"]+)['"]\s*,\s*replacement\s*:\s*(?:path\.(?:resolve|join)\(\s*__dirname\s*,\s*)?['"]([^'"]+)['"]`)
	// '@': fileURLToPath(new URL('./src', import.meta.url))
	viteURLRe = regexp.MustCompile(`['"]([^'"]+)['"]\s*:\s*fileURLToPath\(\s*new\s+URL\(\s*['"]([^'"]+)['"]`)
	// '@': '/src'
	plainAliasRe = regexp.MustCompile(`['"]([@~$][^'"]*)['"]\s*:\s*['"](\.{0,2}/[^'"]*)['"]`)
)

// CSSResolver maps bundler aliases and the ~ dependency prefix for stylesheets.
type CSSResolver struct {
	Root      string
	entries   []Entry
	loadPaths []string
}

// LoadCSS extracts aliases from bundler config text. The ~ alias and the conventional
// load paths are always present.
func LoadCSS(root string) (*CSSResolver, error) {
	r := &CSSResolver{Root: root}
	found := false
	var loadErr error
	for _, name := range BundlerConfigFiles {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				loadErr = malformed(path, err)
			}
			continue
		}
		found = true
		r.entries = append(r.entries, ExtractBundlerAliases(string(data), root, path)...)
	}

	r.addEntry(Entry{Prefix: "~", Target: filepath.Join(root, "node_modules"), Source: "convention"})
	for _, dir := range CSSConventionalDirs {
		if p := filepath.Join(root, filepath.FromSlash(dir)); isDir(p) {
			r.loadPaths = append(r.loadPaths, p)
		}
	}
	sortEntries(r.entries)

	if loadErr == nil && !found {
		loadErr = unavailable("no webpack or vite config in " + root)
	}
	return r, loadErr
}

// ExtractBundlerAliases pulls alias pairs out of webpack or vite config source.
func ExtractBundlerAliases(src, root, source string) []Entry {
	var entries []Entry
	add := func(prefix, target string) {
		if prefix == "" || target == "" {
			return
		}
		target = strings.TrimPrefix(target, "/")
		entries = append(entries, Entry{
			Prefix: strings.TrimSuffix(prefix, "/"),
			Target: filepath.Join(root, filepath.FromSlash(target)),
			Source: source,
		})
	}
	for _, m := range webpackAliasRe.FindAllStringSubmatch(src, -1) {
		add(m[1]+m[2]+m[3], m[4])
	}
	for _, m := range viteFindRe.FindAllStringSubmatch(src, -1) {
		add(m[1], m[2])
	}
	for _, m := range viteURLRe.FindAllStringSubmatch(src, -1) {
		add(m[1], m[2])
	}
	for _, m := range plainAliasRe.FindAllStringSubmatch(src, -1) {
		add(m[1], m[2])
	}

	seen := make(map[string]bool)
	out := entries[:0]
	for _, e := range entries {
		if !seen[e.Prefix] {
			seen[e.Prefix] = true
			out = append(out, e)
		}
	}
	return out
}

func (r *CSSResolver) addEntry(e Entry) {
	for _, existing := range r.entries {
		if existing.Prefix == e.Prefix {
			return
		}
	}
	r.entries = append(r.entries, e)
}

func (r *CSSResolver) Language() types.Language { return types.LanguageCSS }

func (r *CSSResolver) lookup(text string) (Entry, string, bool) {
	for _, e := range r.entries {
		switch {
		case e.Prefix == "~" && strings.HasPrefix(text, "~"):
			return e, strings.TrimPrefix(text[1:], "/"), true
		case text == e.Prefix:
			return e, "", true
		case strings.HasPrefix(text, e.Prefix+"/"):
			return e, text[len(e.Prefix)+1:], true
		}
	}
	return Entry{}, "", false
}

func (r *CSSResolver) IsAliased(importText string) bool {
	_, _, ok := r.lookup(importText)
	return ok
}

func (r *CSSResolver) ToAbsolutePath(importText string) (string, bool) {
	e, rest, ok := r.lookup(importText)
	if !ok {
		return "", false
	}
	return filepath.Join(e.Target, filepath.FromSlash(rest)), true
}

func (r *CSSResolver) ToAlias(absPath string) (string, bool) {
	for _, e := range r.entries {
		rel, ok := within(e.Target, absPath)
		if !ok {
			continue
		}
		switch {
		case rel == ".":
			return e.Prefix, true
		case e.Prefix == "~":
			return "~" + rel, true
		default:
			return e.Prefix + "/" + rel, true
		}
	}
	return "", false
}

// LoadPaths are the directories bare imports are looked up in after the importing
// file's own directory.
func (r *CSSResolver) LoadPaths() []string { return r.loadPaths }

func (r *CSSResolver) Entries() []Entry { return r.entries }
