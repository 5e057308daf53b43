package lsp

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mamaar/reimport/pkg/types"
)

// uriToPath converts a file:// URI to an absolute filesystem path.
func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", &types.RefactorError{Type: types.InvalidRequest, Message: "invalid URI " + uri, Cause: err}
	}
	if u.Scheme != "file" {
		return "", &types.RefactorError{Type: types.InvalidRequest, Message: fmt.Sprintf("unsupported URI scheme %q", u.Scheme)}
	}
	return filepath.FromSlash(u.Path), nil
}

func pathToURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// rootFromParams picks the workspace root: rootUri, then the first workspace
// folder, then the deprecated rootPath.
func rootFromParams(params *protocol.InitializeParams) (string, error) {
	if params.RootURI != nil && *params.RootURI != "" {
		return uriToPath(*params.RootURI)
	}
	if len(params.WorkspaceFolders) > 0 {
		return uriToPath(params.WorkspaceFolders[0].URI)
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return filepath.Abs(*params.RootPath)
	}
	return "", &types.RefactorError{Type: types.InvalidRequest, Message: "initialize carries no workspace root"}
}

func splitLines(content []byte) [][]byte {
	lines := bytes.Split(content, []byte("\n"))
	for i, l := range lines {
		lines[i] = bytes.TrimSuffix(l, []byte("\r"))
	}
	return lines
}

// utf16Col converts a byte column of line to UTF-16 code units.
func utf16Col(line []byte, col int) protocol.UInteger {
	if col > len(line) {
		col = len(line)
	}
	n := 0
	for b := line[:col]; len(b) > 0; {
		r, size := utf8.DecodeRune(b)
		n += utf16.RuneLen(r)
		b = b[size:]
	}
	return protocol.UInteger(n)
}

func textEdit(lines [][]byte, r types.Replacement) protocol.TextEdit {
	var line []byte
	if r.Line < len(lines) {
		line = lines[r.Line]
	}
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(r.Line), Character: utf16Col(line, r.StartCol)},
			End:   protocol.Position{Line: protocol.UInteger(r.Line), Character: utf16Col(line, r.EndCol)},
		},
		NewText: r.NewText,
	}
}
