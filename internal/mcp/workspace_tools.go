package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/reimport/pkg/types"
)

// --- load_workspace ---

type LoadWorkspaceInput struct {
	Path  string `json:"path" jsonschema:"absolute path to the project root"`
	Watch bool   `json:"watch,omitempty" jsonschema:"update imports automatically when files are renamed on disk"`
}

type LoadWorkspaceOutput struct {
	RootPath    string         `json:"root_path"`
	AliasCounts map[string]int `json:"alias_counts"`
	Watching    bool           `json:"watching"`
}

// --- list_aliases ---

type ListAliasesInput struct{}

type AliasOutput struct {
	Language string `json:"language"`
	Prefix   string `json:"prefix"`
	Target   string `json:"target"`
	Source   string `json:"source,omitempty"`
}

func registerWorkspaceTools(s *mcpsdk.Server, state *State) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "load_workspace",
		Description: "Load a project so that renames can be computed. Must be called before any other tool.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in LoadWorkspaceInput) (*mcpsdk.CallToolResult, any, error) {
		if err := state.LoadWorkspace(in.Path, in.Watch); err != nil {
			return errResult(err), nil, nil
		}
		sess, err := state.current()
		if err != nil {
			return errResult(err), nil, nil
		}
		out := LoadWorkspaceOutput{
			RootPath:    sess.workspace.RootPath,
			AliasCounts: make(map[string]int),
			Watching:    sess.watching,
		}
		set := sess.engine.Aliases()
		for _, lang := range types.Languages {
			if r := set.For(lang); r != nil {
				out.AliasCounts[lang.String()] = len(r.Entries())
			}
		}
		return textResult(out), nil, nil
	})

	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_aliases",
		Description: "List the import aliases configured in the loaded project (tsconfig paths, Python roots, Go module paths, bundler aliases).",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in ListAliasesInput) (*mcpsdk.CallToolResult, any, error) {
		sess, err := state.current()
		if err != nil {
			return errResult(err), nil, nil
		}
		out := []AliasOutput{}
		set := sess.engine.Aliases()
		for _, lang := range types.Languages {
			r := set.For(lang)
			if r == nil {
				continue
			}
			for _, e := range r.Entries() {
				out = append(out, AliasOutput{
					Language: lang.String(),
					Prefix:   e.Prefix,
					Target:   sess.workspace.Rel(e.Target),
					Source:   e.Source,
				})
			}
		}
		return textResult(out), nil, nil
	})
}
