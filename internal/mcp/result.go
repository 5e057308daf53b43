package mcp

import (
	"encoding/json"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/reimport/pkg/types"
)

// BatchResult is the structured output of the rename tools.
type BatchResult struct {
	BatchID       string           `json:"batch_id,omitempty"`
	Message       string           `json:"message"`
	ChangeCount   int              `json:"change_count"`
	AffectedFiles []string         `json:"affected_files"`
	Edits         []types.FileEdit `json:"edits,omitempty"`
	Stats         types.BatchStats `json:"stats"`
	Diff          string           `json:"diff,omitempty"`
	Applied       bool             `json:"applied"`
	Moved         bool             `json:"moved"`
	Partial       bool             `json:"partial,omitempty"`
}

func batchResult(ws *types.Workspace, batch *types.EditBatch) *BatchResult {
	res := &BatchResult{
		BatchID:       batch.ID,
		Message:       batch.Message(),
		ChangeCount:   batch.ChangeCount(),
		AffectedFiles: relFiles(ws, batch.AffectedFiles()),
		Stats:         batch.Stats,
	}
	for _, e := range batch.Edits {
		e.File = ws.Rel(e.File)
		res.Edits = append(res.Edits, e)
	}
	return res
}

func relFiles(ws *types.Workspace, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, ws.Rel(f))
	}
	return out
}

// textResult marshals v to JSON and wraps it in a CallToolResult with a single
// TextContent block.
func textResult(v any) *mcpsdk.CallToolResult {
	b, _ := json.MarshalIndent(v, "", "  ")
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a CallToolResult that signals an error.
func errResult(err error) *mcpsdk.CallToolResult {
	r := &mcpsdk.CallToolResult{}
	r.SetError(err)
	return r
}
