package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
)

type HistoryInput struct{}

type HistoryOutput struct {
	BatchID  string   `json:"batch_id"`
	Files    []string `json:"files"`
	CanUndo  bool     `json:"can_undo"`
	CanRedo  bool     `json:"can_redo"`
	Restored bool     `json:"restored"`
}

func registerHistoryTools(s *mcpsdk.Server, state *State) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "undo_rename",
		Description: "Restore the files changed by the most recent apply_rename. Moved files are not moved back.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in HistoryInput) (*mcpsdk.CallToolResult, any, error) {
		return step(state, "undo", (*refactor.Ledger).Undo), nil, nil
	})

	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "redo_rename",
		Description: "Re-apply the most recently undone rename batch.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in HistoryInput) (*mcpsdk.CallToolResult, any, error) {
		return step(state, "redo", (*refactor.Ledger).Redo), nil, nil
	})
}

func step(state *State, verb string, fn func(*refactor.Ledger) (types.HistoryEntry, bool, error)) *mcpsdk.CallToolResult {
	sess, err := state.current()
	if err != nil {
		return errResult(err)
	}
	entry, ok, err := fn(sess.ledger)
	if err != nil {
		return errResult(err)
	}
	if !ok {
		return errResult(fmt.Errorf("nothing to %s", verb))
	}
	out := HistoryOutput{
		BatchID:  entry.BatchID,
		CanUndo:  sess.ledger.CanUndo(),
		CanRedo:  sess.ledger.CanRedo(),
		Restored: true,
	}
	for _, snap := range entry.Snapshots {
		out.Files = append(out.Files, sess.workspace.Rel(snap.File))
	}
	state.logger.Info(verb+" applied", "batch", entry.BatchID, "files", len(out.Files))
	return textResult(out)
}
