package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
)

// --- compute_rename_edits ---

// Paths are absolute or relative to the workspace root.

type ComputeRenameInput struct {
	OldPath string `json:"old_path" jsonschema:"current path of the file or directory"`
	NewPath string `json:"new_path" jsonschema:"path after the rename"`
	Diff    bool   `json:"diff,omitempty" jsonschema:"include a unified diff of the edits"`
}

// --- apply_rename ---

type ApplyRenameInput struct {
	OldPath string `json:"old_path" jsonschema:"current path of the file or directory"`
	NewPath string `json:"new_path" jsonschema:"path after the rename"`
	Move    bool   `json:"move,omitempty" jsonschema:"move old_path to new_path after updating imports"`
}

func registerRenameTools(s *mcpsdk.Server, state *State) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "compute_rename_edits",
		Description: "Compute the import edits a file or directory rename requires, without writing anything.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in ComputeRenameInput) (*mcpsdk.CallToolResult, any, error) {
		sess, err := state.current()
		if err != nil {
			return errResult(err), nil, nil
		}
		batch, partial, err := compute(ctx, sess, in.OldPath, in.NewPath)
		if err != nil {
			return errResult(err), nil, nil
		}
		out := batchResult(sess.workspace, batch)
		out.Partial = partial
		if in.Diff {
			if out.Diff, err = sess.engine.Preview(batch); err != nil {
				return errResult(err), nil, nil
			}
		}
		return textResult(out), nil, nil
	})

	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "apply_rename",
		Description: "Compute and write the import edits for a rename. The applied batch can be reverted with undo_rename.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in ApplyRenameInput) (*mcpsdk.CallToolResult, any, error) {
		sess, err := state.current()
		if err != nil {
			return errResult(err), nil, nil
		}
		batch, partial, err := compute(ctx, sess, in.OldPath, in.NewPath)
		if err != nil {
			return errResult(err), nil, nil
		}
		if partial {
			return errResult(&types.RefactorError{
				Type:    types.OperationTimedOut,
				Message: "refusing to apply a partial batch; " + types.TimeoutGuidance,
			}), nil, nil
		}

		out := batchResult(sess.workspace, batch)
		if !batch.Empty() {
			snaps, err := state.applier.Apply(ctx, batch)
			if err != nil {
				return errResult(err), nil, nil
			}
			sess.ledger.Record(types.HistoryEntry{BatchID: batch.ID, Snapshots: snaps})
			out.Applied = true
		}
		if in.Move {
			if err := refactor.Move(batch.Request.OldPath, batch.Request.NewPath); err != nil {
				return errResult(err), nil, nil
			}
			out.Moved = true
		}
		state.logger.Info(batch.Message(), "batch", batch.ID, "applied", out.Applied, "moved", out.Moved)
		return textResult(out), nil, nil
	})
}

// compute runs the engine for in. A timed out computation yields its partial
// batch with partial set instead of an error.
func compute(ctx context.Context, sess session, oldPath, newPath string) (*types.EditBatch, bool, error) {
	req := sess.workspace.Request(oldPath, newPath)
	batch, err := sess.engine.ComputeEdits(ctx, req)
	if err != nil {
		if typ, ok := types.TypeOf(err); ok && typ == types.OperationTimedOut && batch != nil {
			return batch, true, nil
		}
		return nil, false, err
	}
	return batch, false, nil
}
