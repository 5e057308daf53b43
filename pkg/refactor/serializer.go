package refactor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mamaar/reimport/pkg/types"
)

// DiffContext is the number of unchanged lines shown around each preview hunk.
const DiffContext = 2

// FileSystem is the file access the applier needs.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Stat(name string) (fs.FileInfo, error)
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }
func (osFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// Applier writes an edit batch and returns the snapshots needed to undo it.
type Applier interface {
	Apply(ctx context.Context, batch *types.EditBatch) ([]types.FileSnapshot, error)
}

// Serializer applies edit batches to files and renders previews.
type Serializer struct {
	fs FileSystem
}

func NewSerializer() *Serializer {
	return &Serializer{fs: osFS{}}
}

// NewSerializerFS returns a Serializer that goes through fsys.
func NewSerializerFS(fsys FileSystem) *Serializer {
	return &Serializer{fs: fsys}
}

type pending struct {
	file     string
	perm     fs.FileMode
	original []byte
	result   []byte
}

// Apply writes every file edit of the batch. All results are computed before the
// first write; if any write fails the files already written are restored. The
// returned snapshots feed the undo ledger.
func (s *Serializer) Apply(ctx context.Context, batch *types.EditBatch) ([]types.FileSnapshot, error) {
	if batch.Empty() {
		return nil, nil
	}

	var work []pending
	for _, edit := range batch.Edits {
		info, err := s.fs.Stat(edit.File)
		if err != nil {
			return nil, applyError(edit.File, "stat failed", err)
		}
		content, err := s.fs.ReadFile(edit.File)
		if err != nil {
			return nil, applyError(edit.File, "read failed", err)
		}
		result, err := ApplyReplacements(content, edit.Replacements)
		if err != nil {
			return nil, applyError(edit.File, "cannot apply edits", err)
		}
		work = append(work, pending{file: edit.File, perm: info.Mode().Perm(), original: content, result: result})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, p := range work {
		if err := s.fs.WriteFile(p.file, p.result, p.perm); err != nil {
			werr := applyError(p.file, "write failed", err)
			if rerr := s.rollback(work[:i]); rerr != nil {
				return nil, errors.Join(werr, rerr)
			}
			return nil, werr
		}
	}

	snapshots := make([]types.FileSnapshot, 0, len(work))
	for _, p := range work {
		snapshots = append(snapshots, types.FileSnapshot{File: p.file, Original: p.original, Result: p.result})
	}
	return snapshots, nil
}

func (s *Serializer) rollback(written []pending) error {
	var errs []error
	for _, p := range written {
		if err := s.fs.WriteFile(p.file, p.original, p.perm); err != nil {
			errs = append(errs, applyError(p.file, "rollback failed", err))
		}
	}
	return errors.Join(errs...)
}

func applyError(file, msg string, cause error) error {
	return &types.RefactorError{Type: types.ApplyFailed, File: file, Message: msg, Cause: cause}
}

// ApplyReplacements applies line/column replacements computed against content.
// Replacements must be disjoint and their OldText must still match.
func ApplyReplacements(content []byte, reps []types.Replacement) ([]byte, error) {
	if len(reps) == 0 {
		return content, nil
	}
	starts := lineStarts(content)

	type span struct {
		start, end int
		rep        types.Replacement
	}
	spans := make([]span, 0, len(reps))
	for _, r := range reps {
		if r.Line < 0 || r.Line >= len(starts) {
			return nil, fmt.Errorf("replacement %s: line out of range (%d lines)", describe(r), len(starts))
		}
		lineEnd := len(content)
		if r.Line+1 < len(starts) {
			lineEnd = starts[r.Line+1] - 1
		}
		start, end := starts[r.Line]+r.StartCol, starts[r.Line]+r.EndCol
		if r.StartCol < 0 || start > end || end > lineEnd {
			return nil, fmt.Errorf("replacement %s: invalid bounds", describe(r))
		}
		if actual := string(content[start:end]); actual != r.OldText {
			return nil, fmt.Errorf("replacement %s: old text mismatch, found %q", describe(r), actual)
		}
		spans = append(spans, span{start, end, r})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start > spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].end > spans[i-1].start {
			return nil, fmt.Errorf("overlapping replacements: %s and %s", describe(spans[i].rep), describe(spans[i-1].rep))
		}
	}

	out := append([]byte(nil), content...)
	for _, sp := range spans {
		tail := append([]byte(sp.rep.NewText), out[sp.end:]...)
		out = append(out[:sp.start], tail...)
	}
	return out, nil
}

func lineStarts(content []byte) []int {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Preview renders the batch as a unified diff against the current file contents.
func (s *Serializer) Preview(batch *types.EditBatch) (string, error) {
	if batch.Empty() {
		return "No changes needed\n", nil
	}
	var b strings.Builder
	for _, edit := range batch.Edits {
		content, err := s.fs.ReadFile(edit.File)
		if err != nil {
			return "", applyError(edit.File, "read failed", err)
		}
		result, err := ApplyReplacements(content, edit.Replacements)
		if err != nil {
			return "", applyError(edit.File, "cannot apply edits", err)
		}
		b.WriteString(UnifiedDiff(edit.File, string(content), string(result)))
	}
	return b.String(), nil
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders a line diff of before and after with DiffContext lines of context.
func UnifiedDiff(file, before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []diffLine
	for _, d := range diffs {
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			lines = append(lines, diffLine{op: d.Type, text: strings.TrimSuffix(l, "\n")})
		}
	}

	// 1-based line numbers in each side at the start of every diff line
	oldAt := make([]int, len(lines)+1)
	newAt := make([]int, len(lines)+1)
	oldNo, newNo := 1, 1
	for i, l := range lines {
		oldAt[i], newAt[i] = oldNo, newNo
		if l.op != diffmatchpatch.DiffInsert {
			oldNo++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newNo++
		}
	}
	oldAt[len(lines)], newAt[len(lines)] = oldNo, newNo

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n+++ %s\n", file, file)
	for i := 0; i < len(lines); {
		if lines[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}
		start := max(0, i-DiffContext)
		end := i
		for end < len(lines) {
			if lines[end].op != diffmatchpatch.DiffEqual {
				end++
				continue
			}
			run := end
			for run < len(lines) && lines[run].op == diffmatchpatch.DiffEqual {
				run++
			}
			if run == len(lines) || run-end > 2*DiffContext {
				end = min(len(lines), end+DiffContext)
				break
			}
			end = run
		}
		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n",
			oldAt[start], oldAt[end]-oldAt[start], newAt[start], newAt[end]-newAt[start])
		for _, l := range lines[start:end] {
			switch l.op {
			case diffmatchpatch.DiffDelete:
				out.WriteString("-")
			case diffmatchpatch.DiffInsert:
				out.WriteString("+")
			default:
				out.WriteString(" ")
			}
			out.WriteString(l.text)
			out.WriteString("\n")
		}
		i = end
	}
	return out.String()
}
