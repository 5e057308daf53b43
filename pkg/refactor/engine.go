package refactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/match"
	"github.com/mamaar/reimport/pkg/rewrite"
	"github.com/mamaar/reimport/pkg/scanner"
	"github.com/mamaar/reimport/pkg/style"
	"github.com/mamaar/reimport/pkg/types"
)

const tracerName = "github.com/mamaar/reimport/pkg/refactor"

// RenameEngine computes import edits for renames inside one workspace.
type RenameEngine interface {
	// ComputeEdits enumerates the workspace and computes the edits of req.
	ComputeEdits(ctx context.Context, req types.RenameRequest) (*types.EditBatch, error)
	// ComputeEditsFor computes the edits of req over a caller-supplied candidate set.
	ComputeEditsFor(ctx context.Context, req types.RenameRequest, candidates []types.CandidateFile) (*types.EditBatch, error)
	// Preview renders a batch as a unified diff without touching any file.
	Preview(batch *types.EditBatch) (string, error)
	// Aliases returns the alias resolvers of the current session.
	Aliases() *alias.Set
	// ReloadAliases rebuilds the alias resolvers after a config file changed.
	ReloadAliases()
}

// EngineConfig contains the limits and style options of the rename engine
type EngineConfig struct {
	MaxFileSize         int64
	MaxFiles            int
	Timeout             time.Duration
	Workers             int
	LargeWorkspaceFiles int
	PackageScanLines    int
	Exclude             []string
	Style               style.Options
	Aliases             alias.Options
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		MaxFileSize:         1 << 20,
		MaxFiles:            20000,
		Timeout:             30 * time.Second,
		Workers:             8,
		LargeWorkspaceFiles: 5000,
		PackageScanLines:    20,
		Exclude:             []string{"**/node_modules/**", "**/.git/**", "**/dist/**", "**/build/**"},
	}
}

// DefaultEngine implements RenameEngine on the local filesystem.
type DefaultEngine struct {
	root    string
	config  *EngineConfig
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu      sync.RWMutex
	aliases *alias.Set
}

// Option customizes a DefaultEngine.
type Option func(*DefaultEngine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *DefaultEngine) { e.logger = l }
}

// WithMetrics records engine activity on m.
func WithMetrics(m *Metrics) Option {
	return func(e *DefaultEngine) { e.metrics = m }
}

// WithTracer overrides the global OTel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *DefaultEngine) { e.tracer = t }
}

// CreateEngine builds an engine for the workspace at root and loads its aliases.
func CreateEngine(root string, config *EngineConfig, opts ...Option) *DefaultEngine {
	if config == nil {
		config = DefaultConfig()
	}
	e := &DefaultEngine{root: root, config: config}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	e.ReloadAliases()
	return e
}

// Root is the workspace directory.
func (e *DefaultEngine) Root() string { return e.root }

// Config is the engine configuration.
func (e *DefaultEngine) Config() *EngineConfig { return e.config }

func (e *DefaultEngine) Aliases() *alias.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aliases
}

// ReloadAliases swaps in freshly loaded resolvers. Sessions already running keep
// the set they started with.
func (e *DefaultEngine) ReloadAliases() {
	set := alias.Load(e.root, e.config.Aliases, e.logger)
	e.mu.Lock()
	e.aliases = set
	e.mu.Unlock()
}

func (e *DefaultEngine) ComputeEdits(ctx context.Context, req types.RenameRequest) (*types.EditBatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	candidates, truncated, err := e.Enumerate(ctx, req.CandidateExtensions())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			e.metrics.observeTimeout()
			batch := &types.EditBatch{ID: uuid.NewString(), Request: req}
			return batch, &types.RefactorError{
				Type:    types.OperationTimedOut,
				Message: "rename computation timed out while listing candidate files; " + types.TimeoutGuidance,
			}
		}
		return nil, fmt.Errorf("enumerate candidates: %w", err)
	}
	batch, err := e.ComputeEditsFor(ctx, req, candidates)
	if batch != nil && truncated {
		batch.Stats.Truncated = true
		e.logger.WarnContext(ctx, "file limit reached, results may be incomplete", "max_files", e.config.MaxFiles)
	}
	return batch, err
}

// fileResult is what one worker reports back.
type fileResult struct {
	edit    *types.FileEdit
	outcome outcome
}

type outcome int

const (
	outcomeScanned outcome = iota
	outcomeFiltered
	outcomeTooLarge
	outcomeUnreadable
)

func (e *DefaultEngine) ComputeEditsFor(ctx context.Context, req types.RenameRequest, candidates []types.CandidateFile) (*types.EditBatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, span := e.tracer.Start(ctx, "refactor.ComputeEdits", trace.WithAttributes(
		attribute.String("rename.old", req.OldPath),
		attribute.String("rename.new", req.NewPath),
		attribute.Bool("rename.directory", req.IsDirectory),
		attribute.Int("rename.candidates", len(candidates)),
	))
	defer span.End()

	start := time.Now()
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	session := e.newSession(req)
	batch := &types.EditBatch{ID: uuid.NewString(), Request: req, Stats: types.BatchStats{Candidates: len(candidates)}}

	workers := e.workers(len(candidates))
	e.logger.DebugContext(ctx, "computing rename edits",
		"old", req.OldPath, "new", req.NewPath, "directory", req.IsDirectory,
		"candidates", len(candidates), "workers", workers)

	var (
		g         errgroup.Group
		mu        sync.Mutex
		results   []fileResult
		scheduled int
	)
	g.SetLimit(workers)
	for _, cand := range candidates {
		// no new tasks once the deadline passed; in-flight files finish
		if ctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			res := session.processFile(cand)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		switch res.outcome {
		case outcomeScanned:
			batch.Stats.Scanned++
		case outcomeFiltered:
			batch.Stats.Filtered++
		case outcomeTooLarge:
			batch.Stats.TooLarge++
		case outcomeUnreadable:
			batch.Stats.Unreadable++
		}
		if res.edit != nil {
			batch.Edits = append(batch.Edits, *res.edit)
		}
	}
	sort.Slice(batch.Edits, func(i, j int) bool { return batch.Edits[i].File < batch.Edits[j].File })

	elapsed := time.Since(start)
	e.metrics.observeBatch(batch, elapsed)
	span.SetAttributes(attribute.Int("rename.files_edited", len(batch.Edits)), attribute.Int("rename.changes", batch.ChangeCount()))

	if scheduled < len(candidates) || ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			e.metrics.observeTimeout()
			err := &types.RefactorError{
				Type: types.OperationTimedOut,
				Message: fmt.Sprintf("rename computation timed out after %d of %d files; %s",
					scheduled, len(candidates), types.TimeoutGuidance),
			}
			span.SetStatus(codes.Error, err.Message)
			return batch, err
		}
		span.SetStatus(codes.Error, "cancelled")
		return batch, ctx.Err()
	}

	e.logger.InfoContext(ctx, "rename edits computed",
		"old", req.OldPath, "new", req.NewPath,
		"files", len(batch.Edits), "changes", batch.ChangeCount(),
		"scanned", batch.Stats.Scanned, "filtered", batch.Stats.Filtered,
		"too_large", batch.Stats.TooLarge, "unreadable", batch.Stats.Unreadable,
		"elapsed", elapsed)
	return batch, nil
}

// workers widens the pool for large workspaces.
func (e *DefaultEngine) workers(candidates int) int {
	n := e.config.Workers
	if n < 1 {
		n = 1
	}
	if e.config.LargeWorkspaceFiles > 0 && candidates >= e.config.LargeWorkspaceFiles {
		n *= 2
	}
	return n
}

// session holds the immutable per-rename state shared by workers.
type session struct {
	engine     *DefaultEngine
	req        types.RenameRequest
	classifier *match.Classifier
	rewriter   *rewrite.Rewriter
	needles    [][]byte
}

func (e *DefaultEngine) newSession(req types.RenameRequest) *session {
	c := match.New(req, e.Aliases())
	return &session{
		engine:     e,
		req:        req,
		classifier: c,
		rewriter:   rewrite.New(c),
		needles:    Needles(req),
	}
}

// locations returns where the file lived before the rename and where it lives after.
// Candidates may be enumerated before or after the host moved the files.
func (s *session) locations(path string) (oldLoc, newLoc string) {
	inNew := path == s.req.NewPath || (s.req.IsDirectory && types.IsWithin(s.req.NewPath, path))
	if inNew {
		if _, err := os.Stat(s.req.Inverse().MapPath(path)); err != nil {
			return s.req.Inverse().MapPath(path), path
		}
	}
	return path, s.req.MapPath(path)
}

func (s *session) processFile(cand types.CandidateFile) fileResult {
	cfg := s.engine.config
	log := s.engine.logger

	size := cand.Size
	if size == 0 {
		if info, err := os.Stat(cand.Path); err == nil {
			size = info.Size()
		}
	}
	if cfg.MaxFileSize > 0 && size > cfg.MaxFileSize {
		log.Debug("skipping large file", "file", cand.Path, "size", humanize.IBytes(uint64(size)), "limit", humanize.IBytes(uint64(cfg.MaxFileSize)))
		return fileResult{outcome: outcomeTooLarge}
	}

	content, err := os.ReadFile(cand.Path)
	if err != nil {
		log.Warn("skipping unreadable file", "file", cand.Path, "error", err)
		return fileResult{outcome: outcomeUnreadable}
	}

	oldLoc, newLoc := s.locations(cand.Path)
	lang := types.DetectLanguage(cand.Path)
	moves := oldLoc != newLoc
	if !moves && !Prefilter(content, s.needles) {
		return fileResult{outcome: outcomeFiltered}
	}

	reps := s.fileReplacements(content, lang, oldLoc, newLoc)
	if lang == types.LanguageGo && s.req.IsDirectory && filepath.Dir(oldLoc) == s.req.OldPath {
		if r, ok := PackageDeclReplacement(content, s.req.OldName(), s.req.NewName(), cfg.PackageScanLines); ok {
			reps = append(reps, r)
			sort.Slice(reps, func(i, j int) bool { return reps[i].Line < reps[j].Line })
		}
	}
	if len(reps) == 0 {
		return fileResult{outcome: outcomeScanned}
	}
	return fileResult{
		outcome: outcomeScanned,
		edit: &types.FileEdit{
			File:         cand.Path,
			Replacements: reps,
			Summary:      summarize(s.engine.root, cand.Path, reps),
		},
	}
}

// fileReplacements runs scan, classify, rewrite and format over one file. All spans
// refer to the original content.
func (s *session) fileReplacements(content []byte, lang types.Language, oldLoc, newLoc string) []types.Replacement {
	sc := scanner.For(lang)
	if sc == nil {
		return nil
	}
	stmts := sc.Scan(content)
	if len(stmts) == 0 {
		return nil
	}

	byLine := make(map[int][]style.Edit)
	for _, stmt := range stmts {
		m, ok := s.classifier.Classify(oldLoc, stmt)
		if !ok {
			continue
		}
		res, changed := s.rewriter.Rewrite(oldLoc, newLoc, stmt, m)
		if !changed {
			continue
		}
		byLine[stmt.Line] = append(byLine[stmt.Line], style.Edit{Stmt: stmt, Path: res.Path, Names: res.Names})
	}
	if len(byLine) == 0 {
		return nil
	}

	lines := scanner.Lines(content)
	f := style.New(s.engine.config.Style, lines)
	var reps []types.Replacement
	for line, edits := range byLine {
		if r, ok := f.Format(line, lines[line], edits); ok {
			reps = append(reps, r)
		}
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i].Line < reps[j].Line })
	return reps
}

func summarize(root, file string, reps []types.Replacement) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	if len(reps) == 1 {
		return fmt.Sprintf("%s: 1 import updated", rel)
	}
	return fmt.Sprintf("%s: %d imports updated", rel, len(reps))
}

func (e *DefaultEngine) Preview(batch *types.EditBatch) (string, error) {
	return NewSerializer().Preview(batch)
}
