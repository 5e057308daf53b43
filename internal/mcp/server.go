// Package mcp exposes the rename engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/reimport/internal/config"
	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/types"
	"github.com/mamaar/reimport/pkg/watch"
)

// Name is reported to clients as the implementation name.
const Name = "reimport"

var errNoWorkspace = errors.New("no workspace loaded, call load_workspace first")

// State holds what the tool handlers share: the loaded workspace, its engine,
// the undo ledger, and an optional watcher that applies renames as they happen.
type State struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	metrics    *refactor.Metrics
	configPath string

	workspace *types.Workspace
	config    *config.Config
	engine    *refactor.DefaultEngine
	applier   refactor.Applier
	ledger    *refactor.Ledger

	watcher *watch.Watcher
	cancel  context.CancelFunc
}

// NewState creates an empty State. configPath may be empty to use the
// workspace default.
func NewState(configPath string, metrics *refactor.Metrics, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &State{
		logger:     logger,
		metrics:    metrics,
		configPath: configPath,
		applier:    refactor.NewSerializer(),
	}
}

// NewServer builds an MCP server with every reimport tool registered.
func NewServer(state *State, version string) *mcpsdk.Server {
	s := mcpsdk.NewServer(&mcpsdk.Implementation{Name: Name, Version: version}, nil)
	RegisterAllTools(s, state)
	return s
}

// LoadWorkspace loads (or reloads) the workspace at path. The undo history is
// reset. With watch set, a background watcher updates imports for renames made
// outside the MCP session.
func (s *State) LoadWorkspace(path string, watchFS bool) error {
	ws, err := types.NewWorkspace(path)
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws.RootPath, s.configPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchLocked()

	s.logger.Info("loading workspace", "path", ws.RootPath)
	s.workspace = ws
	s.config = cfg
	s.engine = refactor.CreateEngine(ws.RootPath, cfg.Engine(),
		refactor.WithLogger(s.logger), refactor.WithMetrics(s.metrics))
	s.ledger = refactor.NewLedger(cfg.History.MaxEntries, s.logger)

	if !watchFS {
		return nil
	}
	w, err := watch.NewWatcher(ws.RootPath, 200*time.Millisecond, s.logger)
	if err != nil {
		s.logger.Warn("watcher unavailable, renames will not be picked up", "err", err)
		return nil
	}
	s.watcher = w
	updater := watch.NewUpdater(s.engine, s.applier, s.ledger, s.logger)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := updater.Watch(ctx, w); err != nil && ctx.Err() == nil {
			s.logger.Error("watcher error", "err", err)
		}
	}()
	return nil
}

// session is a consistent view of the loaded workspace.
type session struct {
	workspace *types.Workspace
	engine    *refactor.DefaultEngine
	ledger    *refactor.Ledger
	watching  bool
}

func (s *State) current() (session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return session{}, errNoWorkspace
	}
	return session{workspace: s.workspace, engine: s.engine, ledger: s.ledger, watching: s.watcher != nil}, nil
}

// Close stops the watcher and releases resources.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchLocked()
}

func (s *State) stopWatchLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
}
