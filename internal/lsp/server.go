// Package lsp serves reimport over the Language Server Protocol. Editors send
// workspace/willRenameFiles before moving files and apply the returned
// WorkspaceEdit to keep imports intact.
package lsp

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/mamaar/reimport/internal/config"
	"github.com/mamaar/reimport/pkg/refactor"
)

// Name is reported to clients in the initialize result.
const Name = "reimport-lsp"

var errNotInitialized = errors.New("server not initialized")

// Options configures a Server.
type Options struct {
	Version    string
	ConfigPath string
	Logger     *slog.Logger
	Metrics    *refactor.Metrics
}

// Server implements the reimport LSP server.
type Server struct {
	opts    Options
	logger  *slog.Logger
	handler protocol.Handler

	mu     sync.RWMutex
	root   string
	engine *refactor.DefaultEngine
}

// NewServer creates a server with the rename handlers installed.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	srv := &Server{opts: opts, logger: opts.Logger}

	srv.handler = protocol.Handler{
		Initialize:                     srv.initialize,
		Initialized:                    srv.initialized,
		Shutdown:                       srv.shutdown,
		SetTrace:                       srv.setTrace,
		WorkspaceWillRenameFiles:       srv.willRenameFiles,
		WorkspaceDidChangeWatchedFiles: srv.didChangeWatchedFiles,
	}
	return srv
}

// RunStdio serves on stdin/stdout until the client exits.
func (srv *Server) RunStdio() error {
	return server.NewServer(&srv.handler, Name, false).RunStdio()
}

// RunTCP serves clients connecting to address.
func (srv *Server) RunTCP(address string) error {
	return server.NewServer(&srv.handler, Name, false).RunTCP(address)
}

func (srv *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root, err := rootFromParams(params)
	if err != nil {
		return nil, err
	}
	if err := srv.load(root); err != nil {
		return nil, err
	}

	capabilities := srv.handler.CreateServerCapabilities()
	if capabilities.Workspace == nil {
		capabilities.Workspace = &protocol.ServerCapabilitiesWorkspace{}
	}
	capabilities.Workspace.FileOperations = &protocol.ServerCapabilitiesWorkspaceFileOperations{
		WillRename: &protocol.FileOperationRegistrationOptions{
			Filters: []protocol.FileOperationFilter{{
				Pattern: protocol.FileOperationPattern{Glob: "**/*"},
			}},
		},
	}

	version := srv.opts.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

// load creates the engine for root from its configuration.
func (srv *Server) load(root string) error {
	cfg, err := config.Load(root, srv.opts.ConfigPath)
	if err != nil {
		return err
	}
	engine := refactor.CreateEngine(root, cfg.Engine(),
		refactor.WithLogger(srv.logger), refactor.WithMetrics(srv.opts.Metrics))

	srv.mu.Lock()
	srv.root, srv.engine = root, engine
	srv.mu.Unlock()
	srv.logger.Info("workspace loaded", "root", root)
	return nil
}

func (srv *Server) current() (*refactor.DefaultEngine, error) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	if srv.engine == nil {
		return nil, errNotInitialized
	}
	return srv.engine, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}
