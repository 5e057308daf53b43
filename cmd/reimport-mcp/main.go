// Command reimport-mcp exposes reimport as Model Context Protocol tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/internal/cli"
	"github.com/mamaar/reimport/internal/logging"
	"github.com/mamaar/reimport/internal/mcp"
	"github.com/mamaar/reimport/internal/observability"
	"github.com/mamaar/reimport/pkg/refactor"
)

type options struct {
	workspace   string
	watch       bool
	httpAddr    string
	configPath  string
	metricsAddr string
	logLevel    string
	logFormat   string
}

func newCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "reimport-mcp",
		Short:         "MCP server computing and applying import edits for renames",
		Version:       cli.ResolvedVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.workspace, "workspace", "w", "", "load this workspace on startup")
	f.BoolVar(&opts.watch, "watch", false, "with --workspace, update imports for renames made on disk")
	f.StringVar(&opts.httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	f.StringVar(&opts.configPath, "config", "", "config file (default <workspace>/.reimport.yaml)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if _, err := logging.ParseLevel(opts.logLevel); err != nil {
		return err
	}
	// stdout carries the protocol
	logger := logging.New(logging.Options{Level: opts.logLevel, Format: opts.logFormat}, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *refactor.Metrics
	if opts.metricsAddr != "" {
		reg := observability.NewRegistry()
		metrics = refactor.NewMetrics(reg)
		srv, err := observability.NewMetricsServer(opts.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()
	}

	state := mcp.NewState(opts.configPath, metrics, logger)
	defer state.Close()
	if opts.workspace != "" {
		if err := state.LoadWorkspace(opts.workspace, opts.watch); err != nil {
			return err
		}
	}
	server := mcp.NewServer(state, cli.ResolvedVersion())

	if opts.httpAddr != "" {
		return serveHTTP(ctx, server, opts.httpAddr, logger)
	}
	logger.Info("starting MCP server", "transport", "stdio")
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, logger *slog.Logger) error {
	handler := mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server { return server }, nil)
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	logger.Info("starting MCP server", "transport", "http", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
