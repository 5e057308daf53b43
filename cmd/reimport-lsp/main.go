// Command reimport-lsp serves workspace/willRenameFiles over the Language Server
// Protocol.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamaar/reimport/internal/cli"
	"github.com/mamaar/reimport/internal/logging"
	"github.com/mamaar/reimport/internal/lsp"
	"github.com/mamaar/reimport/internal/observability"
	"github.com/mamaar/reimport/pkg/refactor"
)

type options struct {
	tcp         string
	configPath  string
	metricsAddr string
	logFile     string
	logLevel    string
	logFormat   string
}

func newCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "reimport-lsp",
		Short:         "Language server that keeps imports intact when files are renamed",
		Version:       cli.ResolvedVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.tcp, "tcp", "", "listen on this address instead of stdio")
	f.StringVar(&opts.configPath, "config", "", "config file (default <workspace>/.reimport.yaml)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	var w io.Writer = cmd.ErrOrStderr()
	if opts.logFile != "" {
		file, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
		w = file
	}
	if _, err := logging.ParseLevel(opts.logLevel); err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: opts.logLevel, Format: opts.logFormat}, w)

	metrics, stop, err := serveMetrics(opts.metricsAddr, logger)
	if err != nil {
		return err
	}
	defer stop()

	srv := lsp.NewServer(lsp.Options{
		Version:    cli.ResolvedVersion(),
		ConfigPath: opts.configPath,
		Logger:     logger,
		Metrics:    metrics,
	})
	if opts.tcp != "" {
		logger.Info("starting language server", "addr", opts.tcp)
		return srv.RunTCP(opts.tcp)
	}
	logger.Info("starting language server", "transport", "stdio")
	return srv.RunStdio()
}

// serveMetrics starts the metrics endpoint when addr is set.
func serveMetrics(addr string, logger *slog.Logger) (*refactor.Metrics, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}
	reg := observability.NewRegistry()
	metrics := refactor.NewMetrics(reg)
	srv, err := observability.NewMetricsServer(addr, reg, logger)
	if err != nil {
		return nil, nil, err
	}
	return metrics, func() { _ = srv.Close() }, nil
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
