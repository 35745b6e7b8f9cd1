// file: cmd/instapaper-mcp/serve.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/config"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/dkoosis/instapaper-mcp/internal/metrics"
	"github.com/dkoosis/instapaper-mcp/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdio (the default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// runServe validates configuration, authenticates once, then serves MCP on
// stdio until the client disconnects or the process is signalled. Missing
// credentials and a rejected login are fatal.
func runServe(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()
	logger, cfg, err := setupLoggingAndConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration.", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := metrics.InitProvider(ctx, metrics.ProviderConfig{
		ServiceName:    cfg.Server.Name,
		ServiceVersion: cfg.Server.Version,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed.", "error", err)
		}
	}()

	if cfg.Metrics.Addr != "" {
		metricsServer := startMetricsServer(cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	client := newClient(cfg)
	logger.Info("Authenticating with Instapaper.", "baseURL", client.BaseURL())
	if err := client.Authenticate(ctx); err != nil {
		logger.Error("Authentication failed; check your Instapaper credentials.", "error", err)
		return errors.Wrap(err, "startup authentication failed")
	}

	srv, err := server.New(client,
		server.WithLogger(logging.GetLogger("mcp_server")),
		server.WithBulkLimit(cfg.Bulk.Concurrency),
		server.WithImplementation(cfg.Server.Name, cfg.Server.Version),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create MCP server")
	}

	logger.Info("Server startup complete.",
		"name", cfg.Server.Name,
		"version", cfg.Server.Version,
		"tools", len(srv.ToolNames()),
		"startup_time_ms", time.Since(startTime).Milliseconds())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received.")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "stdio server stopped")
		}
		logger.Info("Stdio closed; shutting down.")
		return nil
	}
}

// newClient builds an Instapaper client from configuration.
func newClient(cfg *config.Config) *instapaper.Client {
	return instapaper.NewClient(instapaper.Credentials{
		ConsumerKey:    cfg.Instapaper.ConsumerKey,
		ConsumerSecret: cfg.Instapaper.ConsumerSecret,
		Username:       cfg.Instapaper.Username,
		Password:       cfg.Instapaper.Password,
	},
		instapaper.WithBaseURL(cfg.Instapaper.BaseURL),
		instapaper.WithTimeout(cfg.Instapaper.RequestTimeout),
		instapaper.WithLogger(logging.GetLogger("instapaper_client")),
	)
}

// startMetricsServer serves /metrics in the background. A listen failure is
// logged and does not stop the MCP server.
func startMetricsServer(addr string, logger logging.Logger) *http.Server {
	hs := server.NewMetricsHTTPServer(addr, logger.WithField("component", "metrics_http"))
	go func() {
		logger.Info("Serving metrics.", "addr", addr, "path", server.MetricsPath)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics endpoint failed.", "addr", addr, "error", err)
		}
	}()
	return hs
}
