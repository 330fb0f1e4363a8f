package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"taskbridge/internal/instrumentation"
	"taskbridge/internal/logging"
	"taskbridge/internal/server"
	"taskbridge/internal/taskstore"
	"taskbridge/internal/tools/tasks_tools"
)

// Transport names accepted by --transport.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// ServeConfig holds the serve command settings after flags and environment
// fallbacks have been resolved.
type ServeConfig struct {
	// Transport selects how the MCP server talks to clients.
	Transport string

	// HTTPAddr is the listen address for the streamable-http transport.
	HTTPAddr string

	// StoreURL is the base URL of the task store REST API.
	StoreURL string

	// Debug enables debug-level logging.
	Debug bool

	// Metrics configures the dedicated metrics listener.
	Metrics MetricsConfig
}

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that lets AI assistants
manage tasks in a remote task store.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Task Store:
  The base URL of the task store REST API is required:
    --store-url https://tasks.example.com/api/tasks
    OR TASKSTORE_BASE_URL env var
  Task data never lives in this process; every tool call is forwarded
  to the store.

Observability (streamable-http transport):
  Prometheus metrics are served on a dedicated port (--metrics-addr).
  Health endpoints /healthz, /readyz and /healthz/detailed run on the
  main listener alongside /mcp.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &config)

			if config.StoreURL == "" {
				return fmt.Errorf("task store base URL is required (set --store-url or TASKSTORE_BASE_URL)")
			}

			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&config.StoreURL, "store-url", "", "Base URL of the task store REST API. Can also use TASKSTORE_BASE_URL env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadServeEnvVars fills in config values from environment variables.
// Environment variables only apply when the flag was not explicitly set.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) {
	if !cmd.Flags().Changed("store-url") {
		if url := os.Getenv("TASKSTORE_BASE_URL"); url != "" {
			config.StoreURL = url
		}
	}

	if !cmd.Flags().Changed("metrics-enabled") {
		if enabled := os.Getenv("METRICS_ENABLED"); enabled != "" {
			config.Metrics.Enabled = enabled == "true"
		}
	}

	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Metrics.Addr = addr
		}
	}
}

func runServe(config ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr; stdout belongs to the stdio transport.
	logging.Setup(config.Debug)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Transport = config.Transport

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start the metrics server for network transports only; a stdio server
	// has nothing to scrape and no port to spare.
	var metricsServer *server.MetricsServer
	if config.Transport != transportStdio && config.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    config.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm the metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			slog.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Build the task store client and hand it to the server context.
	// Handlers reach the store only through the context.
	var store server.TaskStore = taskstore.New(config.StoreURL, nil)
	if provider.Enabled() {
		store = server.NewInstrumentedStore(store, provider.Metrics())
	}

	serverContext := server.NewServerContext(shutdownCtx, store)

	// Set metrics and audit logger on the server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	slog.Info("task store configured", logging.StoreURL(config.StoreURL))

	// Create MCP server
	// Note: mcp.Implementation has Title field but WithTitle() ServerOption not available in v0.43.0
	mcpSrv := mcpserver.NewMCPServer("taskbridge", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := tasks_tools.RegisterTaskTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch config.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, config, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	slog.Info("MCP server listening", logging.Transport(transportStdio))

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, config ServeConfig, provider *instrumentation.Provider) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	healthChecker := server.NewHealthChecker(serverContext)

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Addr:          config.HTTPAddr,
		MCPHandler:    streamable,
		HealthChecker: healthChecker,
		Metrics:       metrics,
		Logger:        logging.DefaultLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// Use ready channel to confirm the listener bound before announcing it
	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.StartWithReadySignal(ready); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
		slog.Info("MCP server listening",
			logging.Transport(transportStreamableHTTP),
			"addr", config.HTTPAddr,
			"endpoint", "/mcp")
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")

		// Flip readiness first so load balancers stop routing new work
		// while in-flight requests drain.
		healthChecker.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}
