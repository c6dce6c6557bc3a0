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

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/driveglass/gdrive-mcp/internal/gemini"
	"github.com/driveglass/gdrive-mcp/internal/google"
	"github.com/driveglass/gdrive-mcp/internal/instrumentation"
	"github.com/driveglass/gdrive-mcp/internal/server"
	"github.com/driveglass/gdrive-mcp/internal/tools/drive_tools"
)

// serveConfig carries the resolved serve settings after flag and environment
// merging.
type serveConfig struct {
	Transport       string
	HTTPAddr        string
	Debug           bool
	CredentialsFile string
	TokenFile       string
	MetricsEnabled  bool
	MetricsAddr     string
}

func newServeCmd() *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Google Drive tools
for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

The server needs an OAuth client secret file (download it from the Google
Cloud console) and acquires a user token on first use, or reuses the one
written by 'gdrive-mcp auth'. PDF summarization additionally needs the
GEMINI_API_KEY environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyServeEnv(cmd, &cfg)
			return runServe(cfg)
		},
	}

	registerServeFlags(cmd, &cfg)

	return cmd
}

func registerServeFlags(cmd *cobra.Command, cfg *serveConfig) {
	cmd.Flags().StringVar(&cfg.Transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", ":8080", "HTTP server address (streamable-http transport only)")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.CredentialsFile, "credentials-file", google.DefaultCredentialsFile, "Path to the OAuth client secret file. Can also use GDRIVE_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&cfg.TokenFile, "token-file", google.DefaultTokenFile, "Path to the persisted OAuth token. Can also use GDRIVE_TOKEN_FILE env var.")
	cmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
}

// applyServeEnv fills settings from the environment for flags the user did
// not set explicitly. Flags win over environment variables.
func applyServeEnv(cmd *cobra.Command, cfg *serveConfig) {
	if !cmd.Flags().Changed("credentials-file") {
		if v := os.Getenv("GDRIVE_CREDENTIALS_FILE"); v != "" {
			cfg.CredentialsFile = v
		}
	}
	if !cmd.Flags().Changed("token-file") {
		if v := os.Getenv("GDRIVE_TOKEN_FILE"); v != "" {
			cfg.TokenFile = v
		}
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			cfg.MetricsEnabled = v == "true"
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if v := os.Getenv("METRICS_ADDR"); v != "" {
			cfg.MetricsAddr = v
		}
	}
}

func runServe(cfg serveConfig) error {
	// Logs must stay off stdout: on the stdio transport stdout carries the
	// MCP protocol stream.
	logger := newServeLogger(cfg.Debug)
	slog.SetDefault(logger)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if !cfg.MetricsEnabled {
		instrConfig.Enabled = false
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	credentials := google.NewManager(cfg.CredentialsFile, cfg.TokenFile, logger)

	apiKey := os.Getenv(gemini.APIKeyEnvVar)
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, summarize_pdf will fail until it is provided")
	}

	serverContext := server.NewServerContext(shutdownCtx, credentials, apiKey, logger)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}

	healthChecker := server.NewHealthChecker(serverContext)

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if cfg.Transport != "stdio" && cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			HealthChecker:           healthChecker,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
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
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("gdrive-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	healthChecker.SetReady(true)

	switch cfg.Transport {
	case "stdio":
		return runStdioServer(shutdownCtx, mcpSrv)
	case "streamable-http":
		logger.Info("starting MCP server", "transport", cfg.Transport, "addr", cfg.HTTPAddr)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, cfg.HTTPAddr, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func newServeLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// registerAllTools registers all MCP tools with the server.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string, logger *slog.Logger) error {
	httpSrv := mcpserver.NewStreamableHTTPServer(mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpSrv.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
