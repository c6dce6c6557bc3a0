package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/driveglass/gdrive-mcp/internal/drive"
	"github.com/driveglass/gdrive-mcp/internal/gemini"
	"github.com/driveglass/gdrive-mcp/internal/google"
	"github.com/driveglass/gdrive-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the credential
// manager, lazily created service clients, and the metrics recorder.
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	credentials  *google.Manager
	geminiAPIKey string
	driveClient  *drive.Client
	geminiClient *gemini.Client
	metrics      *instrumentation.Metrics
	logger       *slog.Logger
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context.
//
// Service clients are not created here; they are lazily initialized on first
// use so the server can start before credentials exist. The consent flow (or
// the auth command) produces them on demand.
func NewServerContext(ctx context.Context, credentials *google.Manager, geminiAPIKey string, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		credentials:  credentials,
		geminiAPIKey: geminiAPIKey,
		logger:       logger,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Credentials returns the OAuth credential manager.
func (sc *ServerContext) Credentials() *google.Manager {
	return sc.credentials
}

// DriveClient returns the Drive client, creating and caching it on first use.
// Creation runs the credential flow, so the first call may block on user
// consent when no stored token exists.
func (sc *ServerContext) DriveClient() (*drive.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.driveClient != nil {
		return sc.driveClient, nil
	}

	if sc.credentials == nil {
		return nil, fmt.Errorf("no credential manager configured")
	}

	httpClient, err := sc.credentials.Client(sc.ctx)
	if sc.metrics != nil {
		result := instrumentation.OAuthResultSuccess
		if err != nil {
			result = instrumentation.OAuthResultFailure
		}
		sc.metrics.RecordOAuthAuth(sc.ctx, result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain authorized HTTP client: %w", err)
	}

	client, err := drive.NewClient(sc.ctx, httpClient, sc.logger)
	if err != nil {
		return nil, err
	}

	sc.driveClient = client
	return client, nil
}

// SetDriveClient sets the Drive client directly, bypassing lazy creation.
func (sc *ServerContext) SetDriveClient(client *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.driveClient = client
}

// GeminiClient returns the Gemini client, creating and caching it on first use.
func (sc *ServerContext) GeminiClient() (*gemini.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.geminiClient != nil {
		return sc.geminiClient, nil
	}

	client, err := gemini.NewClient(sc.ctx, sc.geminiAPIKey, sc.logger)
	if err != nil {
		return nil, err
	}

	sc.geminiClient = client
	return client, nil
}

// SetGeminiClient sets the Gemini client directly, bypassing lazy creation.
func (sc *ServerContext) SetGeminiClient(client *gemini.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.geminiClient = client
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Logger returns the logger for this server context.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
