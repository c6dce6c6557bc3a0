package drive_tools

import (
	"context"
	"errors"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"google.golang.org/api/googleapi"

	"github.com/driveglass/gdrive-mcp/internal/drive"
	"github.com/driveglass/gdrive-mcp/internal/instrumentation"
	"github.com/driveglass/gdrive-mcp/internal/pdf"
	"github.com/driveglass/gdrive-mcp/internal/server"
)

const (
	// DefaultListMaxResults is the default page size for list_files.
	DefaultListMaxResults = 50

	// DefaultSearchMaxResults is the default page size for search_files.
	DefaultSearchMaxResults = 10

	// DefaultSummaryPrompt is sent to the summarizer when the caller supplies
	// no prompt of their own.
	DefaultSummaryPrompt = "Summarize this PDF in 200 words using bullet points"
)

// driveService is the slice of the Drive client the tool handlers consume.
type driveService interface {
	ListFiles(ctx context.Context, maxResults int) ([]*drive.FileInfo, error)
	SearchFiles(ctx context.Context, query string, maxResults int) ([]*drive.FileInfo, error)
	DownloadPDF(ctx context.Context, fileID string) ([]byte, error)
}

// summarizer produces a text summary from extracted document text.
type summarizer interface {
	Summarize(ctx context.Context, text, prompt string) (string, error)
}

// toolDeps carries the dependencies of the tool handlers. Production wiring
// resolves them lazily through the server context; tests inject fakes.
type toolDeps struct {
	drive      func(ctx context.Context) (driveService, error)
	summarizer func(ctx context.Context) (summarizer, error)
	extract    func(data []byte) (string, error)
	metrics    func() *instrumentation.Metrics
}

// newToolDeps builds the production dependency set over a server context.
// Client acquisition stays lazy so a missing token only surfaces (and the
// consent flow only runs) when a tool actually needs Drive.
func newToolDeps(sc *server.ServerContext) *toolDeps {
	return &toolDeps{
		drive: func(_ context.Context) (driveService, error) {
			return sc.DriveClient()
		},
		summarizer: func(_ context.Context) (summarizer, error) {
			return sc.GeminiClient()
		},
		extract: pdf.Extract,
		metrics: sc.Metrics,
	}
}

// RegisterDriveTools registers all Google Drive-related tools with the MCP server.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	deps := newToolDeps(sc)

	registerListTools(s, sc, deps)
	registerSummarizeTools(s, sc, deps)

	return nil
}

// renderDriveError converts an inner error into the human-readable string the
// tool boundary returns. Remote API failures keep their native message;
// everything else falls through to the generic form.
func renderDriveError(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("An error occurred with the Google Drive API: %v", apiErr)
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}
