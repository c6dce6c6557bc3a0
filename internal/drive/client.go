package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/driveglass/gdrive-mcp/internal/logging"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// PDFMimeType is the MIME type required by DownloadPDF
	PDFMimeType = "application/pdf"

	// MaxDownloadBytes caps how much file content is buffered in memory per
	// download. Drive imposes no useful upper bound on PDF size and the whole
	// document is held in memory through extraction.
	MaxDownloadBytes = 50 << 20

	// listFields limits list/search responses to the metadata the tools render
	listFields = "nextPageToken, files(id, name, mimeType)"
)

// Sentinel errors the tool boundary maps to fixed user-facing messages.
var (
	// ErrNotPDF reports that a file handed to the PDF path has a different
	// MIME type.
	ErrNotPDF = errors.New("file is not a PDF")

	// ErrTooLarge reports that a download exceeded MaxDownloadBytes.
	ErrTooLarge = errors.New("file content exceeds the download size limit")
)

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	logger  *slog.Logger

	// maxDownload is MaxDownloadBytes unless narrowed by tests
	maxDownload int64
}

// NewClient creates a Drive client from an authenticated HTTP client, with
// optional extra ClientOptions (tests use option.WithEndpoint).
func NewClient(ctx context.Context, httpClient *http.Client, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithService(logger, "drive")

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service:     service,
		logger:      logger,
		maxDownload: MaxDownloadBytes,
	}, nil
}

// ListFiles lists up to maxResults files visible to the credential.
func (c *Client) ListFiles(ctx context.Context, maxResults int) ([]*FileInfo, error) {
	fileList, err := c.service.Files.List().
		Context(ctx).
		PageSize(int64(maxResults)).
		Fields(listFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	c.logger.Debug("listed files",
		logging.Operation("list"),
		slog.Int("count", len(fileList.Files)))

	return convertFiles(fileList.Files), nil
}

// SearchFiles returns up to maxResults files whose name or full text contains
// query, excluding trashed files. The query term is escaped before it is
// interpolated into the filter expression.
func (c *Client) SearchFiles(ctx context.Context, query string, maxResults int) ([]*FileInfo, error) {
	fileList, err := c.service.Files.List().
		Context(ctx).
		Q(buildSearchQuery(query)).
		PageSize(int64(maxResults)).
		Fields(listFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}

	c.logger.Debug("searched files",
		logging.Operation("search"),
		slog.Int("count", len(fileList.Files)))

	return convertFiles(fileList.Files), nil
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields("id, name, mimeType").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// DownloadPDF verifies the target is a PDF and downloads its full content
// into memory. Non-PDF targets fail with ErrNotPDF before any content is
// requested; downloads larger than MaxDownloadBytes fail with ErrTooLarge.
func (c *Client) DownloadPDF(ctx context.Context, fileID string) ([]byte, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if info.MimeType != PDFMimeType {
		return nil, fmt.Errorf("%w: %s has MIME type %s", ErrNotPDF, fileID, info.MimeType)
	}

	resp, err := c.service.Files.Get(fileID).
		Context(ctx).
		Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	// Read one byte past the cap so overflow is detectable.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read content of file %s: %w", fileID, err)
	}
	if int64(len(data)) > c.maxDownload {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, fileID, c.maxDownload)
	}

	c.logger.Debug("downloaded pdf",
		logging.Operation("download"),
		slog.Int("bytes", len(data)))

	return data, nil
}

// buildSearchQuery builds the server-side filter matching files whose name or
// full text contains the query, excluding trashed files.
func buildSearchQuery(query string) string {
	escaped := escapeQueryTerm(query)
	return fmt.Sprintf("(name contains '%s' or fullText contains '%s') and trashed = false", escaped, escaped)
}

// escapeQueryTerm escapes single quotes so a user-supplied term cannot
// malform the filter expression. This is a textual escape, not parameter
// binding; the Drive query language offers no binding mechanism.
func escapeQueryTerm(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	return strings.ReplaceAll(term, `'`, `\'`)
}

func convertFiles(files []*drive.File) []*FileInfo {
	infos := make([]*FileInfo, len(files))
	for i, f := range files {
		infos[i] = convertToFileInfo(f)
	}
	return infos
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	return &FileInfo{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
	}
}
