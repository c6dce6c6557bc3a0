package drive_tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/driveglass/gdrive-mcp/internal/drive"
	"github.com/driveglass/gdrive-mcp/internal/gemini"
	"github.com/driveglass/gdrive-mcp/internal/instrumentation"
	"github.com/driveglass/gdrive-mcp/internal/server"
	"github.com/driveglass/gdrive-mcp/internal/tools/common"
)

// registerSummarizeTools registers the PDF summarization tool
func registerSummarizeTools(s *mcpserver.MCPServer, sc *server.ServerContext, deps *toolDeps) {
	summarizePDFTool := mcp.NewTool("summarize_pdf",
		mcp.WithDescription("Download a PDF from Google Drive, extract its text, and return a summary from Gemini"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The Drive file ID of the PDF to summarize"),
		),
		mcp.WithString("prompt",
			mcp.Description("Summarization instructions sent ahead of the document text (default: \""+DefaultSummaryPrompt+"\")"),
		),
	)

	s.AddTool(summarizePDFTool, common.InstrumentedToolHandler(
		"summarize_pdf", sc, handleSummarizePDF(deps)))
}

func handleSummarizePDF(deps *toolDeps) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		fileID, ok := args["file_id"].(string)
		if !ok || fileID == "" {
			return mcp.NewToolResultError("file_id is required"), nil
		}

		prompt := DefaultSummaryPrompt
		if p, ok := args["prompt"].(string); ok && p != "" {
			prompt = p
		}

		start := time.Now()
		result := summarizePDF(ctx, deps, fileID, prompt)

		if deps.metrics != nil {
			if m := deps.metrics(); m != nil {
				status := instrumentation.StatusSuccess
				if result.IsError {
					status = instrumentation.StatusError
				}
				m.RecordSummarization(ctx, gemini.DefaultModel, status, time.Since(start))
			}
		}

		return result, nil
	}
}

// summarizePDF runs the download, extract, summarize pipeline. Every failure
// is rendered into the result text; the MCP boundary never sees a Go error.
func summarizePDF(ctx context.Context, deps *toolDeps, fileID, prompt string) *mcp.CallToolResult {
	client, err := deps.drive(ctx)
	if err != nil {
		return mcp.NewToolResultError("Error: Could not connect to Google Drive.")
	}

	data, err := client.DownloadPDF(ctx, fileID)
	if err != nil {
		if errors.Is(err, drive.ErrNotPDF) {
			return mcp.NewToolResultError("Error: This tool only works with PDF files.")
		}
		return mcp.NewToolResultError(renderDriveError(err))
	}

	text, err := deps.extract(data)
	if err != nil {
		return mcp.NewToolResultError(renderDriveError(err))
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("Could not extract any text from the PDF. It might be an image-based PDF.")
	}

	sum, err := deps.summarizer(ctx)
	if err != nil {
		return mcp.NewToolResultError(renderDriveError(err))
	}

	summary, err := sum.Summarize(ctx, text, prompt)
	if err != nil {
		return mcp.NewToolResultError(renderDriveError(err))
	}

	return mcp.NewToolResultText(summary)
}
