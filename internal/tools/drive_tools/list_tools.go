package drive_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/driveglass/gdrive-mcp/internal/drive"
	"github.com/driveglass/gdrive-mcp/internal/server"
	"github.com/driveglass/gdrive-mcp/internal/tools/common"
)

// registerListTools registers the file listing and search tools
func registerListTools(s *mcpserver.MCPServer, sc *server.ServerContext, deps *toolDeps) {
	listFilesTool := mcp.NewTool("list_files",
		mcp.WithDescription("List the names, IDs, and types of files in the user's Google Drive"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of files to list (default: 50)"),
		),
	)

	s.AddTool(listFilesTool, common.InstrumentedToolHandlerWithService(
		"list_files", "drive", "list", sc, handleListFiles(deps)))

	searchFilesTool := mcp.NewTool("search_files",
		mcp.WithDescription("Search for files in Google Drive matching the query in their name or content"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term matched against file names and full text"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of matches to return (default: 10)"),
		),
	)

	s.AddTool(searchFilesTool, common.InstrumentedToolHandlerWithService(
		"search_files", "drive", "search", sc, handleSearchFiles(deps)))
}

func handleListFiles(deps *toolDeps) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		maxResults := DefaultListMaxResults
		if v, ok := args["max_results"].(float64); ok && v > 0 {
			maxResults = int(v)
		}

		client, err := deps.drive(ctx)
		if err != nil {
			return mcp.NewToolResultError("Authentication failed"), nil
		}

		files, err := client.ListFiles(ctx, maxResults)
		if err != nil {
			return mcp.NewToolResultError(renderDriveError(err)), nil
		}

		return mcp.NewToolResultText(formatFileTable(files)), nil
	}
}

func handleSearchFiles(deps *toolDeps) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		query, ok := args["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		maxResults := DefaultSearchMaxResults
		if v, ok := args["max_results"].(float64); ok && v > 0 {
			maxResults = int(v)
		}

		client, err := deps.drive(ctx)
		if err != nil {
			return mcp.NewToolResultError("Error: Could not connect to Google Drive."), nil
		}

		files, err := client.SearchFiles(ctx, query, maxResults)
		if err != nil {
			return mcp.NewToolResultError(renderDriveError(err)), nil
		}

		return mcp.NewToolResultText(formatSearchResults(query, files)), nil
	}
}

// formatFileTable renders files as a tab-separated table with a header row.
func formatFileTable(files []*drive.FileInfo) string {
	if len(files) == 0 {
		return "No files found."
	}

	var sb strings.Builder
	sb.WriteString("ID\tName\tType\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", f.ID, f.Name, f.Type())
	}
	return sb.String()
}

// formatSearchResults renders matches as a bulleted list. The unescaped query
// is echoed back in the empty-result message.
func formatSearchResults(query string, files []*drive.FileInfo) string {
	if len(files) == 0 {
		return fmt.Sprintf("No files found matching your search for '%s'.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d files matching your search:\n", len(files))
	for _, f := range files {
		fmt.Fprintf(&sb, "- Name: %s, ID: %s, Type: %s\n", f.Name, f.ID, f.Type())
	}
	return sb.String()
}
