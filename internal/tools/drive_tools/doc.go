// Package drive_tools implements the MCP tool endpoints over Google Drive:
// list_files, search_files, and summarize_pdf.
//
// Handlers return plain strings in every case. Failures are rendered into the
// result text at this boundary (mcp.NewToolResultError with a nil Go error);
// the inner packages report structured errors, but callers of the tools only
// ever see human-readable messages.
package drive_tools
