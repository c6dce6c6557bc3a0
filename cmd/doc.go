// Package cmd implements the command-line interface for gdrive-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Google Drive tools
//   - auth: Run the OAuth consent flow and persist the token
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
