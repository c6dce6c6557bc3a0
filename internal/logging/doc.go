// Package logging provides structured logging utilities for the gdrive-mcp
// server.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "drive.list")
//	logger.Info("listing files", logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// Tokens are never logged directly; use SanitizeToken when a token must be
// referenced in a log line. When the server runs over the stdio transport all
// logging goes to stderr so the protocol stream stays clean.
package logging
