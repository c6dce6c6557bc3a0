// Package server holds the shared runtime state of the MCP server.
//
// ServerContext owns the OAuth credential manager and lazily creates the
// Drive and Gemini clients the first time a tool needs them, so the process
// can start before any token exists on disk. It also carries the metrics
// recorder handed to the instrumented tool handlers.
//
// HealthChecker exposes Kubernetes-style liveness and readiness probes, and
// MetricsServer serves the Prometheus scrape endpoint on a dedicated port so
// operational metrics stay off the MCP transport.
package server
