// Package instrumentation provides OpenTelemetry-based observability for the
// gdrive-mcp server.
//
// It wires metrics and distributed tracing behind a single Provider that is
// configured from environment variables (see DefaultConfig). Metrics can be
// exported via Prometheus (scrape endpoint), OTLP, or stdout; traces via OTLP
// or stdout, or disabled entirely with the "none" exporter.
//
// The Metrics type exposes typed recording methods for the signals this
// server emits:
//
//   - MCP tool invocations (count and duration, per tool and status)
//   - Google API operations (count and duration, per service and operation)
//   - PDF summarization requests (count and duration, per model)
//   - OAuth authentication attempts
//   - HTTP requests served by the health and metrics endpoints
//
// All recording methods are nil-safe: a zero-value Metrics silently drops
// every observation, so instrumentation can be disabled without sprinkling
// conditionals through call sites.
//
// Tracing helpers (StartToolSpan, StartGoogleAPISpan, SetSpanError) keep span
// naming and attribute keys consistent across the codebase.
package instrumentation
