// Package common provides shared helpers for MCP tool implementations,
// notably the instrumented handler wrappers that record metrics and spans
// around every tool invocation.
package common
