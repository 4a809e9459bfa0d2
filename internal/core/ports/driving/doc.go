// Package driving declares the services the CLI, HTTP, MCP and TUI
// adapters call: ingestion, indexing, asking and settings.
// internal/core/services implements them.
package driving
