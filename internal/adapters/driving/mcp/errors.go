// Package mcp provides an MCP (Model Context Protocol) server adapter for regula.
// It lets AI assistants ask cited questions about the indexed building codes.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
