package mcp

import (
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// Ports are the core services the MCP server calls.
// Index is optional and enables the last-run resource.
type Ports struct {
	Ask   driving.AskService
	Index driving.IndexService
}

// Validate reports ErrMissingAskService when Ask is unset.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
