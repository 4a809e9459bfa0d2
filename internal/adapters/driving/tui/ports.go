// Package tui is the interactive terminal front end of regula.
package tui

import (
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// Ports are the core services the TUI calls. Settings may be nil, in which
// case the settings view reports it as unavailable.
type Ports struct {
	Ask      driving.AskService
	Settings driving.SettingsService
}

// Validate reports ErrMissingAskService when Ask is unset.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
