// Package messages defines the Bubbletea messages exchanged between the
// TUI views and the app.
package messages

import (
	"github.com/custodia-labs/regula/internal/core/domain"
)

// ViewType identifies a screen of the TUI.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewAsk
	ViewRegulations
	ViewSettings
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:        "menu",
	ViewAsk:         "ask",
	ViewRegulations: "regulations",
	ViewSettings:    "settings",
	ViewHelp:        "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged asks the app to switch screens.
type ViewChanged struct {
	View ViewType
}

// AskCompleted carries the answer, or the error, for Question.
type AskCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// SettingsLoaded carries the settings read for the settings view.
type SettingsLoaded struct {
	Settings *domain.Settings
	Err      error
}

// SettingSaved reports the outcome of writing one settings key.
type SettingSaved struct {
	Key string
	Err error
}

// ErrorOccurred reports a failure outside the regular result messages.
type ErrorOccurred struct {
	Err error
}

// Quit asks the app to exit.
type Quit struct{}
