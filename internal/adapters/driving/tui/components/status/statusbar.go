// Package status renders the one-line bar under the ask view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
)

// State is the phase of the ask view shown on the left of the bar.
type State string

const (
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateAnswered State = "answered"
	StateError    State = "error"
	StateHelp     State = "help"
)

// Bar shows the ask phase on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	hints  help.Model

	state    State
	message  string
	refCount int
	width    int
}

// NewBar returns a ready bar 80 columns wide.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	h := help.New()
	h.ShortSeparator = " | "
	return &Bar{styles: s, keys: km, hints: h, state: StateReady, width: 80}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left, right := s.label(), s.hintLine()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) label() string {
	switch s.state {
	case StateAsking:
		return s.styles.Muted.Render("正在检索与生成回答...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateHelp:
		return s.styles.Normal.Render("Help")
	}
	switch {
	case s.message != "":
		return s.styles.Warning.Render(s.message)
	case s.refCount > 0:
		return s.styles.Normal.Render(fmt.Sprintf("%d references", s.refCount))
	default:
		return s.styles.Muted.Render("Ready")
	}
}

func (s *Bar) hintLine() string {
	var bindings []key.Binding
	if s.state == StateAnswered {
		bindings = s.keys.AnswerHelp()
	} else {
		bindings = s.keys.ShortHelp()
	}
	return s.hints.ShortHelpView(bindings)
}

// SetState changes the phase.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the phase.
func (s *Bar) State() State { return s.state }

// SetMessage sets the text shown instead of the default label.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the custom text.
func (s *Bar) Message() string { return s.message }

// SetReferenceCount records how many references the answer cites.
func (s *Bar) SetReferenceCount(count int) { s.refCount = count }

// ReferenceCount returns the cited reference count.
func (s *Bar) ReferenceCount() int { return s.refCount }

// SetWidth sets the rendered width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the rendered width.
func (s *Bar) Width() int { return s.width }

// Clear returns the bar to the ready state.
func (s *Bar) Clear() {
	s.state, s.message, s.refCount = StateReady, "", 0
}
