// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Similarity bands used to colour reference scores.
const (
	StrongMatch = 0.8
	WeakMatch   = 0.65
)

// Theme is the colour palette.
type Theme struct {
	Accent    lipgloss.Color // titles and the selection bar
	Highlight lipgloss.Color // section headers
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Panel     lipgloss.Color // status bar background
	Outline   lipgloss.Color

	Good lipgloss.Color
	Fair lipgloss.Color
	Bad  lipgloss.Color
}

// DefaultTheme returns a blueprint-like palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#3B82F6"),
		Highlight: lipgloss.Color("#F59E0B"),
		Text:      lipgloss.Color("#E5E7EB"),
		Dim:       lipgloss.Color("#6B7280"),
		Panel:     lipgloss.Color("#111827"),
		Outline:   lipgloss.Color("#374151"),
		Good:      lipgloss.Color("#34D399"),
		Fair:      lipgloss.Color("#FBBF24"),
		Bad:       lipgloss.Color("#F87171"),
	}
}

// Styles are the rendered styles shared by all views.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// InputField frames the question input.
	InputField lipgloss.Style
	// Answer frames the generated answer text.
	Answer    lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles builds styles from theme, falling back to DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Outline).
		Padding(0, 1)

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Dim),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Background(theme.Accent),

		Error:   lipgloss.NewStyle().Foreground(theme.Bad),
		Success: lipgloss.NewStyle().Foreground(theme.Good),
		Warning: lipgloss.NewStyle().Foreground(theme.Fair),

		InputField: framed,
		Answer:     framed.BorderForeground(theme.Highlight),
		StatusBar:  lipgloss.NewStyle().Foreground(theme.Dim).Background(theme.Panel).Padding(0, 1),
		Help:       lipgloss.NewStyle().Foreground(theme.Dim).Italic(true),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Similarity returns the style for a reference score.
func (s *Styles) Similarity(score float64) lipgloss.Style {
	switch {
	case score >= StrongMatch:
		return s.Success
	case score >= WeakMatch:
		return s.Warning
	default:
		return s.Muted
	}
}
