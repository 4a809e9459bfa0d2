// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// Field is one editable settings key.
type Field struct {
	Label string
	Key   string
	Value func(*domain.Settings) string
}

// Fields lists the keys the view can edit, in display order.
func Fields() []Field {
	return []Field{
		{"Generation model", "models.generation_model", func(s *domain.Settings) string { return s.Models.GenerationModel }},
		{"Embedding model", "models.embedding_model", func(s *domain.Settings) string { return s.Models.EmbeddingModel }},
		{"Nearest neighbours", "retrieval.n_results", func(s *domain.Settings) string { return strconv.Itoa(s.Retrieval.NResults) }},
		{"Top K", "retrieval.top_k", func(s *domain.Settings) string { return strconv.Itoa(s.Retrieval.TopK) }},
		{"Similarity threshold", "retrieval.similarity_threshold", func(s *domain.Settings) string {
			return strconv.FormatFloat(s.Retrieval.SimilarityThreshold, 'f', -1, 64)
		}},
		{"Answer temperature", "models.answer_temperature", func(s *domain.Settings) string {
			return strconv.FormatFloat(s.Models.AnswerTemperature, 'f', -1, 64)
		}},
	}
}

// View is the settings view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.Settings
	fields   []Field
	err      error
	notice   string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	in := textinput.New()
	in.CharLimit = 128

	return &View{
		styles:          s,
		settingsService: settingsService,
		fields:          Fields(),
		input:           in,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) saveSetting(key, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingSaved{Key: key, Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key + ". Takes effect on next start."
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.editing {
		switch msg.String() {
		case keyEsc:
			v.editing = false
			v.input.Blur()
			return v, nil
		case keyEnter:
			v.editing = false
			v.input.Blur()
			value := strings.TrimSpace(v.input.Value())
			return v, v.saveSetting(v.fields[v.selected].Key, value)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.fields)-1 {
			v.selected++
		}
	case keyEnter:
		if v.settings == nil {
			return v, nil
		}
		v.editing = true
		v.notice = ""
		v.input.SetValue(v.fields[v.selected].Value(v.settings))
		return v, v.input.Focus()
	}
	return v, nil
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settingsService != nil {
		b.WriteString(v.styles.Muted.Render("Config: " + v.settingsService.ConfigPath()))
		b.WriteString("\n\n")
	}

	if v.settings != nil {
		for i, f := range v.fields {
			cursor := "  "
			style := v.styles.Normal
			if i == v.selected {
				cursor = "> "
				style = v.styles.Selected
			}
			value := f.Value(v.settings)
			if v.editing && i == v.selected {
				value = v.input.View()
			}
			b.WriteString(style.Render(fmt.Sprintf("%s%-22s", cursor, f.Label)))
			b.WriteString(" ")
			b.WriteString(value)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("[Enter] Save  [Esc] Cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit  [Esc] Back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = max(width-30, 10)
}

// Reset returns the view to its initial state.
func (v *View) Reset() {
	v.selected = 0
	v.editing = false
	v.err = nil
	v.notice = ""
	v.input.Blur()
}

// Editing returns whether a field is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Selected returns the index of the selected field.
func (v *View) Selected() int {
	return v.selected
}
