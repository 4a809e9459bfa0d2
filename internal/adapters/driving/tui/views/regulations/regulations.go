// Package regulations provides the view listing the regulations the
// index covers.
package regulations

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// View lists configured regulations.
type View struct {
	styles      *styles.Styles
	askService  driving.AskService
	regulations []domain.Regulation
	selected    int
	width       int
	height      int
	ready       bool
}

// NewView creates a new regulations view.
func NewView(s *styles.Styles, askService driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, askService: askService}
}

// Init loads the regulation list.
func (v *View) Init() tea.Cmd {
	v.Refresh()
	return nil
}

// Refresh reloads the regulation list from the ask service.
func (v *View) Refresh() {
	v.regulations = nil
	if v.askService != nil {
		v.regulations = v.askService.Regulations()
	}
	if v.selected >= len(v.regulations) {
		v.selected = max(len(v.regulations)-1, 0)
	}
}

// Update handles messages for the regulations view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.regulations)-1 {
				v.selected++
			}
		}
	}
	return v, nil
}

// View renders the regulation list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("规范列表"))
	b.WriteString("\n\n")

	if len(v.regulations) == 0 {
		b.WriteString(v.styles.Muted.Render("No regulations configured"))
		b.WriteString("\n")
	}
	for i, reg := range v.regulations {
		cursor := "  "
		style := v.styles.Normal
		if i == v.selected {
			cursor = "> "
			style = v.styles.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-6s %s", cursor, reg.Abbr, reg.Name)))
		b.WriteString("\n")
		if i == v.selected && reg.Path != "" {
			b.WriteString(v.styles.Muted.Render("    " + reg.Path))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Regulations returns the loaded regulations.
func (v *View) Regulations() []domain.Regulation {
	return v.regulations
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}
