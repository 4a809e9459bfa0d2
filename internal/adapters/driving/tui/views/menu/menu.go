// Package menu renders the start screen of the TUI.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Quit entries exit instead of switching view.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool
}

var defaultItems = []Item{
	{Label: "问答", View: messages.ViewAsk},
	{Label: "规范列表", View: messages.ViewRegulations},
	{Label: "Settings", View: messages.ViewSettings},
	{Label: "Help", View: messages.ViewHelp},
	{Label: "Quit", Quit: true},
}

// View is the start menu.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item
	cursor int

	width, height int
	ready         bool
}

// NewView returns the menu with the cursor on the first entry.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keys:   km,
		items:  append([]Item(nil), defaultItems...),
		width:  80,
		height: 24,
	}
}

// Init implements the view contract; the menu needs no start-up work.
func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor or acts on the selected entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case keymap.Matches(k, v.keys.Down):
		v.cursor = min(v.cursor+1, len(v.items)-1)
	case keymap.Matches(k, v.keys.Select):
		return v.choose(v.items[v.cursor])
	case keymap.Matches(k, v.keys.Help):
		return v.choose(Item{View: messages.ViewHelp})
	case keymap.Matches(k, v.keys.Quit):
		return tea.Quit
	}
	return nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the title, the entries and the key hints.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("regula") + "\n\n")
	b.WriteString(v.styles.Subtitle.Render("建筑规范智能问答系统") + "\n\n")
	for i, item := range v.items {
		if i == v.cursor {
			b.WriteString("> " + v.styles.Selected.Render(item.Label) + "\n")
			continue
		}
		b.WriteString("  " + v.styles.Normal.Render(item.Label) + "\n")
	}
	b.WriteString("\n" + v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [?] Help  [q] Quit"))
	return b.String()
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.cursor }

// Items returns the entries in display order.
func (v *View) Items() []Item { return v.items }
