// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = (*KeyMap)(nil)

// KeyMap groups the bindings of the menu, ask and settings views.
type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Back        key.Binding
	Ask         key.Binding // submit the typed question
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	NewQuestion key.Binding // drop the answer and refocus the input
}

func binding(hint, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(hint, desc))
}

// DefaultKeyMap returns the bindings used by NewApp.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        binding("q", "quit", "q", "ctrl+c"),
		Help:        binding("?", "help", "?"),
		Back:        binding("esc", "back", "esc"),
		Ask:         binding("enter", "ask", "enter"),
		Up:          binding("↑/k", "up", "up", "k"),
		Down:        binding("↓/j", "down", "down", "j"),
		Select:      binding("enter", "select", "enter"),
		NewQuestion: binding("n", "new question", "n"),
	}
}

// ShortHelp lists the hints shown while a question is typed.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Back}
}

// AnswerHelp lists the hints shown under an answer.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Down, k.Back}
}

// FullHelp lists every binding in columns for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Ask, k.NewQuestion, k.Back},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr is one of the binding's keys.
func Matches(keyStr string, b key.Binding) bool {
	return slices.Contains(b.Keys(), keyStr)
}
