package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/messages"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView_Items(t *testing.T) {
	v := NewView(nil, nil)

	items := v.Items()

	require.Len(t, items, 5)
	assert.Equal(t, messages.ViewAsk, items[0].View)
	assert.Equal(t, messages.ViewRegulations, items[1].View)
	assert.Equal(t, messages.ViewSettings, items[2].View)
	assert.Equal(t, messages.ViewHelp, items[3].View)
	assert.True(t, items[4].Quit)
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, nil)

	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 24)

	view := v.View()

	assert.Contains(t, view, "regula")
	assert.Contains(t, view, "建筑规范智能问答系统")
	assert.Contains(t, view, "问答")
	assert.Contains(t, view, "规范列表")
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil, nil)

	v, _ = v.Update(keyMsg("k"))
	assert.Equal(t, 0, v.Selected())

	v, _ = v.Update(keyMsg("j"))
	assert.Equal(t, 1, v.Selected())

	for range 10 {
		v, _ = v.Update(keyMsg("j"))
	}
	assert.Equal(t, 4, v.Selected())
}

func TestView_SelectChangesView(t *testing.T) {
	v := NewView(nil, nil)
	v, _ = v.Update(keyMsg("j"))

	_, cmd := v.Update(keyMsg("enter"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewRegulations}, cmd())
}

func TestView_QuitItem(t *testing.T) {
	v := NewView(nil, nil)
	for range 4 {
		v, _ = v.Update(keyMsg("j"))
	}

	_, cmd := v.Update(keyMsg("enter"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_HelpKey(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(keyMsg("?"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())
}

func TestView_QuitKey(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(keyMsg("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
