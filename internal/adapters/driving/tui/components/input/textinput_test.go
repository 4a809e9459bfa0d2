package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 50, in.Width())
}

func TestQuestionInput_Typing(t *testing.T) {
	in := NewQuestionInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("净高")})

	assert.Equal(t, "净高", in.Value())
}

func TestQuestionInput_ResetAndBlur(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetValue("防火间距")

	in.Reset()
	in.Blur()

	assert.Empty(t, in.Value())
	assert.False(t, in.Focused())
}

func TestQuestionInput_View(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.Contains(t, in.View(), "请输入问题：")
}

func TestQuestionInput_SetWidthHasMinimum(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetWidth(10)

	assert.Equal(t, 10, in.Width())
	assert.Equal(t, 20, in.field.Width)
}

func TestQuestionInput_History(t *testing.T) {
	in := NewQuestionInput(nil)
	in.Remember("居室净高？")
	in.Remember("  ")
	in.Remember("防火间距？")
	in.Remember("防火间距？")

	assert.Equal(t, []string{"居室净高？", "防火间距？"}, in.History())

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, "防火间距？", in.Value())

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, "居室净高？", in.Value())

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Empty(t, in.Value())
}

func TestQuestionInput_HistoryIsBounded(t *testing.T) {
	in := NewQuestionInput(nil)
	for i := range historySize + 5 {
		in.Remember(string(rune('a' + i%26)) + string(rune('0'+i/26)))
	}

	assert.Len(t, in.History(), historySize)
}
