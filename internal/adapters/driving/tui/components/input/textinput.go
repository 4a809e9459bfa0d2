// Package input holds the question field of the ask view.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
)

const (
	placeholder  = "例如：宿舍居室的净高有什么要求？"
	maxRunes     = 500
	minWidth     = 20
	labelPadding = 20
	historySize  = 50
)

// QuestionInput is a single-line question field that remembers the
// questions already asked. ctrl+p and ctrl+n step through them.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	history []string
	recall  int // index into history while stepping; len(history) when not
}

// NewQuestionInput returns a focused, empty field.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = maxRunes
	f.Width = 50
	f.Focus()
	return &QuestionInput{field: f, styles: s, width: 50}
}

// Init starts the cursor blink.
func (q *QuestionInput) Init() tea.Cmd { return textinput.Blink }

// Update handles history keys and passes the rest to the field.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && q.field.Focused() {
		switch k.Type {
		case tea.KeyCtrlP:
			q.step(-1)
			return q, nil
		case tea.KeyCtrlN:
			q.step(1)
			return q, nil
		}
	}
	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

func (q *QuestionInput) step(delta int) {
	if len(q.history) == 0 {
		return
	}
	q.recall = min(max(q.recall+delta, 0), len(q.history))
	if q.recall == len(q.history) {
		q.field.SetValue("")
		return
	}
	q.field.SetValue(q.history[q.recall])
	q.field.CursorEnd()
}

// Remember appends a submitted question to the history. Blank questions
// and repeats of the last entry are ignored.
func (q *QuestionInput) Remember(question string) {
	question = strings.TrimSpace(question)
	if question != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != question) {
		q.history = append(q.history, question)
		if len(q.history) > historySize {
			q.history = q.history[len(q.history)-historySize:]
		}
	}
	q.recall = len(q.history)
}

// History returns the remembered questions, oldest first.
func (q *QuestionInput) History() []string { return q.history }

// View renders the label and the field side by side.
func (q *QuestionInput) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		q.styles.Title.Render("请输入问题："),
		q.styles.InputField.Render(q.field.View()),
	)
}

// Value returns the raw text.
func (q *QuestionInput) Value() string { return q.field.Value() }

// SetValue replaces the text.
func (q *QuestionInput) SetValue(value string) { q.field.SetValue(value) }

// Focus focuses the field.
func (q *QuestionInput) Focus() tea.Cmd { return q.field.Focus() }

// Blur unfocuses the field.
func (q *QuestionInput) Blur() { q.field.Blur() }

// Focused reports whether the field has focus.
func (q *QuestionInput) Focused() bool { return q.field.Focused() }

// SetWidth sizes the field to the terminal width minus the label.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.field.Width = max(width-labelPadding, minWidth)
}

// Width returns the terminal width last set.
func (q *QuestionInput) Width() int { return q.width }

// Reset clears the text and leaves history stepping.
func (q *QuestionInput) Reset() {
	q.field.Reset()
	q.recall = len(q.history)
}
