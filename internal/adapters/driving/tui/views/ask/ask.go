// Package ask provides the question answering view for the TUI.
package ask

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// View is the ask view: a question input, the answer and its references.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	refs      *list.ReferenceList
	statusbar *status.Bar
	spinner   spinner.Model

	askService driving.AskService
	ctx        context.Context

	answer     *domain.Answer
	asking     bool
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = browsing references
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, askService driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		refs:       list.NewReferenceList(s),
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		askService: askService,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.asking = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case spinner.TickMsg:
		if !v.asking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Keys are ignored while an answer is being composed.
	if v.asking {
		return v, nil
	}

	if msg.Type == tea.KeyEnter && v.focusInput {
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			v.statusbar.SetState(status.StateReady)
			v.statusbar.SetMessage("请输入问题")
			return v, nil
		}
		v.input.Remember(question)
		v.asking = true
		v.err = nil
		v.statusbar.SetMessage("")
		v.statusbar.SetState(status.StateAsking)
		v.input.Blur()
		return v, tea.Batch(v.spinner.Tick, v.performAsk(question))
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuestion) {
		v.startNewQuestion()
		return v, v.input.Focus()
	}

	v.refs, _ = v.refs.Update(msg)
	return v, nil
}

// performAsk runs the pipeline for question off the update loop.
func (v *View) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		if v.askService == nil {
			return messages.ErrorOccurred{Err: ErrNoAskService}
		}
		answer, err := v.askService.Ask(v.ctx, question)
		return messages.AskCompleted{Question: question, Answer: answer, Err: err}
	}
}

// handleAskCompleted shows the answer or the error.
func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	v.asking = false
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.refs.SetReferences(msg.Answer.References)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetReferenceCount(len(msg.Answer.References))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) startNewQuestion() {
	v.focusInput = true
	v.input.SetValue("")
	v.answer = nil
	v.refs.SetReferences(nil)
	v.statusbar.Clear()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("建筑规范智能问答系统"), "")
	sections = append(sections, v.input.View(), "")

	if v.asking {
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("正在检索与生成回答..."), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		body := v.styles.Answer.Width(max(v.width-4, 20)).Render(v.answer.Text)
		sections = append(sections, v.styles.Subtitle.Render("回答"), body, "")
		sections = append(sections, v.refs.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.refs.SetDimensions(width, height-14)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the current question text.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the question text.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Asking returns whether an answer is being composed.
func (v *View) Asking() bool {
	return v.asking
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset resets the view to input mode.
func (v *View) Reset() {
	v.asking = false
	v.err = nil
	v.startNewQuestion()
	v.input.Focus()
}
