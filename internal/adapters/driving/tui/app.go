package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/views/regulations"
	"github.com/custodia-labs/regula/internal/adapters/driving/tui/views/settings"
)

const windowTitle = "regula - 建筑规范智能问答"

// App routes Bubbletea messages to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	menuView        *menu.View
	askView         *ask.View
	regulationsView *regulations.View
	settingsView    *settings.View

	currentView messages.ViewType
	err         error // last ask or view error

	width, height int
	ready         bool
}

var _ tea.Model = (*App)(nil)

// NewApp builds the view tree over the given ports. Ports.Ask is required.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingAskService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		keys:            km,
		help:            h,
		menuView:        menu.NewView(s, km),
		askView:         ask.NewView(s, km, ports.Ask),
		regulationsView: regulations.NewView(s, ports.Ask),
		settingsView:    settings.NewView(s, ports.Settings),
		currentView:     messages.ViewMenu,
	}, nil
}

// WithContext cancels pending questions once ctx is done.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle(windowTitle))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
	case messages.ViewChanged:
		return a, a.switchTo(msg.View)
	case messages.AskCompleted:
		var cmd tea.Cmd
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd
	case messages.SettingsLoaded, messages.SettingSaved:
		var cmd tea.Cmd
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd
	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView != messages.ViewAsk {
			return a, nil
		}
	case messages.Quit:
		return a, tea.Quit
	}
	return a, a.forward(msg)
}

// switchTo activates view and returns its start-up command.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewAsk:
		a.askView.Reset()
		return a.askView.Init()
	case messages.ViewRegulations:
		return a.regulationsView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	default:
		return nil
	}
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewRegulations:
		a.regulationsView, cmd = a.regulationsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if k, ok := msg.(tea.KeyMsg); ok && keymap.Matches(k.String(), a.keys.Back) {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewRegulations:
		return a.regulationsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.helpView()
	default:
		return a.menuView.View()
	}
}

func (a *App) helpView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Help"),
		"",
		a.help.FullHelpView(a.keys.FullHelp()),
		"",
		a.styles.Muted.Render("问答视图中直接输入问题，按 enter 提交；设置视图中按 enter 编辑与保存。"),
		"",
		a.styles.Help.Render("[esc] back to menu"),
	)
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType { return a.currentView }

// Err returns the last recorded error.
func (a *App) Err() error { return a.err }

// Ready reports whether a window size has been received.
func (a *App) Ready() bool { return a.ready }

// SetDimensions resizes the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	a.help.Width = width
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.regulationsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
