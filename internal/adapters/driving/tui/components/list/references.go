// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/regula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/regula/internal/core/domain"
)

// FormatSimilarity renders a similarity in [0, 1] as a percentage with two decimals.
func FormatSimilarity(s float64) string {
	return fmt.Sprintf("%.2f%%", s*100)
}

// ReferenceList displays the articles an answer was grounded on.
type ReferenceList struct {
	refs     []domain.RetrievedCandidate
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewReferenceList creates a new reference list component.
func NewReferenceList(s *styles.Styles) *ReferenceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ReferenceList{
		styles: s,
		width:  80,
		height: 12,
	}
}

// Init initialises the list.
func (r *ReferenceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ReferenceList) Update(msg tea.Msg) (*ReferenceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *ReferenceList) View() string {
	if len(r.refs) == 0 {
		return r.styles.Muted.Render("无参考条文")
	}

	lines := make([]string, 0, len(r.refs)*4+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("参考条文 (%d)", len(r.refs))), "")

	// Each reference takes four lines.
	visible := (r.height - 2) / 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.refs) {
		end = len(r.refs)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderReference(i, &r.refs[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ReferenceList) renderReference(index int, ref *domain.RetrievedCandidate) string {
	indicator := "  "
	nameStyle := r.styles.Normal
	if index == r.selected {
		indicator = "> "
		nameStyle = r.styles.Selected
	}

	name := nameStyle.Render(indicator + "规范名称：" + ref.SpecName)
	article := r.styles.Normal.Render("    条文编号：" + ref.ArticleID)
	similarity := r.styles.Similarity(ref.Similarity).Render("    相似度：" + FormatSimilarity(ref.Similarity))
	preview := r.styles.Muted.Render("    " + Truncate(ref.Content, r.width-6))

	return strings.Join([]string{name, article, similarity, preview}, "\n")
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n < 4 {
		n = 4
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetReferences replaces the list contents.
func (r *ReferenceList) SetReferences(refs []domain.RetrievedCandidate) {
	r.refs = refs
	r.selected = 0
}

// References returns the current references.
func (r *ReferenceList) References() []domain.RetrievedCandidate {
	return r.refs
}

// Selected returns the index of the selected reference.
func (r *ReferenceList) Selected() int {
	return r.selected
}

// SelectedReference returns the selected reference, or nil if none.
func (r *ReferenceList) SelectedReference() *domain.RetrievedCandidate {
	if r.selected < 0 || r.selected >= len(r.refs) {
		return nil
	}
	return &r.refs[r.selected]
}

// MoveUp moves selection up.
func (r *ReferenceList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ReferenceList) MoveDown() {
	if r.selected < len(r.refs)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ReferenceList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of references.
func (r *ReferenceList) Count() int {
	return len(r.refs)
}
