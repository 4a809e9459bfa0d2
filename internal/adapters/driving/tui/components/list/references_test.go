package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/core/domain"
)

func testReferences() []domain.RetrievedCandidate {
	return []domain.RetrievedCandidate{
		{Similarity: 0.8234, ArticleID: "5.1.2", SpecName: "GB50025_2022_宿舍、旅馆建筑项目规范", SpecAbbr: "sslg", Content: "居室净高不应低于2.60m。"},
		{Similarity: 0.61, ArticleID: "3.4.1", SpecName: "GB50016_2014_建筑设计防火规范", SpecAbbr: "jzsj", Content: "厂房之间的防火间距不应小于表3.4.1的规定。"},
	}
}

func TestFormatSimilarity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.8234, "82.34%"},
		{0.6, "60.00%"},
		{1, "100.00%"},
		{0, "0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSimilarity(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "居室净高", Truncate("居室净高", 10))
	assert.Equal(t, "居室净…", Truncate("居室净高不应低于", 4))
	assert.Equal(t, "a b", Truncate("a\nb", 10))
}

func TestReferenceList_EmptyView(t *testing.T) {
	l := NewReferenceList(nil)

	assert.Contains(t, l.View(), "无参考条文")
	assert.Nil(t, l.SelectedReference())
}

func TestReferenceList_ViewShowsPercentages(t *testing.T) {
	l := NewReferenceList(nil)
	l.SetReferences(testReferences())

	view := l.View()

	assert.Contains(t, view, "参考条文 (2)")
	assert.Contains(t, view, "条文编号：5.1.2")
	assert.Contains(t, view, "相似度：82.34%")
	assert.Contains(t, view, "相似度：61.00%")
}

func TestReferenceList_Navigation(t *testing.T) {
	l := NewReferenceList(nil)
	l.SetReferences(testReferences())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, l.Selected())

	ref := l.SelectedReference()
	require.NotNil(t, ref)
	assert.Equal(t, "5.1.2", ref.ArticleID)
}

func TestReferenceList_SetReferencesResetsSelection(t *testing.T) {
	l := NewReferenceList(nil)
	l.SetReferences(testReferences())
	l.MoveDown()

	l.SetReferences(testReferences()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}
