package segmenter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/core/domain"
)

func segment(t *testing.T, text string) *domain.Segmentation {
	t.Helper()
	res, err := New(nil).Segment(context.Background(), text)
	require.NoError(t, err)
	return res
}

func TestSegment_ArticleTableNote(t *testing.T) {
	text := "===== 第5章 宿舍 =====\n\n" +
		"5.1.1 宿舍居室应有天然采光。\n\n" +
		"5.1.2 居室净高不应低于2.60m。\n\n" +
		"===== 表格：表5.1.2 居室面积 =====\n类型 | 面积\n\n" +
		"注：表中数值为最小值。\n\n" +
		"5.1.3 走廊宽度。"

	res := segment(t, text)

	require.Len(t, res.Records, 5)
	assert.Equal(t, domain.Article{Number: "5.1.1", Text: "5.1.1 宿舍居室应有天然采光。"}, res.Records[0])
	assert.Equal(t, "5.1.2", res.Records[1].ID())

	table, ok := res.Records[2].(domain.Table)
	require.True(t, ok)
	assert.Equal(t, "5.1.2", table.Number)
	assert.Equal(t, "table_5.1.2", table.ID())

	note, ok := res.Records[3].(domain.Note)
	require.True(t, ok)
	assert.Equal(t, "note_5.1.2", note.ID())
	rel, _ := note.RelatedTo()
	assert.Equal(t, "table_5.1.2", rel)

	assert.Equal(t, "5.1.3", res.Records[4].ID())

	require.Len(t, res.Dropped, 1)
	assert.Equal(t, 0, res.Dropped[0].Index)
	assert.Equal(t, "===== 第5章 宿舍 =====", res.Dropped[0].Preview)
}

func TestSegment_NoteWithoutTableDropped(t *testing.T) {
	res := segment(t, "5.1.1 条文。\n\n注：孤立的注释。")

	require.Len(t, res.Records, 1)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, 1, res.Dropped[0].Index)
}

func TestSegment_ArticleClosesTableContext(t *testing.T) {
	text := "===== 表格：表3.0.1 =====\nA\n\n3.0.2 条文。\n\n注：不属于表格。"
	res := segment(t, text)

	require.Len(t, res.Records, 2)
	assert.Equal(t, domain.RecordTable, res.Records[0].Type())
	assert.Equal(t, domain.RecordArticle, res.Records[1].Type())
	assert.Len(t, res.Dropped, 1)
}

func TestSegment_NewTableReplacesContext(t *testing.T) {
	text := "===== 表格：表3.0.1 =====\nA\n\n===== 表格：表3.0.2 =====\nB\n\n注：第二张表。\n\n注：仍属第二张表。"
	res := segment(t, text)

	require.Len(t, res.Records, 4)
	assert.Equal(t, "note_3.0.2", res.Records[2].ID())
	assert.Equal(t, "note_3.0.2_2", res.Records[3].ID())
}

func TestSegment_NotesUnderOneTableGetDistinctIDs(t *testing.T) {
	text := "===== 表格：表5.1.2 居室面积 =====\n类型 | 面积\n\n" +
		"注：1 表中数值为最小值。\n\n" +
		"注：2 走廊面积不计入。\n\n" +
		"===== 表格：表5.1.3 =====\nA\n\n" +
		"注：新表的注。"
	res := segment(t, text)

	require.Len(t, res.Records, 5)
	ids := make([]string, len(res.Records))
	for i, r := range res.Records {
		ids[i] = r.ID()
	}
	assert.Equal(t, []string{"table_5.1.2", "note_5.1.2", "note_5.1.2_2", "table_5.1.3", "note_5.1.3"}, ids)

	for _, r := range res.Records[1:3] {
		rel, ok := r.RelatedTo()
		assert.True(t, ok)
		assert.Equal(t, "table_5.1.2", rel)
	}
}

func TestSegment_ArticleNumbering(t *testing.T) {
	tests := []struct {
		name    string
		para    string
		id      string
		dropped bool
	}{
		{name: "three part", para: "4.2.10 条文", id: "4.2.10"},
		{name: "letter suffix", para: "3.0.4A 条文", id: "3.0.4A"},
		{name: "section heading", para: "5.1 一般规定", dropped: true},
		{name: "lowercase suffix ignored", para: "3.0.4a 条文", id: "3.0.4"},
		{name: "leading text", para: "第3.0.4条", dropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := segment(t, tt.para)
			if tt.dropped {
				assert.Empty(t, res.Records)
				assert.Len(t, res.Dropped, 1)
				return
			}
			require.Len(t, res.Records, 1)
			assert.Equal(t, tt.id, res.Records[0].ID())
		})
	}
}

func TestSegment_Preview(t *testing.T) {
	long := strings.Repeat("字", 60)
	res := segment(t, long)

	require.Len(t, res.Dropped, 1)
	assert.Equal(t, strings.Repeat("字", previewLength)+"...", res.Dropped[0].Preview)
}

func TestSegment_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Segment(ctx, "5.1.1 条文")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("\n\n  a  \n\n\n\nb\nc\n\n   \n\n")
	assert.Equal(t, []string{"a", "b\nc"}, got)
}
