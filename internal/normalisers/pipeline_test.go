package normalisers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/normalisers/regtext"
)

type upperPass struct{}

func (upperPass) Name() string { return "upper" }
func (upperPass) Normalise(s string) string { return strings.ToUpper(s) }

type suffixPass struct{ suffix string }

func (p suffixPass) Name() string { return "suffix" }
func (p suffixPass) Normalise(s string) string { return s + p.suffix }

func TestPipeline_Order(t *testing.T) {
	p := NewPipeline(upperPass{}, suffixPass{suffix: "!"})

	assert.Equal(t, []string{"upper", "suffix"}, p.Names())
	assert.Equal(t, "ABC!", p.Normalise("abc"))
}

func TestPipeline_Empty(t *testing.T) {
	p := NewPipeline()
	assert.Equal(t, "unchanged", p.Normalise("unchanged"))
}

func TestPipeline_NormaliseFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.txt")
	out := filepath.Join(dir, "processed", "out.txt")
	raw := "2.0.1 总则\n本规范适用于宿舍。\n===== 表格：表2.0.1 =====\nA|B\n注：说明。\n"
	require.NoError(t, os.WriteFile(in, []byte(raw), 0600))

	p := NewPipeline(regtext.Passes(map[string]string{"2": "===== 第2章 基本规定 ====="})...)
	require.NoError(t, p.NormaliseFile(context.Background(), in, out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"===== 第2章 基本规定 =====\n\n2.0.1 总则 本规范适用于宿舍。\n\n===== 表格：表2.0.1 =====\nA|B\n\n注：说明。",
		string(got))
}

func TestPipeline_NormaliseFile_MissingInput(t *testing.T) {
	p := NewPipeline()
	err := p.NormaliseFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "out.txt")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestPipeline_NormaliseFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPipeline().NormaliseFile(ctx, "in.txt", "out.txt")
	assert.ErrorIs(t, err, context.Canceled)
}
