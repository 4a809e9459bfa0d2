package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".regula", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, f := range []string{"query_expand.txt", "answer.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_Defaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	expand, err := store.Load(driven.PromptQueryExpand)
	require.NoError(t, err)
	assert.Equal(t, domain.QueryExpandTemplate, expand)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerTemplate, answer)

	rendered := fmt.Sprintf(answer, "【规范名称：X | 条文编号：1.0.1】\n内容\n\n", "问题？")
	assert.Contains(t, rendered, "内容")
	assert.Contains(t, rendered, "问题：\n问题？")
	assert.NotContains(t, rendered, "%!")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "关键词：%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "query_expand.txt"), []byte("\n  "+custom+"  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQueryExpand)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)

	// Existing files are not overwritten by initialisation
	data, err := os.ReadFile(filepath.Join(dir, "query_expand.txt"))
	require.NoError(t, err)
	assert.Equal(t, "\n  "+custom+"  \n", string(data))
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptAnswer)
	require.NoError(t, os.Remove(filepath.Join(dir, "answer.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerTemplate, prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptQueryExpand)
	require.NoError(t, err)

	path := filepath.Join(dir, "query_expand.txt")
	require.NoError(t, os.WriteFile(path, []byte("modified: %s"), 0600))

	cached, err := store.Load(driven.PromptQueryExpand)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptQueryExpand)
	require.NoError(t, err)
	assert.Equal(t, "modified: %s", fresh)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerTemplate, prompt)

	_, err = store.Load("unknown")
	assert.Error(t, err)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptQueryExpand)
			assert.NoError(t, err)
			results[i] = prompt
		}(i)
	}
	wg.Wait()

	for _, prompt := range results {
		assert.Equal(t, domain.QueryExpandTemplate, prompt)
	}
}

func TestPromptStore_Load_IgnoresMalformedTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte("只有一个占位符：%s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerTemplate, prompt)
}

func TestPromptStore_Load_UnknownPromptFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte("总结：%s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load("summary")
	require.NoError(t, err)
	assert.Equal(t, "总结：%s", prompt)
}

func TestCountVerbs(t *testing.T) {
	assert.Equal(t, 0, countVerbs("100%% 覆盖"))
	assert.Equal(t, 1, countVerbs("问题：%s"))
	assert.Equal(t, 2, countVerbs("%s\n\n%s，占比 50%%"))
}
