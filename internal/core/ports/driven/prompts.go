package driven

// Prompt names understood by every PromptStore.
const (
	PromptQueryExpand = "query_expand" // one %s: the question
	PromptAnswer      = "answer"       // %s excerpts, then %s question
)

// PromptStore returns prompt templates by name.
type PromptStore interface {
	Load(name string) (string, error)
	// Reload drops cached templates.
	Reload()
}

// PromptStoreAware is implemented by services whose prompts can be
// overridden. Without a store they use the built-in templates.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
