package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Ensure Composer can use custom prompts.
var _ driven.PromptStoreAware = (*Composer)(nil)

// Composer generates a cited answer from retrieved candidates.
type Composer struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	temperature float64
}

// NewComposer creates a composer.
func NewComposer(llm driven.LLMService, settings *domain.Settings) *Composer {
	return &Composer{
		llm:         llm,
		temperature: settings.Models.AnswerTemperature,
	}
}

// SetPromptStore implements driven.PromptStoreAware.
func (c *Composer) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// Compose answers question from candidates. Without candidates the
// not-found answer is returned and nothing is generated.
func (c *Composer) Compose(ctx context.Context, question string, candidates []domain.RetrievedCandidate) (*domain.Answer, error) {
	if len(candidates) == 0 {
		return &domain.Answer{
			Question:   question,
			Text:       domain.NotFoundAnswer,
			References: []domain.RetrievedCandidate{},
			NotFound:   true,
		}, nil
	}
	if c.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	prompt := BuildAnswerPrompt(c.template(), candidates, question)
	text, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: c.temperature})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question:   question,
		Text:       text,
		References: candidates,
	}, nil
}

func (c *Composer) template() string {
	if c.promptStore != nil {
		if t, err := c.promptStore.Load(driven.PromptAnswer); err == nil && t != "" {
			return t
		}
	}
	return domain.AnswerTemplate
}

// BuildContext renders the candidates as labelled excerpts.
func BuildContext(candidates []domain.RetrievedCandidate) string {
	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "【规范名称：%s | 条文编号：%s】\n%s\n\n", c.SpecName, c.ArticleID, c.Content)
	}
	return b.String()
}

// BuildAnswerPrompt fills template with the rendered context and the question.
func BuildAnswerPrompt(template string, candidates []domain.RetrievedCandidate, question string) string {
	return fmt.Sprintf(template, BuildContext(candidates), question)
}
