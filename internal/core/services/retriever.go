package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/logger"
)

// Ensure Retriever can use custom prompts.
var _ driven.PromptStoreAware = (*Retriever)(nil)

// Retriever finds the regulation chunks relevant to a question.
type Retriever struct {
	llm         driven.LLMService
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	promptStore driven.PromptStore
	metrics     driven.Metrics

	nResults    int
	topK        int
	threshold   float64
	temperature float64
}

// NewRetriever creates a retriever with the retrieval settings.
func NewRetriever(
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	settings *domain.Settings,
) *Retriever {
	return &Retriever{
		llm:         llm,
		embedder:    embedder,
		index:       index,
		metrics:     driven.NopMetrics{},
		nResults:    settings.Retrieval.NResults,
		topK:        settings.Retrieval.TopK,
		threshold:   settings.Retrieval.SimilarityThreshold,
		temperature: settings.Models.QueryExpandTemperature,
	}
}

// SetPromptStore implements driven.PromptStoreAware.
func (r *Retriever) SetPromptStore(store driven.PromptStore) {
	r.promptStore = store
}

// SetMetrics sets the metrics sink.
func (r *Retriever) SetMetrics(m driven.Metrics) {
	if m != nil {
		r.metrics = m
	}
}

// Retrieve expands the question with generated keywords, embeds it and
// returns at most topK candidates at or above the similarity threshold,
// most similar first.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.RetrievedCandidate, error) {
	if r.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if r.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	expanded, err := r.Expand(ctx, question)
	if err != nil {
		return nil, err
	}

	vec, err := r.embedder.Embed(ctx, expanded)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Query(ctx, vec, r.nResults)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	candidates := FilterHits(hits, r.threshold, r.topK)
	logger.Debug("Retrieved %d of %d hits for %q", len(candidates), len(hits), question)
	r.metrics.ObserveCandidates(len(candidates))
	return candidates, nil
}

// Expand returns the question followed by generated retrieval keywords.
func (r *Retriever) Expand(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(r.template(), question)
	keywords, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: r.temperature})
	if err != nil {
		return "", fmt.Errorf("expand query: %w", err)
	}
	expanded := question + " " + strings.TrimSpace(keywords)
	logger.Debug("Expanded query: %s", expanded)
	return expanded, nil
}

func (r *Retriever) template() string {
	if r.promptStore != nil {
		if t, err := r.promptStore.Load(driven.PromptQueryExpand); err == nil && t != "" {
			return t
		}
	}
	return domain.QueryExpandTemplate
}

// Similarity converts a cosine distance to a similarity.
// Distances above 1 map to 0.
func Similarity(distance float64) float64 {
	if distance <= 1 {
		return 1 - distance
	}
	return 0
}

// FilterHits scores hits, drops those below threshold and keeps the
// topK most similar. Hits with equal similarity keep their index order.
func FilterHits(hits []driven.VectorHit, threshold float64, topK int) []domain.RetrievedCandidate {
	candidates := make([]domain.RetrievedCandidate, 0, len(hits))
	for _, h := range hits {
		s := Similarity(h.Distance)
		if s < threshold {
			continue
		}
		candidates = append(candidates, domain.RetrievedCandidate{
			Similarity: s,
			ArticleID:  h.Metadata.ArticleID,
			SpecName:   h.Metadata.SpecName,
			SpecAbbr:   h.Metadata.SpecAbbr,
			Content:    h.Content,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if topK >= 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}
