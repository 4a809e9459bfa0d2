package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
	"github.com/custodia-labs/regula/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Ask outcome labels reported to metrics.
const (
	AskStatusOK       = "ok"
	AskStatusNotFound = "not_found"
	AskStatusTimeout  = "timeout"
	AskStatusError    = "error"
)

// AskService answers questions by retrieval followed by composition.
type AskService struct {
	retriever   *Retriever
	composer    *Composer
	regulations []domain.Regulation
	timeout     time.Duration
	metrics     driven.Metrics
	now         func() time.Time
}

// NewAskService creates an ask service.
func NewAskService(retriever *Retriever, composer *Composer, settings *domain.Settings) *AskService {
	return &AskService{
		retriever:   retriever,
		composer:    composer,
		regulations: settings.Regulations,
		timeout:     settings.AskTimeout,
		metrics:     driven.NopMetrics{},
		now:         time.Now,
	}
}

// SetMetrics sets the metrics sink for the service and its retriever.
func (s *AskService) SetMetrics(m driven.Metrics) {
	if m == nil {
		return
	}
	s.metrics = m
	s.retriever.SetMetrics(m)
}

// SetPromptStore passes the prompt store to the retriever and composer.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.retriever.SetPromptStore(store)
	s.composer.SetPromptStore(store)
}

// Ask answers question within the configured deadline.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	start := s.now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	answer, err := s.answer(ctx, question)
	d := s.now().Sub(start)

	switch {
	case err == nil && answer.NotFound:
		s.metrics.ObserveAsk(AskStatusNotFound, d)
	case err == nil:
		s.metrics.ObserveAsk(AskStatusOK, d)
	case errors.Is(err, context.DeadlineExceeded):
		s.metrics.ObserveAsk(AskStatusTimeout, d)
		return nil, fmt.Errorf("%w: no answer within %s: %w", domain.ErrProviderTimeout, s.timeout, err)
	default:
		s.metrics.ObserveAsk(AskStatusError, d)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Answered %q with %d references in %s", question, len(answer.References), d)
	return answer, nil
}

func (s *AskService) answer(ctx context.Context, question string) (*domain.Answer, error) {
	candidates, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return s.composer.Compose(ctx, question, candidates)
}

// Regulations returns the configured regulations.
func (s *AskService) Regulations() []domain.Regulation {
	out := make([]domain.Regulation, len(s.regulations))
	copy(out, s.regulations)
	return out
}
