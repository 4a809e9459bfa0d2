package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// Check pings the embedding and generation services, returning every
// failure joined. Each ping is bounded by pingTimeout.
func (r *InitResult) Check(ctx context.Context) error {
	var errs []error

	if r.EmbeddingService == nil {
		errs = append(errs, domain.ErrEmbeddingUnavailable)
	} else if err := ping(ctx, r.EmbeddingService.Ping); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s unreachable: %w",
			domain.ErrEmbeddingUnavailable, r.EmbeddingService.ModelName(), err))
	}

	if r.LLMService == nil {
		errs = append(errs, domain.ErrLLMUnavailable)
	} else if err := ping(ctx, r.LLMService.Ping); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s unreachable: %w",
			domain.ErrLLMUnavailable, r.LLMService.ModelName(), err))
	}

	return errors.Join(errs...)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}
