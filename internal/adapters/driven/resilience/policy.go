// Package resilience retries provider calls with bounded exponential backoff.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultMultiplier  = 1.0
	DefaultMinWait     = 2 * time.Second
	DefaultMaxWait     = 10 * time.Second
)

// Classification decides whether a failed call is repeated.
type Classification int

const (
	// Fatal errors are returned immediately.
	Fatal Classification = iota

	// Retryable errors are repeated until attempts run out.
	Retryable
)

// Policy configures retries for one decorated service.
type Policy struct {
	// MaxAttempts counts the first call; 1 disables retries.
	MaxAttempts int

	// Multiplier scales the exponential wait.
	Multiplier float64

	// MinWait and MaxWait clamp each wait.
	MinWait time.Duration
	MaxWait time.Duration

	// Classify decides whether an error is retried. Nil uses DefaultClassify.
	Classify func(error) Classification

	// OnRetry is called before each wait.
	OnRetry func(operation string, attempt int, err error, wait time.Duration)
}

// DefaultPolicy returns 3 attempts waiting between 2s and 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Multiplier:  DefaultMultiplier,
		MinWait:     DefaultMinWait,
		MaxWait:     DefaultMaxWait,
	}
}

// FromSettings builds a policy from the retry settings.
func FromSettings(s domain.RetrySettings) Policy {
	return Policy{
		MaxAttempts: s.MaxAttempts,
		Multiplier:  s.Multiplier,
		MinWait:     s.MinWait,
		MaxWait:     s.MaxWait,
	}
}

// Wait returns the pause after the given failed attempt, counted from 1:
// multiplier * 2^(attempt-1), clamped to [MinWait, MaxWait].
func (p Policy) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := time.Duration(p.Multiplier * math.Pow(2, float64(attempt-1)) * float64(time.Second))
	if wait < p.MinWait {
		wait = p.MinWait
	}
	if p.MaxWait > 0 && wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

func (p Policy) classify(err error) Classification {
	if p.Classify != nil {
		return p.Classify(err)
	}
	return DefaultClassify(err)
}

// DefaultClassify treats cancellation, rejected credentials and invalid
// requests as fatal. Timeouts, rate limits, server and network errors are
// retried, as are errors it does not recognise.
//
// Provider and transport errors are classified before context errors: an
// http.Client timeout also matches context.DeadlineExceeded, while the
// caller's own cancellation reaches here as a bare context error.
func DefaultClassify(err error) Classification {
	if err == nil {
		return Fatal
	}

	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		if perr.Temporary() {
			return Retryable
		}
		return Fatal
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return Retryable
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Fatal
	case errors.Is(err, domain.ErrAuthInvalid),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrMissingCredential):
		return Fatal
	}
	return Retryable
}

// Retrier runs operations under a policy.
type Retrier struct {
	policy  Policy
	log     *zap.Logger
	metrics driven.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier. A nil logger or metrics disables them.
func NewRetrier(policy Policy, log *zap.Logger, metrics driven.Metrics) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.MaxWait > 0 && policy.MaxWait < policy.MinWait {
		policy.MaxWait = policy.MinWait
	}
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &Retrier{
		policy:  policy,
		log:     log,
		metrics: metrics,
		sleep:   sleepContext,
	}
}

// Policy returns the effective policy.
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Do calls fn until it succeeds, fails fatally or attempts run out.
// The last error is returned wrapped with the attempt count.
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				r.log.Info("retry succeeded",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if r.policy.classify(lastErr) == Fatal {
			r.log.Debug("error is not retryable",
				zap.String("operation", operation),
				zap.Error(lastErr))
			return lastErr
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		wait := r.policy.Wait(attempt)
		r.log.Warn("provider call failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.policy.MaxAttempts),
			zap.Duration("wait", wait),
			zap.Error(lastErr))
		r.metrics.ObserveRetry(operation)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(operation, attempt, lastErr, wait)
		}

		if err := r.sleep(ctx, wait); err != nil {
			return fmt.Errorf("%s retry cancelled: %w", operation, err)
		}
	}

	r.log.Warn("retries exhausted",
		zap.String("operation", operation),
		zap.Int("attempts", r.policy.MaxAttempts),
		zap.Error(lastErr))
	return fmt.Errorf("%s failed after %d attempts: %w", operation, r.policy.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
