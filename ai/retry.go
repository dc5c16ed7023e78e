// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/taxonomist/core"
)

// BackoffFunc returns the delay to wait after the given failed attempt (1-based).
type BackoffFunc func(attempt int) time.Duration

// RetryPolicy controls how transient embedding failures are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// BaseDelay is the delay after the first failure; it doubles on each retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential delay. Zero means uncapped.
	MaxDelay time.Duration

	// Timeout bounds each individual attempt. Zero disables the per-attempt timeout.
	Timeout time.Duration

	// Backoff overrides the exponential schedule when set.
	Backoff BackoffFunc
}

// DefaultRetryPolicy mirrors the defaults of DefaultConfig.
func DefaultRetryPolicy() RetryPolicy {
	return DefaultConfig().RetryPolicy()
}

// ExponentialBackoff returns base * 2^(attempt-1), capped at max when max > 0.
func ExponentialBackoff(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		delay := base
		for i := 1; i < attempt; i++ {
			delay *= 2
			if max > 0 && delay >= max {
				return max
			}
		}
		if max > 0 && delay > max {
			return max
		}
		return delay
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.Backoff != nil {
		return p.Backoff(attempt)
	}
	return ExponentialBackoff(p.BaseDelay, p.MaxDelay)(attempt)
}

// Retry runs operation until it succeeds, fails permanently, or the attempt
// budget is spent. Only transient failures are retried; errors that are not
// *EmbeddingError are classified with Classify first. The error from the last
// attempt is returned when all attempts fail.
func Retry(ctx context.Context, policy RetryPolicy, operation func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = runAttempt(ctx, policy.Timeout, operation)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("embedding succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if !IsTransient(lastErr) {
			slog.Debug("embedding failed permanently", "attempt", attempt, "err", lastErr)
			return lastErr
		}

		slog.Debug("embedding failed, will retry", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "err", lastErr)

		// Don't sleep after the last attempt
		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(policy.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// runAttempt executes one attempt under the per-attempt timeout and classifies
// its failure.
func runAttempt(ctx context.Context, timeout time.Duration, operation func(ctx context.Context) error) error {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := operation(attemptCtx)
	if err == nil {
		return nil
	}

	// The attempt ran out of time while the caller is still waiting.
	if ctx.Err() == nil && attemptCtx.Err() != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		var embErr *EmbeddingError
		if !errors.As(err, &embErr) || embErr.Kind != Transient {
			return NewTransientError(fmt.Errorf("attempt timed out after %s: %w", timeout, err))
		}
	}
	return Classify(err)
}

// EmbedWithRetry embeds text, retrying transient failures according to policy.
// Permanent failures are returned immediately.
func EmbedWithRetry(ctx context.Context, embedder Embedder, text string, policy RetryPolicy) ([]float32, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if text == "" {
		return nil, NewPermanentError(core.ErrEmptyText)
	}

	var vector []float32
	err := Retry(ctx, policy, func(ctx context.Context) error {
		v, err := embedder.EmbedText(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return NewPermanentError(ErrEmptyEmbedding)
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// RetryingEmbedder decorates an Embedder with a retry policy and per-call timeout.
type RetryingEmbedder struct {
	inner  Embedder
	policy RetryPolicy
	logger *slog.Logger
}

var _ Embedder = (*RetryingEmbedder)(nil)

// NewRetryingEmbedder wraps inner so every call goes through policy.
func NewRetryingEmbedder(inner Embedder, policy RetryPolicy) (*RetryingEmbedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if policy.MaxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	return &RetryingEmbedder{
		inner:  inner,
		policy: policy,
		logger: slog.Default().With("component", "retrying-embedder"),
	}, nil
}

// Policy returns the retry policy in effect.
func (r *RetryingEmbedder) Policy() RetryPolicy {
	return r.policy
}

// EmbedText embeds a single text with retries.
func (r *RetryingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	v, err := EmbedWithRetry(ctx, r.inner, text, r.policy)
	if err != nil {
		r.logger.Debug("embedding failed", "length", len(text), "err", err)
	}
	return v, err
}

// EmbedTexts embeds a batch with retries. The whole batch is retried on a
// transient failure.
func (r *RetryingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if text == "" {
			return nil, NewPermanentError(core.ErrEmptyText)
		}
	}

	var vectors [][]float32
	err := Retry(ctx, r.policy, func(ctx context.Context) error {
		vs, err := r.inner.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vs) != len(texts) {
			return NewPermanentError(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vs)))
		}
		vectors = vs
		return nil
	})
	if err != nil {
		r.logger.Debug("batch embedding failed", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}
