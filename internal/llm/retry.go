package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy controls how throttled calls are retried.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy doubles a 15s pause up to 2 minutes.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:     maxRetries,
		InitialBackoff: 15 * time.Second,
		MaxBackoff:     2 * time.Minute,
	}
}

// RetryingProvider retries calls that fail with a rate-limit or overload
// error. Any other error is returned immediately.
type RetryingProvider struct {
	provider Provider
	policy   RetryPolicy
	logger   *slog.Logger
}

// NewRetryingProvider wraps provider with exponential backoff on throttling.
func NewRetryingProvider(provider Provider, policy RetryPolicy, logger *slog.Logger) *RetryingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingProvider{provider: provider, policy: policy, logger: logger}
}

func (r *RetryingProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	backoff := r.policy.InitialBackoff
	for attempt := 0; ; attempt++ {
		resp, err := r.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		if attempt >= r.policy.MaxRetries {
			return nil, fmt.Errorf("rate limited after %d retries: %w", attempt, err)
		}

		r.logger.Warn("model backend throttled, backing off",
			"provider", r.provider.Name(), "attempt", attempt+1, "backoff", backoff)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if r.policy.MaxBackoff > 0 && backoff > r.policy.MaxBackoff {
			backoff = r.policy.MaxBackoff
		}
	}
}
