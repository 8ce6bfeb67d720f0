package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/replypilot/replypilot/internal/circuitbreaker"
	"github.com/replypilot/replypilot/internal/logging"
	"github.com/replypilot/replypilot/internal/retry"
)

const (
	maxAttempts    = 2
	retryBaseDelay = 500 * time.Millisecond

	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// Resilient wraps a Client with retries and a circuit breaker. Transient
// upstream failures (rate limits, 5xx, network errors) get one retry with
// backoff. Repeated failures trip the breaker so merchants get a fast
// error instead of waiting out the full request timeout.
type Resilient struct {
	inner   Client
	breaker *circuitbreaker.Breaker
}

// NewResilient wraps client with retry and circuit breaking.
func NewResilient(client Client) *Resilient {
	b := circuitbreaker.New(breakerThreshold, breakerCooldown)
	b.OnTransition(func(key string, from, to circuitbreaker.State) {
		logging.L(context.Background()).Warn("provider circuit state changed",
			"provider", key,
			"from", from.String(),
			"to", to.String(),
		)
	})
	return &Resilient{inner: client, breaker: b}
}

// Name returns the wrapped backend's name.
func (r *Resilient) Name() string { return r.inner.Name() }

// Complete calls the wrapped backend, retrying transient failures.
func (r *Resilient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	key := r.inner.Name()

	if !r.breaker.Allow(key) {
		return "", fmt.Errorf("%w: circuit open for %s", ErrUnavailable, key)
	}

	var out string
	err := retry.Do(ctx, maxAttempts, retryBaseDelay, func() error {
		var callErr error
		out, callErr = r.inner.Complete(ctx, prompt, maxTokens)
		if callErr == nil {
			return nil
		}

		// Upstream rejected the request itself. Retrying won't change that.
		var se *StatusError
		if errors.As(callErr, &se) && !se.Retryable() {
			return retry.Permanent(callErr)
		}
		return callErr
	})

	if err != nil {
		r.breaker.RecordFailure(key)
		return "", err
	}

	r.breaker.RecordSuccess(key)
	return out, nil
}

var _ Client = (*Resilient)(nil)
