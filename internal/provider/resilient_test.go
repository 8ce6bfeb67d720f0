package provider

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClient fails a set number of times before succeeding.
type flakyClient struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (f *flakyClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func (f *flakyClient) Name() string { return "flaky" }

func (f *flakyClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestResilient_PassesThroughSuccess(t *testing.T) {
	c := &flakyClient{}
	r := NewResilient(c)

	out, err := r.Complete(context.Background(), "hello", 100)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, c.callCount())
}

func TestResilient_RetriesTransientFailure(t *testing.T) {
	c := &flakyClient{
		failures: 1,
		err:      &StatusError{Status: http.StatusServiceUnavailable, Detail: "overloaded"},
	}
	r := NewResilient(c)

	out, err := r.Complete(context.Background(), "hello", 100)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, c.callCount())
}

func TestResilient_DoesNotRetryBadRequest(t *testing.T) {
	c := &flakyClient{
		failures: 10,
		err:      &StatusError{Status: http.StatusUnauthorized, Detail: "invalid x-api-key"},
	}
	r := NewResilient(c)

	_, err := r.Complete(context.Background(), "hello", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, c.callCount(), "4xx other than 429 should not be retried")
}

func TestResilient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	c := &flakyClient{
		failures: 100,
		err:      &StatusError{Status: http.StatusInternalServerError, Detail: "boom"},
	}
	r := NewResilient(c)

	for i := 0; i < breakerThreshold; i++ {
		_, err := r.Complete(context.Background(), "hello", 100)
		require.Error(t, err)
	}

	before := c.callCount()
	_, err := r.Complete(context.Background(), "hello", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, before, c.callCount(), "open circuit must not reach the backend")
}

func TestResilient_RetryableStatuses(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusRequestTimeout, true},
		{http.StatusInternalServerError, true},
		{529, true}, // anthropic "overloaded"
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		se := &StatusError{Status: tt.status}
		assert.Equal(t, tt.retryable, se.Retryable(), "status %d", tt.status)
	}
}

func TestStatusError_UnwrapsToUnavailable(t *testing.T) {
	err := error(&StatusError{Status: 503, Detail: "down"})
	assert.ErrorIs(t, err, ErrUnavailable)

	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, 503, se.Status)
}
