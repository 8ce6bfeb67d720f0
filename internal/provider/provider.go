// Package provider abstracts the LLM backend that drafts review replies.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable wraps transport and upstream failures so callers can
// distinguish "the model is down" from "the model said something odd".
var ErrUnavailable = errors.New("provider: unavailable")

// StatusError is an upstream HTTP error. It unwraps to ErrUnavailable so
// existing errors.Is checks keep working, and carries the status code so
// the retry layer can tell rate limits from bad requests.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider: unavailable: status %d: %s", e.Status, e.Detail)
}

func (e *StatusError) Unwrap() error { return ErrUnavailable }

// Retryable reports whether the upstream status is worth retrying.
// Rate limits, timeouts, and server errors are transient. Anything else
// in the 4xx range means the request itself is wrong.
func (e *StatusError) Retryable() bool {
	switch {
	case e.Status == http.StatusTooManyRequests:
		return true
	case e.Status == http.StatusRequestTimeout:
		return true
	case e.Status >= 500:
		return true
	default:
		return false
	}
}

// Client is a text completion backend.
type Client interface {
	// Complete sends a single-turn prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}
