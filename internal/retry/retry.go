// Package retry runs an operation again after transient failures.
package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"time"
)

// permanent marks an error that must not be retried.
type permanent struct {
	err error
}

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it immediately instead of retrying.
func Permanent(err error) error {
	return &permanent{err: err}
}

// Do runs fn up to maxAttempts times, sleeping between attempts with
// exponential backoff and full jitter. It returns nil on the first
// success, the unwrapped error for a Permanent failure, ctx.Err() if the
// context ends during a backoff sleep, and otherwise the last error.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last error
	for attempt := 1; ; attempt++ {
		last = fn()
		if last == nil {
			return nil
		}

		var p *permanent
		if errors.As(last, &p) {
			return p.err
		}

		if attempt == maxAttempts {
			return last
		}

		// Full jitter: sleep anywhere in [delay/2, delay]. Keeps
		// concurrent retriers from synchronizing on the upstream.
		delay := baseDelay << (attempt - 1)
		sleep := delay/2 + time.Duration(randInt64(int64(delay/2)+1))

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// randInt64 returns a uniform-ish value in [0, n) from crypto/rand.
func randInt64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var b [8]byte
	_, _ = rand.Read(b[:])
	v := binary.BigEndian.Uint64(b[:]) >> 1
	return int64(v % uint64(n)) //nolint:gosec // v is non-negative, v%n < n
}
