// Package fetch contains the network-facing plumbing shared by all store
// clients: an exponential-backoff retry policy, a keyed on-disk response
// cache, and a lazy paginated catalog iterator.
package fetch

import (
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// RequestFunc performs one network attempt and returns the response body.
type RequestFunc func() (string, error)

// RetryPolicy retries a request with exponential backoff. It is stateless
// configuration: every Do call starts with a fresh attempt counter, so
// independent logical requests never share backoff state.
type RetryPolicy struct {
	MaxAttempts int
	MaxBackoff  time.Duration

	// sleep is swappable in tests. Nil means time.Sleep.
	sleep func(time.Duration)
}

// DefaultRetryPolicy matches the upstream APIs' observed flakiness: up to 10
// attempts with backoff capped at two minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, MaxBackoff: 120 * time.Second}
}

// backoff returns min(MaxBackoff, 2^attempt seconds).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do executes request up to MaxAttempts times, sleeping between failures.
// The first success returns immediately; exhausting all attempts returns the
// last error wrapped with the attempt count.
func (p RetryPolicy) Do(lg *zap.Logger, request RequestFunc) (string, error) {
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		body, err := request()
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt < p.MaxAttempts-1 {
			wait := p.backoff(attempt)
			lg.Info("retrying request",
				zap.Duration("backoff", wait),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			sleep(wait)
		}
	}

	lg.Error("request failed, giving up",
		zap.Int("attempts", p.MaxAttempts),
		zap.Error(lastErr),
	)
	return "", errors.Wrapf(lastErr, "request failed after %d attempts", p.MaxAttempts)
}
