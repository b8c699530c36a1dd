package fetch

import (
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryPolicy_SucceedsAfterFailures(t *testing.T) {
	var slept []time.Duration
	policy := RetryPolicy{
		MaxAttempts: 3,
		MaxBackoff:  120 * time.Second,
		sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	calls := 0
	body, err := policy.Do(zap.NewNop(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", body)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept)
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 2,
		MaxBackoff:  120 * time.Second,
		sleep:       func(time.Duration) {},
	}

	calls := 0
	_, err := policy.Do(zap.NewNop(), func() (string, error) {
		calls++
		return "", errors.New("still down")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "request failed after 2 attempts")
	assert.Contains(t, err.Error(), "still down")
}

func TestRetryPolicy_FirstSuccessSkipsSleep(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 5,
		MaxBackoff:  120 * time.Second,
		sleep: func(time.Duration) {
			t.Fatal("sleep must not be called on immediate success")
		},
	}

	body, err := policy.Do(zap.NewNop(), func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestRetryPolicy_BackoffCapped(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, MaxBackoff: 120 * time.Second}

	assert.Equal(t, 1*time.Second, policy.backoff(0))
	assert.Equal(t, 2*time.Second, policy.backoff(1))
	assert.Equal(t, 64*time.Second, policy.backoff(6))
	assert.Equal(t, 120*time.Second, policy.backoff(7))
	assert.Equal(t, 120*time.Second, policy.backoff(9))
}
