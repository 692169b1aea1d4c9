package explore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry_returns_first_success(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		return "<html></html>", nil
	}

	html, err := fetchWithRetry(context.Background(), "https://example.com", fetch, DefaultRetryDelays(), nil)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", html)
	assert.Equal(t, 1, calls)
}

func TestFetchWithRetry_retries_transient_failures(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	}

	var retries []int
	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	html, err := fetchWithRetry(context.Background(), "https://example.com", fetch, delays, func(attempt int, err error) {
		retries = append(retries, attempt)
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", html)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{2, 3}, retries)
}

func TestFetchWithRetry_returns_last_error_after_exhaustion(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		calls++
		return "", errors.New("unreachable")
	}

	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	_, err := fetchWithRetry(context.Background(), "https://example.com", fetch, delays, nil)
	require.Error(t, err)
	assert.Equal(t, "unreachable", err.Error())
	assert.Equal(t, 4, calls, "one initial attempt plus one per delay")
}

func TestFetchWithRetry_respects_context_cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, url string) (string, error) {
		cancel()
		return "", errors.New("failed")
	}

	_, err := fetchWithRetry(ctx, "https://example.com", fetch, []time.Duration{time.Minute}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
