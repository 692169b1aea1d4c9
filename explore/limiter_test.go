package explore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/prodcrawl/explore"
)

func TestLimiter_first_wait_is_immediate(t *testing.T) {
	t.Parallel()

	l := explore.NewLimiter(10.0)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_paces_subsequent_waits(t *testing.T) {
	t.Parallel()

	l := explore.NewLimiter(0.05) // 50ms between visits

	require.NoError(t, l.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLimiter_non_positive_delay_disables_pacing(t *testing.T) {
	t.Parallel()

	l := explore.NewLimiter(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_Wait_respects_context_cancellation(t *testing.T) {
	t.Parallel()

	l := explore.NewLimiter(60.0)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
}
