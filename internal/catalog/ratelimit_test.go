package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/product-search/internal/catalog"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rate    float64
		burst   int
		daily   int64
		calls   int
		wantErr bool
	}{
		{name: "allows calls within rate", rate: 100, burst: 10, daily: 5000, calls: 3},
		{name: "allows burst", rate: 100, burst: 5, daily: 5000, calls: 5},
		{name: "unlimited daily quota", rate: 100, burst: 10, daily: 0, calls: 10},
		{name: "rejects when daily limit reached", rate: 100, burst: 10, daily: 2, calls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := catalog.NewRateLimiter(tt.rate, tt.burst, tt.daily)

			var lastErr error
			for range tt.calls {
				lastErr = rl.Wait(context.Background())
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, lastErr, catalog.ErrDailyLimitReached)
				return
			}
			require.NoError(t, lastErr)
		})
	}
}

func TestRateLimiter_Remaining(t *testing.T) {
	t.Parallel()

	rl := catalog.NewRateLimiter(100, 10, 3)
	assert.Equal(t, int64(3), rl.Remaining())
	assert.True(t, rl.ResetAt().IsZero())

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.DailyCount())
	assert.Equal(t, int64(2), rl.Remaining())
	assert.False(t, rl.ResetAt().IsZero())

	unlimited := catalog.NewRateLimiter(100, 10, 0)
	assert.Equal(t, int64(-1), unlimited.Remaining())
}

func TestRateLimiter_WindowResets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	rl := catalog.NewRateLimiter(100, 10, 1, catalog.WithRateLimiterNowFunc(clock))
	require.NoError(t, rl.Wait(context.Background()))
	require.ErrorIs(t, rl.Wait(context.Background()), catalog.ErrDailyLimitReached)

	mu.Lock()
	now = now.Add(25 * time.Hour)
	mu.Unlock()

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.DailyCount())
}

func TestRateLimiter_CanceledContextRefunds(t *testing.T) {
	t.Parallel()

	// Burst of 1 at a very slow rate: the second call must wait.
	rl := catalog.NewRateLimiter(0.001, 1, 10)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, rl.Wait(ctx))
	assert.Equal(t, int64(1), rl.DailyCount())
}

func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := catalog.NewRateLimiter(1000, 100, 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok int
	for range 80 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Wait(context.Background()) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, ok)
	assert.Equal(t, int64(50), rl.DailyCount())
}
