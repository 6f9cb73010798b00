package limiter_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/scores-fixture/pkg/limiter"
	"github.com/rohmanhakim/scores-fixture/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDelay_UnknownHostIsZero(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Second)

	assert.Equal(t, time.Duration(0), r.ResolveDelay("stacy.olympics.com"))
}

func TestResolveDelay_NoDelayConfigured(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.MarkLastFetchAsNow("stacy.olympics.com")

	assert.Equal(t, time.Duration(0), r.ResolveDelay("stacy.olympics.com"))
}

func TestResolveDelay_BaseDelayAfterFetch(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Second)
	r.MarkLastFetchAsNow("stacy.olympics.com")

	delay := r.ResolveDelay("stacy.olympics.com")

	assert.Greater(t, delay, 900*time.Millisecond)
	assert.LessOrEqual(t, delay, time.Second)
}

func TestBackoff_GrowsAndResets(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBackoffParam(timeutil.NewBackoffParam(100*time.Millisecond, 2.0, time.Second))
	host := "stacy.olympics.com"

	r.Backoff(host)
	r.Backoff(host)

	timing, ok := r.HostTiming(host)
	require.True(t, ok)
	assert.Equal(t, 2, timing.BackoffCount())
	assert.Equal(t, 200*time.Millisecond, timing.BackoffDelay())

	r.ResetBackoff(host)
	timing, _ = r.HostTiming(host)
	assert.Equal(t, 0, timing.BackoffCount())
	assert.Equal(t, time.Duration(0), timing.BackoffDelay())
}

func TestConcurrentAccess(t *testing.T) {
	r := limiter.NewConcurrentRateLimiter()
	r.SetBaseDelay(time.Millisecond)
	r.SetJitter(time.Millisecond)
	r.SetRandomSeed(7)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			host := "host"
			r.MarkLastFetchAsNow(host)
			if i%2 == 0 {
				r.Backoff(host)
			} else {
				r.ResetBackoff(host)
			}
			_ = r.ResolveDelay(host)
		}(i)
	}
	wg.Wait()

	_, ok := r.HostTiming("host")
	assert.True(t, ok)
}
