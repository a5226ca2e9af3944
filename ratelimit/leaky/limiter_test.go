package leaky

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsNThenBlocksThenRefills(t *testing.T) {
	const n = 5
	period := 200 * time.Millisecond
	l := NewLimiter(n, period)

	for i := 0; i < n; i++ {
		assert.True(t, l.TryAcquire(), "acquire %d should succeed", i)
	}
	assert.False(t, l.TryAcquire(), "bucket should be exhausted")

	time.Sleep(period + 50*time.Millisecond)

	for i := 0; i < n; i++ {
		assert.True(t, l.TryAcquire(), "post-refill acquire %d should succeed", i)
	}
	assert.False(t, l.TryAcquire())
}

func TestLimiter_PacingBelowFrequencyAllSucceed(t *testing.T) {
	const n = 20
	period := 200 * time.Millisecond // freq = 10ms
	l := NewLimiter(n, period)

	for i := 0; i < n; i++ {
		assert.True(t, l.TryAcquire())
	}
	assert.False(t, l.TryAcquire())

	for i := 0; i < 10; i++ {
		time.Sleep(15 * time.Millisecond)
		assert.True(t, l.TryAcquire(), "sequential acquire %d spaced beyond refill period should succeed", i)
	}
}

func TestLimiter_TryAcquireTimeoutBlocksUntilRefill(t *testing.T) {
	const n = 1
	period := 60 * time.Millisecond
	l := NewLimiter(n, period)

	assert.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire())

	start := time.Now()
	ok := l.TryAcquireTimeout(200 * time.Millisecond)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestLimiter_ResourceReleaseSymmetric(t *testing.T) {
	l := NewLimiter(3, 100*time.Millisecond)
	before := l.Available()

	for i := 0; i < 10; i++ {
		if l.TryAcquire() {
			// simulate a completed request; the bucket doesn't get an
			// explicit release from the caller — refill is the timer's
			// job — so Available() only recovers on the next tick.
		}
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, before, l.Available())
}
