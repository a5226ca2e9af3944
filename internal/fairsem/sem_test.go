package fairsem

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTryAcquire_RespectsCapacity(t *testing.T) {
	s := New(2)
	assert.True(t, s.TryAcquire())
	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())
	assert.Equal(t, 0, s.Available())
}

func TestRelease_RestoresAvailability(t *testing.T) {
	s := New(1)
	assert.True(t, s.TryAcquire())
	s.Release()
	assert.Equal(t, 1, s.Available())
	assert.True(t, s.TryAcquire())
}

func TestTryAcquireTimeout_ExpiresWhenExhausted(t *testing.T) {
	s := New(1)
	assert.True(t, s.TryAcquire())

	start := time.Now()
	ok := s.TryAcquireTimeout(30 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestTryAcquireTimeout_SucceedsWhenReleasedInTime(t *testing.T) {
	s := New(1)
	assert.True(t, s.TryAcquire())

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Release()
	}()

	assert.True(t, s.TryAcquireTimeout(200*time.Millisecond))
}

func TestAcquire_ConcurrentBound(t *testing.T) {
	s := New(3)
	var inFlight, maxObserved int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Acquire()
			n := atomic.AddInt32(&inFlight, 1)
			for {
				max := atomic.LoadInt32(&maxObserved)
				if n <= max || atomic.CompareAndSwapInt32(&maxObserved, max, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			s.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxObserved, int32(3))
}

func TestFIFOFairness_AcquireOrderMatchesGrantOrder(t *testing.T) {
	s := New(1)
	assert.True(t, s.TryAcquire())

	const n = 5
	order := make(chan int, n)
	var starting sync.WaitGroup
	starting.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			starting.Done()
			starting.Wait()
			time.Sleep(time.Duration(i) * 5 * time.Millisecond)
			s.Acquire()
			order <- i
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	s.Release()

	got := make([]int, 0, n)
	for i := 0; i < n; i++ {
		got = append(got, <-order)
		if i < n-1 {
			s.Release()
		}
	}

	for i, v := range got {
		assert.Equal(t, i, v)
	}
}
