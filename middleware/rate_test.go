package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit_AllowsThenRejectsSameIdentity(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := RateLimit(RateLimitOptions{
		MaxRequests: 1,
		Period:      200 * time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	})(next)

	r1 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected first request to be admitted, got %d", w1.Code)
	}

	r2 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rejected, got %d", w2.Code)
	}

	if calls != 1 {
		t.Fatalf("expected next handler to run once, got %d", calls)
	}
}

func TestRateLimit_RefillsAfterPeriod(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := RateLimit(RateLimitOptions{
		MaxRequests: 1,
		Period:      80 * time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	})(next)

	r1 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected first request admitted, got %d", w1.Code)
	}

	time.Sleep(120 * time.Millisecond)

	r2 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected refilled bucket to admit again, got %d", w2.Code)
	}
}

func TestRateThrottle_BlocksInsteadOfRejecting(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := RateThrottle(RateThrottleOptions{
		MaxRequests: 1,
		Period:      60 * time.Millisecond,
	})(next)

	r1 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected first request admitted, got %d", w1.Code)
	}

	start := time.Now()
	r2 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	elapsed := time.Since(start)

	if w2.Code != http.StatusOK {
		t.Fatalf("expected throttled request to eventually be admitted, got %d", w2.Code)
	}
	if elapsed < 30*time.Millisecond {
		t.Fatalf("expected throttle to block roughly a refill tick, elapsed %s", elapsed)
	}
}
