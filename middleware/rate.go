package middleware

import (
	"net/http"
	"time"

	"middleware-gateway/internal/weakfactory"
	"middleware-gateway/ratelimit/leaky"
)

// RateThrottleOptions configures the rate_throttle filter.
type RateThrottleOptions struct {
	// MaxRequests defaults to 100.
	MaxRequests int
	// Period defaults to 60s.
	Period    time.Duration
	IdentFunc IdentFunc
	Telemetry
}

// RateThrottle admits at most MaxRequests per Period per identity,
// blocking (never rejecting) callers over the limit until the leaky
// bucket refills.
func RateThrottle(opts RateThrottleOptions) func(http.Handler) http.Handler {
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = 100
	}
	if opts.Period <= 0 {
		opts.Period = 60 * time.Second
	}
	if opts.IdentFunc == nil {
		opts.IdentFunc = WorldIdent
	}
	n, period := opts.MaxRequests, opts.Period

	table := weakfactory.New[string, leaky.Limiter](func(string) *leaky.Limiter {
		return leaky.NewLimiter(n, period)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.IdentFunc(r)
			lim := table.Get(key)

			lim.Acquire()

			opts.record(r.Context(), "rate_throttle", key, true, r)
			if opts.Metrics != nil {
				opts.Metrics.SetOccupancy("rate_throttle", n-lim.Available())
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitOptions configures the rate_limit filter.
type RateLimitOptions struct {
	// MaxRequests defaults to 500.
	MaxRequests int
	// Period defaults to 60s.
	Period time.Duration
	// MaxWait defaults to 50ms when unset. Pass a negative value to
	// request explicit non-blocking (max_wait_ms: 0) semantics.
	MaxWait   time.Duration
	IdentFunc IdentFunc
	// DenyHandler defaults to a 429 "Limit exceeded" response.
	DenyHandler DenyHandler
	Telemetry
}

// RateLimit admits at most MaxRequests per Period per identity, waiting
// at most MaxWait for a slot before rejecting via DenyHandler.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = 500
	}
	if opts.Period <= 0 {
		opts.Period = 60 * time.Second
	}
	opts.MaxWait = resolveMaxWait(opts.MaxWait, 50*time.Millisecond)
	if opts.IdentFunc == nil {
		opts.IdentFunc = WorldIdent
	}
	if opts.DenyHandler == nil {
		opts.DenyHandler = defaultLimitExceeded()
	}
	n, period := opts.MaxRequests, opts.Period

	table := weakfactory.New[string, leaky.Limiter](func(string) *leaky.Limiter {
		return leaky.NewLimiter(n, period)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.IdentFunc(r)
			lim := table.Get(key)

			if !lim.TryAcquireTimeout(opts.MaxWait) {
				opts.record(r.Context(), "rate_limit", key, false, r)
				opts.DenyHandler(w, r)
				return
			}

			opts.record(r.Context(), "rate_limit", key, true, r)
			if opts.Metrics != nil {
				opts.Metrics.SetOccupancy("rate_limit", n-lim.Available())
			}

			next.ServeHTTP(w, r)
		})
	}
}
