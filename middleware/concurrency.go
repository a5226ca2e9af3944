package middleware

import (
	"net/http"
	"time"

	"middleware-gateway/internal/fairsem"
	"middleware-gateway/internal/weakfactory"
)

// ConcurrencyThrottleOptions configures the concurrency_throttle filter.
type ConcurrencyThrottleOptions struct {
	// MaxConcurrent defaults to 1.
	MaxConcurrent int
	IdentFunc     IdentFunc
	Telemetry
}

// ConcurrencyThrottle bounds in-flight requests per identity to
// MaxConcurrent, blocking (never rejecting) until a permit frees up.
func ConcurrencyThrottle(opts ConcurrencyThrottleOptions) func(http.Handler) http.Handler {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.IdentFunc == nil {
		opts.IdentFunc = WorldIdent
	}
	max := opts.MaxConcurrent

	table := weakfactory.New[string, fairsem.Sem](func(string) *fairsem.Sem {
		return fairsem.New(max)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.IdentFunc(r)
			sem := table.Get(key)

			sem.Acquire()
			defer sem.Release()

			opts.record(r.Context(), "concurrency_throttle", key, true, r)
			if opts.Metrics != nil {
				opts.Metrics.SetOccupancy("concurrency_throttle", max-sem.Available())
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ConcurrencyLimitOptions configures the concurrency_limit filter.
type ConcurrencyLimitOptions struct {
	// MaxConcurrent defaults to 1.
	MaxConcurrent int
	// MaxWait defaults to 50ms when unset. Pass a negative value to
	// request explicit non-blocking (max_wait_ms: 0) semantics.
	MaxWait   time.Duration
	IdentFunc IdentFunc
	// DenyHandler defaults to a 429 "Limit exceeded" response.
	DenyHandler DenyHandler
	Telemetry
}

// ConcurrencyLimit bounds in-flight requests per identity to
// MaxConcurrent, waiting at most MaxWait before rejecting via
// DenyHandler.
func ConcurrencyLimit(opts ConcurrencyLimitOptions) func(http.Handler) http.Handler {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	opts.MaxWait = resolveMaxWait(opts.MaxWait, 50*time.Millisecond)
	if opts.IdentFunc == nil {
		opts.IdentFunc = WorldIdent
	}
	if opts.DenyHandler == nil {
		opts.DenyHandler = defaultLimitExceeded()
	}
	max := opts.MaxConcurrent

	table := weakfactory.New[string, fairsem.Sem](func(string) *fairsem.Sem {
		return fairsem.New(max)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.IdentFunc(r)
			sem := table.Get(key)

			if !sem.TryAcquireTimeout(opts.MaxWait) {
				opts.record(r.Context(), "concurrency_limit", key, false, r)
				opts.DenyHandler(w, r)
				return
			}
			defer sem.Release()

			opts.record(r.Context(), "concurrency_limit", key, true, r)
			if opts.Metrics != nil {
				opts.Metrics.SetOccupancy("concurrency_limit", max-sem.Available())
			}

			next.ServeHTTP(w, r)
		})
	}
}
