package middleware

import (
	"net/http"
	"sync"
	"time"

	"middleware-gateway/internal/cidr"
	"middleware-gateway/internal/forwardedchain"
	"middleware-gateway/maintenance"
)

var (
	defaultCoordinatorOnce sync.Once
	defaultCoordinator     *maintenance.Coordinator[string]
)

// DefaultCoordinator returns the process-wide maintenance coordinator
// shared by every maintenance_throttle/maintenance_limit filter and admin
// trigger built without an explicit Coordinator option, so that closing
// an identity from the admin surface is observed by every filter
// instance guarding that identity.
func DefaultCoordinator() *maintenance.Coordinator[string] {
	defaultCoordinatorOnce.Do(func() {
		defaultCoordinator = maintenance.New[string]()
	})
	return defaultCoordinator
}

// MaintenanceThrottleOptions configures the maintenance_throttle filter.
type MaintenanceThrottleOptions struct {
	// Coordinator defaults to DefaultCoordinator().
	Coordinator *maintenance.Coordinator[string]
	// Ident names the maintenance identity this filter guards.
	Ident string
	// Bypass, when a request's client chain matches it, skips the gate
	// entirely (operators/health checks during a drain).
	Bypass cidr.ListSource
	Telemetry
}

// MaintenanceThrottle blocks admission for Ident while the coordinator's
// gate is closed, waiting indefinitely for it to reopen.
func MaintenanceThrottle(opts MaintenanceThrottleOptions) func(http.Handler) http.Handler {
	if opts.Coordinator == nil {
		opts.Coordinator = DefaultCoordinator()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypasses(opts.Bypass, r) {
				next.ServeHTTP(w, r)
				return
			}

			leave := opts.Coordinator.AdmitThrottle(opts.Ident)
			defer leave()

			opts.record(r.Context(), "maintenance_throttle", opts.Ident, true, r)
			next.ServeHTTP(w, r)
		})
	}
}

// MaintenanceLimitOptions configures the maintenance_limit filter.
type MaintenanceLimitOptions struct {
	// Coordinator defaults to DefaultCoordinator().
	Coordinator *maintenance.Coordinator[string]
	// Ident names the maintenance identity this filter guards.
	Ident string
	// MaxWait defaults to 50ms when unset. Pass a negative value to
	// request explicit non-blocking (max_wait_ms: 0) semantics.
	MaxWait time.Duration
	// Bypass, when a request's client chain matches it, skips the gate
	// entirely (operators/health checks during a drain).
	Bypass cidr.ListSource
	// DenyHandler defaults to a 503 "Undergoing maintenance" response.
	DenyHandler DenyHandler
	Telemetry
}

// MaintenanceLimit waits up to MaxWait for Ident's gate to reopen before
// rejecting via DenyHandler.
func MaintenanceLimit(opts MaintenanceLimitOptions) func(http.Handler) http.Handler {
	if opts.Coordinator == nil {
		opts.Coordinator = DefaultCoordinator()
	}
	opts.MaxWait = resolveMaxWait(opts.MaxWait, 50*time.Millisecond)
	if opts.DenyHandler == nil {
		opts.DenyHandler = defaultUnderMaintenance()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypasses(opts.Bypass, r) {
				next.ServeHTTP(w, r)
				return
			}

			leave, ok := opts.Coordinator.AdmitLimit(opts.Ident, opts.MaxWait)
			if !ok {
				opts.record(r.Context(), "maintenance_limit", opts.Ident, false, r)
				opts.DenyHandler(w, r)
				return
			}
			defer leave()

			opts.record(r.Context(), "maintenance_limit", opts.Ident, true, r)
			next.ServeHTTP(w, r)
		})
	}
}

// bypasses reports whether every hop of the request's client chain is
// contained in list — a request must arrive entirely through trusted
// (bypass-listed) hops to skip the maintenance gate; one untrusted hop
// still gets gated.
func bypasses(list cidr.ListSource, r *http.Request) bool {
	if list == nil {
		return false
	}
	chain := forwardedchain.Chain(r)
	return cidr.Allowed(chain, list.Load())
}
