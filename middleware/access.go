package middleware

import (
	"net/http"

	"middleware-gateway/internal/cidr"
	"middleware-gateway/internal/forwardedchain"
)

// AllowIPsOptions configures the allow_ips filter.
type AllowIPsOptions struct {
	// AllowList defaults to the RFC 1918 / RFC 4193 private ranges.
	AllowList cidr.ListSource
	// DenyHandler defaults to a 403 "Access denied" response.
	DenyHandler DenyHandler
	Telemetry
}

// AllowIPs admits a request only if every address in its client chain is
// contained in AllowList — a request must pass through only permitted
// intermediaries.
func AllowIPs(opts AllowIPsOptions) func(http.Handler) http.Handler {
	if opts.AllowList == nil {
		opts.AllowList = cidr.Static(cidr.DefaultPrivate())
	}
	if opts.DenyHandler == nil {
		opts.DenyHandler = defaultAccessDenied()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			chain := forwardedchain.Chain(r)
			allowed := cidr.Allowed(chain, opts.AllowList.Load())
			opts.record(r.Context(), "allow_ips", chainKey(chain), allowed, r)
			if !allowed {
				opts.DenyHandler(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DenyIPsOptions configures the deny_ips filter.
type DenyIPsOptions struct {
	// DenyList defaults to the pre-computed public-subnet partition.
	DenyList cidr.ListSource
	// DenyHandler defaults to a 403 "Access denied" response.
	DenyHandler DenyHandler
	Telemetry
}

// DenyIPs admits a request unless any address in its client chain is
// contained in DenyList — one bad hop poisons the chain.
func DenyIPs(opts DenyIPsOptions) func(http.Handler) http.Handler {
	if opts.DenyList == nil {
		opts.DenyList = cidr.Static(cidr.DefaultPublic())
	}
	if opts.DenyHandler == nil {
		opts.DenyHandler = defaultAccessDenied()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			chain := forwardedchain.Chain(r)
			denied := cidr.Denied(chain, opts.DenyList.Load())
			opts.record(r.Context(), "deny_ips", chainKey(chain), !denied, r)
			if denied {
				opts.DenyHandler(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
