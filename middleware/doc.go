// Package middleware wires the CIDR engine, forwarded-chain extractor,
// fair semaphore, leaky-bucket limiter and maintenance barrier into
// eight net/http filters: allow_ips, deny_ips, concurrency_throttle,
// concurrency_limit, rate_throttle, rate_limit, maintenance_throttle
// and maintenance_limit.
//
// Each filter is a func(Options) func(http.Handler) http.Handler,
// generalized to eight constructors and wired to the shared Telemetry
// sinks (Redis/memory stats, structured logging, Prometheus counters).
package middleware
