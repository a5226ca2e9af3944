// Package metrics exposes Prometheus collectors for the middleware
// facade: current permit-pool occupancy per filter and a denial counter
// labeled by filter name, wired optionally into cmd/gateway's /metrics
// endpoint.
package metrics
