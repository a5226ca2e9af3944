package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the process-wide gauges/counters for the middleware
// facade. The zero value is not usable; construct with New.
type Collector struct {
	Occupancy *prometheus.GaugeVec
	Denied    *prometheus.CounterVec
	Admitted  *prometheus.CounterVec
}

// New constructs a Collector and registers its metrics against reg. Pass
// prometheus.DefaultRegisterer to wire into the global registry, or a
// fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "middleware_gateway",
			Name:      "permit_pool_occupancy",
			Help:      "Current number of claimed permits, by filter.",
		}, []string{"filter"}),
		Denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "middleware_gateway",
			Name:      "denied_total",
			Help:      "Total number of requests denied, by filter.",
		}, []string{"filter"}),
		Admitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "middleware_gateway",
			Name:      "admitted_total",
			Help:      "Total number of requests admitted, by filter.",
		}, []string{"filter"}),
	}
	reg.MustRegister(c.Occupancy, c.Denied, c.Admitted)
	return c
}

// RecordAdmit records an admission decision for filter.
func (c *Collector) RecordAdmit(filter string, allowed bool) {
	if c == nil {
		return
	}
	if allowed {
		c.Admitted.WithLabelValues(filter).Inc()
		return
	}
	c.Denied.WithLabelValues(filter).Inc()
}

// SetOccupancy records the current in-flight count for filter.
func (c *Collector) SetOccupancy(filter string, n int) {
	if c == nil {
		return
	}
	c.Occupancy.WithLabelValues(filter).Set(float64(n))
}
