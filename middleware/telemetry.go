package middleware

import (
	"context"
	"net/http"
	"time"

	"middleware-gateway/metrics"
	"middleware-gateway/middleware/ratelimit/domain"

	"github.com/rs/zerolog"
)

// Telemetry is embedded in each filter's Options. Every sink is
// best-effort and optional: a nil Stats, nil Logger or nil Metrics
// simply skips that sink.
type Telemetry struct {
	Stats   domain.StatsStore
	Logger  *zerolog.Logger
	Metrics *metrics.Collector
}

func (t Telemetry) record(ctx context.Context, filter, key string, allowed bool, r *http.Request) {
	if t.Metrics != nil {
		t.Metrics.RecordAdmit(filter, allowed)
	}
	if t.Stats != nil {
		_ = t.Stats.Record(ctx, domain.StatsEvent{
			Key:     domain.Key(key),
			Allowed: allowed,
			Filter:  filter,
			Method:  r.Method,
			Path:    r.URL.Path,
			At:      time.Now(),
		})
	}
	if !allowed && t.Logger != nil {
		t.Logger.Debug().
			Str("filter", filter).
			Str("key", key).
			Str("path", r.URL.Path).
			Msg("request denied")
	}
}
