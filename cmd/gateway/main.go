package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"middleware-gateway/internal/cidr"
	"middleware-gateway/internal/forwardedchain"
	"middleware-gateway/maintenance"
	"middleware-gateway/metrics"
	"middleware-gateway/middleware"
	"middleware-gateway/middleware/ratelimit/domain"
	"middleware-gateway/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := readConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid UPSTREAM_URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).Msg("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	var statsStore domain.StatsStore
	if cfg.rateStatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.rateStatsRedisAddr,
			Password: cfg.rateStatsRedisPassword,
			DB:       cfg.rateStatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("redis stats ping error")
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	collector := metrics.New(reg)

	telemetry := middleware.Telemetry{Stats: statsStore, Logger: &logger, Metrics: collector}
	coordinator := middleware.DefaultCoordinator()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rateIdent := func(r *http.Request) string {
		if cfg.rateKeyHeader != "" {
			if v := r.Header.Get(cfg.rateKeyHeader); v != "" {
				return v
			}
		}
		if cfg.trustXFF {
			if strs := forwardedchain.Strings(r); len(strs) > 0 {
				return strs[0]
			}
		}
		return r.RemoteAddr
	}

	h := http.Handler(proxy)

	if cfg.maintenanceEnabled {
		h = middleware.MaintenanceLimit(middleware.MaintenanceLimitOptions{
			Coordinator: coordinator,
			Ident:       cfg.maintenanceIdent,
			MaxWait:     cfg.maintenanceMaxWait,
			Bypass:      cfg.operatorBypass,
			Telemetry:   telemetry,
		})(h)
	}

	if cfg.concurrencyLimitEnabled {
		h = middleware.ConcurrencyLimit(middleware.ConcurrencyLimitOptions{
			MaxConcurrent: cfg.concurrencyMax,
			MaxWait:       cfg.concurrencyTimeout,
			Telemetry:     telemetry,
		})(h)
	} else {
		h = middleware.ConcurrencyThrottle(middleware.ConcurrencyThrottleOptions{
			MaxConcurrent: cfg.concurrencyMax,
			Telemetry:     telemetry,
		})(h)
	}

	if cfg.rateEnabled {
		h = middleware.RateLimit(middleware.RateLimitOptions{
			MaxRequests: cfg.rateMaxRequests,
			Period:      cfg.ratePeriod,
			MaxWait:     cfg.rateMaxWait,
			IdentFunc:   rateIdent,
			Telemetry:   telemetry,
		})(h)
	} else {
		h = middleware.RateThrottle(middleware.RateThrottleOptions{
			MaxRequests: cfg.rateMaxRequests,
			Period:      cfg.ratePeriod,
			IdentFunc:   rateIdent,
			Telemetry:   telemetry,
		})(h)
	}

	if cfg.allowListEnabled {
		h = middleware.AllowIPs(middleware.AllowIPsOptions{
			AllowList: cfg.allowList,
			Telemetry: telemetry,
		})(h)
	}
	if cfg.denyListEnabled {
		h = middleware.DenyIPs(middleware.DenyIPsOptions{
			DenyList:  cfg.denyList,
			Telemetry: telemetry,
		})(h)
	}

	mux := http.NewServeMux()
	mux.Handle("/", h)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/admin/maintenance/", adminMaintenanceHandler(coordinator, &logger))

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.listenAddr).Str("upstream", target.String()).Msg("gateway listening")
	logger.Info().Bool("rate_enabled", cfg.rateEnabled).Int("max_requests", cfg.rateMaxRequests).Dur("period", cfg.ratePeriod).Msg("rate limit config")
	logger.Info().Bool("concurrency_limit", cfg.concurrencyLimitEnabled).Int("max", cfg.concurrencyMax).Msg("concurrency config")
	logger.Info().Bool("maintenance_enabled", cfg.maintenanceEnabled).Str("ident", cfg.maintenanceIdent).Msg("maintenance config")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// adminMaintenanceHandler exposes POST /admin/maintenance/{ident}?duration=30s,
// closing ident's gate, draining in-flight requests, sleeping for duration,
// then reopening the gate — an operator-triggered maintenance window.
func adminMaintenanceHandler(coordinator *maintenance.Coordinator[string], logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ident := strings.TrimPrefix(r.URL.Path, "/admin/maintenance/")
		if ident == "" {
			http.Error(w, "missing maintenance identity", http.StatusBadRequest)
			return
		}
		duration := 30 * time.Second
		if v := r.URL.Query().Get("duration"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				duration = d
			}
		}

		logger.Info().Str("ident", ident).Dur("duration", duration).Msg("maintenance window opening")
		coordinator.WithMaintenance(ident, func() {
			time.Sleep(duration)
		})
		logger.Info().Str("ident", ident).Msg("maintenance window closed")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("maintenance window complete\n"))
	}
}

type config struct {
	listenAddr         string
	upstreamURL        string
	rateEnabled        bool
	rateMaxRequests    int
	ratePeriod         time.Duration
	rateMaxWait        time.Duration
	rateKeyHeader      string
	trustXFF           bool
	concurrencyMax     int
	concurrencyTimeout time.Duration

	rateStatsEnabled       bool
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool

	concurrencyLimitEnabled bool

	maintenanceEnabled bool
	maintenanceIdent   string
	maintenanceMaxWait time.Duration
	operatorBypass     cidr.ListSource

	allowListEnabled bool
	allowList        cidr.ListSource
	denyListEnabled  bool
	denyList         cidr.ListSource
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateMaxRequests = getenvIntDefault("RATE_MAX_REQUESTS", 500)
	cfg.ratePeriod = getenvDurationDefault("RATE_PERIOD", 60*time.Second)
	cfg.rateMaxWait = getenvDurationDefault("RATE_MAX_WAIT", 50*time.Millisecond)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.concurrencyLimitEnabled = getenvBoolDefault("CONCURRENCY_LIMIT_ENABLED", false)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.rateStatsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	cfg.maintenanceEnabled = getenvBoolDefault("MAINTENANCE_ENABLED", false)
	cfg.maintenanceIdent = getenvDefault("MAINTENANCE_IDENT", ":world")
	cfg.maintenanceMaxWait = getenvDurationDefault("MAINTENANCE_MAX_WAIT", 50*time.Millisecond)
	if raw := os.Getenv("OPERATOR_BYPASS_CIDRS"); raw != "" {
		blocks, err := parseCIDRList(raw)
		if err != nil {
			return config{}, err
		}
		cfg.operatorBypass = cidr.Static(blocks)
	}

	cfg.allowListEnabled = getenvBoolDefault("ALLOW_LIST_ENABLED", false)
	if raw := os.Getenv("ALLOW_LIST_CIDRS"); raw != "" {
		blocks, err := parseCIDRList(raw)
		if err != nil {
			return config{}, err
		}
		cfg.allowList = cidr.Static(blocks)
	}
	cfg.denyListEnabled = getenvBoolDefault("DENY_LIST_ENABLED", false)
	if raw := os.Getenv("DENY_LIST_CIDRS"); raw != "" {
		blocks, err := parseCIDRList(raw)
		if err != nil {
			return config{}, err
		}
		cfg.denyList = cidr.Static(blocks)
	}

	if cfg.rateStatsEnabled && strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.rateMaxRequests <= 0 {
		return config{}, errors.New("RATE_MAX_REQUESTS must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func parseCIDRList(raw string) ([]cidr.Block, error) {
	var blocks []cidr.Block
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b, err := cidr.Parse(part)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
