package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"middleware-gateway/internal/cidr"
	"middleware-gateway/middleware"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	telemetry := middleware.Telemetry{Logger: &logger}

	perClientIdent := func(r *http.Request) string {
		return r.Header.Get("X-Api-Key")
	}

	h := http.Handler(mux)
	h = middleware.RateLimit(middleware.RateLimitOptions{
		MaxRequests: 5,
		Period:      time.Second,
		MaxWait:     50 * time.Millisecond,
		IdentFunc:   perClientIdent,
		Telemetry:   telemetry,
	})(h)
	h = middleware.ConcurrencyThrottle(middleware.ConcurrencyThrottleOptions{
		MaxConcurrent: 50,
		Telemetry:     telemetry,
	})(h)
	h = middleware.AllowIPs(middleware.AllowIPsOptions{
		AllowList: cidr.Static(cidr.DefaultPrivate()),
		Telemetry: telemetry,
	})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}
