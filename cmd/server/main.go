package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"checkout/internal/audit"
	checkoutHandler "checkout/internal/checkout/handler"
	checkoutMetrics "checkout/internal/checkout/metrics"
	checkoutService "checkout/internal/checkout/service"
	"checkout/internal/checkout/store"
	"checkout/internal/platform/config"
	"checkout/internal/platform/httpserver"
	"checkout/internal/platform/logger"
	"checkout/internal/platform/metrics"
	"checkout/internal/platform/ratelimit"
	"checkout/internal/platform/redis"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("checkout server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	httpMetrics := metrics.New(prometheus.DefaultRegisterer)
	checkoutMetricsSet := checkoutMetrics.New(prometheus.DefaultRegisterer)

	g, ctx := errgroup.WithContext(ctx)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var (
		sessions checkoutService.Store
		health   healthChecker
	)
	if redisClient != nil {
		defer redisClient.Close()
		health = redisClient
		sessions = store.NewRedis(redisClient.Client)
		log.Info("using redis session store")
	} else {
		memory := store.NewInMemoryStore()
		sessions = memory
		sweeper := checkoutService.NewSweeper(memory, sweepInterval, checkoutMetricsSet, log)
		g.Go(func() error { return sweeper.Run(ctx) })
		log.Info("using in-memory session store")
	}

	auditPipe, err := buildAudit(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer auditPipe.close()
	if auditPipe.worker != nil {
		g.Go(func() error { return auditPipe.worker.Run(ctx) })
	}

	svc := checkoutService.New(sessions,
		checkoutService.WithLogger(log),
		checkoutService.WithMetrics(checkoutMetricsSet),
		checkoutService.WithAuditPublisher(audit.NewPublisher(auditPipe.store)),
		checkoutService.WithSessionTTL(cfg.SessionTTL),
	)

	r := chi.NewRouter()
	r.Get("/healthz", healthHandler(health))
	r.Handle("/metrics", promhttp.Handler())
	limiter := ratelimit.NewSlidingWindow(cfg.RateLimit.SessionsPerWindow, cfg.RateLimit.Window)
	g.Go(func() error { return limiter.PruneEvery(ctx, cfg.RateLimit.Window) })

	h := checkoutHandler.New(svc, log, httpMetrics, cfg.Server.RequestTimeout)
	h.LimitStarts(ratelimit.NewMiddleware(limiter, log,
		ratelimit.WithTrustedForwardedFor(cfg.RateLimit.TrustForwardedFor),
	).Handler)
	h.Register(r)

	srv := httpserver.New(cfg.Server.Addr, r)

	g.Go(func() error {
		log.Info("starting checkout server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down checkout server")
		err := srv.Shutdown(shutdownCtx)
		auditPipe.stop()
		return err
	})

	return g.Wait()
}
