package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/cliutil"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/kafka"
	"github.com/Dhairyashah5122/project-hotelrover/internal/memstore"
	"github.com/Dhairyashah5122/project-hotelrover/internal/postgres"
	redisstore "github.com/Dhairyashah5122/project-hotelrover/internal/redis"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
	"github.com/Dhairyashah5122/project-hotelrover/services/api-gateway/config"
	"github.com/Dhairyashah5122/project-hotelrover/services/api-gateway/handler"
	"github.com/Dhairyashah5122/project-hotelrover/services/api-gateway/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("http-port", "8080", "HTTP server port")
	f.String("metrics-addr", ":9095", "Prometheus metrics server address")
	f.String("store", "postgres", "entity store: postgres | memory")
	f.String("kafka-brokers", "localhost:9092", "comma-separated Kafka broker addresses; empty disables lifecycle events")
	f.String("redis-addr", "localhost:6379", "Redis address; empty disables rate limiting and daily snapshots")
	f.Int("rate-limit", 30, "transition requests allowed per client per window")
	f.Duration("rate-limit-window", time.Minute, "rate limit sliding window")
	f.Int64("max-body-bytes", 1<<20, "maximum request body size")
	f.String("otel-endpoint", "", "OTLP HTTP endpoint for tracing (e.g. localhost:4318); empty disables tracing")

	for key, flag := range map[string]string{
		"http_port":         "http-port",
		"metrics_addr":      "metrics-addr",
		"store":             "store",
		"kafka_brokers":     "kafka-brokers",
		"redis_addr":        "redis-addr",
		"rate_limit":        "rate-limit",
		"rate_limit_window": "rate-limit-window",
		"max_body_bytes":    "max-body-bytes",
		"otel_endpoint":     "otel-endpoint",
	} {
		cliutil.BindFlag(key, f, flag)
	}
	_ = viper.BindEnv("otel_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// backend is what both entity stores provide.
type backend interface {
	assignment.Store
	handler.Entities
	handler.AuditTrail
	RecordEvent(ctx context.Context, ev *domain.Event) error
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load(viper.GetViper())
	logger := cliutil.BuildLogger(cfg.LogLevel, "api-gateway")

	shutdownTracer, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName: "api-gateway",
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer shutdownTracer()

	checks := map[string]telemetry.ReadyCheck{}

	var store backend
	switch cfg.Store {
	case "memory":
		store = memstore.New()
		logger.Warn("using in-memory store, data is lost on restart")
	case "postgres", "":
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := postgres.NewPool(initCtx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		repo := postgres.NewRepository(pool)
		checks["postgres"] = repo.Ping
		store = repo
	default:
		return fmt.Errorf("unknown store %q (want postgres or memory)", cfg.Store)
	}

	svcOpts := []assignment.Option{assignment.WithLogger(logger)}
	if brokers := cliutil.SplitList(cfg.KafkaBrokers); len(brokers) > 0 {
		producer := kafka.NewProducer(brokers)
		defer func() { _ = producer.Close() }()
		svcOpts = append(svcOpts, assignment.WithPublisher(kafka.NewEventPublisher(producer)))
	} else if cfg.Store == "memory" {
		// Without a notifier the gateway keeps its own audit trail.
		svcOpts = append(svcOpts, assignment.WithPublisher(auditPublisher{store}))
	}
	svc := assignment.NewService(store, svcOpts...)

	restOpts := []handler.Option{handler.WithAuditTrail(store), handler.WithReadyChecks(checks)}
	var transitionLimit func(http.Handler) http.Handler
	if cfg.RedisAddr != "" {
		redisClient := redisstore.NewClient(cfg.RedisAddr)
		defer func() { _ = redisClient.Close() }()
		checks["redis"] = redisstore.Ready(redisClient)
		restOpts = append(restOpts, handler.WithSnapshots(redisstore.NewSnapshotStore(redisClient)))
		if cfg.RateLimit > 0 {
			limiter := redisstore.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow)
			transitionLimit = middleware.RateLimit(limiter, logger)
		}
	}
	restHandler := handler.NewREST(svc, store, logger, restOpts...)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	restHandler.Routes(r, transitionLimit)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	telemetry.StartMetricsServer(runCtx, cfg.MetricsAddr, logger, checks)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api-gateway HTTP starting",
			slog.String("addr", httpSrv.Addr),
			slog.String("store", cfg.Store),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down...")
	runCancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Error("HTTP shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("stopped")
	return nil
}

type auditPublisher struct{ store backend }

func (p auditPublisher) Publish(ctx context.Context, ev *domain.Event) error {
	return p.store.RecordEvent(ctx, ev)
}
