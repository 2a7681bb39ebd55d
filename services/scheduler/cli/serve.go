package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dhairyashah5122/project-hotelrover/internal/cliutil"
	redisstore "github.com/Dhairyashah5122/project-hotelrover/internal/redis"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
	"github.com/Dhairyashah5122/project-hotelrover/services/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduler",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("schedule", scheduler.DefaultSchedule, "cron expression (UTC) for the daily snapshot")
	f.Duration("lease-ttl", 5*time.Minute, "how long the leader lease is held")
	f.Bool("run-now", false, "also snapshot the previous day immediately on startup")
	f.String("metrics-addr", ":9093", "Prometheus metrics server address")
	f.String("otel-endpoint", "", "OTLP HTTP endpoint for tracing (e.g. localhost:4318); empty disables tracing")
	bindFlags(f, map[string]string{
		"schedule":      "schedule",
		"lease_ttl":     "lease-ttl",
		"metrics_addr":  "metrics-addr",
		"otel_endpoint": "otel-endpoint",
	})
	_ = viper.BindEnv("otel_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	logger := cliutil.BuildLogger(cfg.LogLevel, "scheduler")

	shutdownTracer, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName: "scheduler",
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer shutdownTracer()

	d, err := buildScheduler(cfg, scheduler.WithLogger(logger))
	if err != nil {
		return err
	}
	defer d.closeAll()

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	telemetry.StartMetricsServer(runCtx, cfg.MetricsAddr, logger, map[string]telemetry.ReadyCheck{
		"postgres": d.repo.Ping,
		"redis":    redisstore.Ready(d.redis),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-quit
		logger.Info("shutting down...")
		runCancel()
	}()

	if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
		if _, err := d.sched.RunOnce(runCtx); err != nil {
			logger.Error("startup snapshot failed", slog.String("error", err.Error()))
		}
	}

	logger.Info("scheduler starting", slog.String("schedule", cfg.Schedule))
	d.sched.Run(runCtx)
	logger.Info("stopped")
	return nil
}
