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

	"github.com/jcmexdev/flight-services/internal/booking-service/app"
	"github.com/jcmexdev/flight-services/internal/booking-service/events"
	"github.com/jcmexdev/flight-services/internal/booking-service/infra/httpx"
	"github.com/jcmexdev/flight-services/internal/booking-service/storage/sqlite"
	"github.com/jcmexdev/flight-services/internal/pkg/config"
	"github.com/jcmexdev/flight-services/internal/pkg/telemetry"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadBooking()
	logger := telemetry.InitLogger(cfg.Telemetry.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repo, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open booking database", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher events.Publisher = events.NopPublisher{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("publishing booking events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		slog.Warn("KAFKA_BROKERS not set, booking events are not published")
	}
	defer publisher.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(app.NewService(repo, publisher, logger))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("booking service running", "addr", cfg.HTTPAddr, "db", cfg.SQLitePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down booking service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
