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

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/gateway"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/resilience"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/search"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/infra/adapters/inventory"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/infra/adapters/pricing"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/infra/httpx"
	"github.com/jcmexdev/flight-services/internal/pkg/config"
	"github.com/jcmexdev/flight-services/internal/pkg/telemetry"
	pricingv1 "github.com/jcmexdev/flight-services/internal/rpc/pricing/v1"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadSearch()
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

	inv, closeInventory, err := openInventory(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open flight inventory", "error", err)
		os.Exit(1)
	}
	defer closeInventory()

	conn, err := pricing.Dial(cfg.PricingServiceAddr)
	if err != nil {
		slog.Error("failed to create pricing client", "addr", cfg.PricingServiceAddr, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	breaker := resilience.NewCircuitBreaker("pricing-service", resilience.BreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		FailureWindow:    cfg.Breaker.FailureWindow,
		ResetTimeout:     cfg.Breaker.ResetTimeout,
	}, resilience.WithStateChangeHook(gateway.ObserveCircuitState))
	gateway.ObserveCircuitState(breaker.Name(), resilience.StateClosed, resilience.StateClosed)

	gw := gateway.New(
		pricing.NewGRPCPricing(pricingv1.NewPricingClient(conn)),
		breaker,
		gateway.WithRetryPolicy(resilience.RetryPolicy{
			MaxAttempts:    cfg.Pricing.MaxAttempts,
			Backoff:        cfg.Pricing.Backoff,
			AttemptTimeout: cfg.Pricing.AttemptTimeout,
		}),
		gateway.WithLogger(logger),
	)
	orchestrator := search.NewOrchestrator(inv, gw, cfg.Concurrency, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(orchestrator, inv, breaker)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("flight search service running", "addr", cfg.HTTPAddr, "pricing_addr", cfg.PricingServiceAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down flight search service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

// openInventory picks Postgres when a database URL is set and the seeded
// in-memory store otherwise. An empty Postgres table is seeded too.
func openInventory(ctx context.Context, databaseURL string) (ports.Inventory, func(), error) {
	if databaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory flight inventory")
		return inventory.NewMemoryInventory(inventory.SeedFlights(time.Now())...), func() {}, nil
	}

	pool, err := inventory.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	inv := inventory.NewPostgresInventory(pool)

	n, err := inv.Count(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if n == 0 {
		for _, f := range inventory.SeedFlights(time.Now()) {
			if err := inv.Insert(ctx, f); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		slog.Info("seeded empty flight inventory")
	}
	return inv, pool.Close, nil
}
