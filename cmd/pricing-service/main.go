package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/jcmexdev/flight-services/internal/pkg/cache"
	"github.com/jcmexdev/flight-services/internal/pkg/config"
	"github.com/jcmexdev/flight-services/internal/pkg/interceptors"
	"github.com/jcmexdev/flight-services/internal/pkg/telemetry"
	"github.com/jcmexdev/flight-services/internal/pricing-service/app"
	"github.com/jcmexdev/flight-services/internal/pricing-service/infra/httpx"
	pricingv1 "github.com/jcmexdev/flight-services/internal/rpc/pricing/v1"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadPricing()
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

	var quoteCache cache.Cache
	if cfg.RedisAddr != "" {
		quoteCache = cache.NewRedisCache(cfg.RedisAddr, "pricing")
		defer quoteCache.Close()
	} else {
		slog.Warn("REDIS_ADDR not set, quote cache disabled")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor()),
	)
	pricingv1.RegisterPricingServer(grpcServer, app.NewServer(quoteCache, cfg.QuoteCacheTTL, logger))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("pricing service gRPC running", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("failed to serve gRPC", "error", err)
			stop()
		}
	}()
	go func() {
		slog.Info("pricing service HTTP running", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down pricing service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
}
