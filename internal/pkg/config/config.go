// Package config loads service configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jcmexdev/flight-services/internal/pkg/telemetry"
)

// LoadDotEnv reads .env if it exists. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}
}

// Common holds what every binary needs.
type Common struct {
	LogLevel  string
	Telemetry telemetry.TracerConfig
}

type SearchConfig struct {
	Common
	HTTPAddr           string
	PricingServiceAddr string
	// DatabaseURL selects the Postgres inventory; empty means the seeded in-memory one.
	DatabaseURL string
	Pricing     PricingCallConfig
	Breaker     BreakerConfig
	Concurrency int
}

// PricingCallConfig bounds each call from search to pricing.
type PricingCallConfig struct {
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

type BreakerConfig struct {
	FailureThreshold int
	FailureWindow    time.Duration
	ResetTimeout     time.Duration
}

type PricingServiceConfig struct {
	Common
	GRPCAddr      string
	HTTPAddr      string
	RedisAddr     string
	QuoteCacheTTL time.Duration
}

type BookingConfig struct {
	Common
	HTTPAddr     string
	SQLitePath   string
	KafkaBrokers []string
	KafkaTopic   string
}

func loadCommon(defaultService string) Common {
	return Common{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Telemetry: telemetry.TracerConfig{
			ServiceName: getEnv("OTEL_SERVICE_NAME", defaultService),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Environment: getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", "local"),
			SampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func LoadSearch() SearchConfig {
	return SearchConfig{
		Common:             loadCommon("flight-search-service"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		PricingServiceAddr: getEnv("PRICING_SERVICE_ADDR", "localhost:9091"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Pricing: PricingCallConfig{
			MaxAttempts:    getEnvInt("PRICING_MAX_ATTEMPTS", 3),
			Backoff:        getEnvDuration("PRICING_BACKOFF", 100*time.Millisecond),
			AttemptTimeout: getEnvDuration("PRICING_ATTEMPT_TIMEOUT", 2*time.Second),
		},
		Breaker: BreakerConfig{
			FailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
			FailureWindow:    getEnvDuration("BREAKER_FAILURE_WINDOW", 60*time.Second),
			ResetTimeout:     getEnvDuration("BREAKER_RESET_TIMEOUT", 30*time.Second),
		},
		Concurrency: getEnvInt("SEARCH_CONCURRENCY", 8),
	}
}

func LoadPricing() PricingServiceConfig {
	return PricingServiceConfig{
		Common:        loadCommon("pricing-service"),
		GRPCAddr:      getEnv("GRPC_ADDR", ":9091"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8081"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		QuoteCacheTTL: getEnvDuration("QUOTE_CACHE_TTL", 5*time.Minute),
	}
}

func LoadBooking() BookingConfig {
	return BookingConfig{
		Common:       loadCommon("booking-service"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8082"),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/bookings.db"),
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "booking.events"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

// getEnvDuration accepts Go durations ("250ms", "2s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvSlice(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
