// Package gateway prices one flight against the pricing service behind a
// retry policy and a circuit breaker. When the service cannot answer, the
// flight is priced locally from its base fare and marked degraded.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/resilience"
)

const DefaultFallbackCurrency = "USD"

type Gateway struct {
	downstream       ports.PricingDownstream
	breaker          *resilience.CircuitBreaker
	retry            resilience.RetryPolicy
	fallbackCurrency string
	logger           *slog.Logger
	tracer           trace.Tracer
}

type Option func(*Gateway)

func WithRetryPolicy(p resilience.RetryPolicy) Option {
	return func(g *Gateway) { g.retry = p }
}

func WithFallbackCurrency(currency string) Option {
	return func(g *Gateway) { g.fallbackCurrency = currency }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

// New builds a gateway around one downstream. The breaker is owned by the
// caller so it can be shared with the admin endpoints.
func New(downstream ports.PricingDownstream, breaker *resilience.CircuitBreaker, opts ...Option) *Gateway {
	g := &Gateway{
		downstream:       downstream,
		breaker:          breaker,
		retry:            resilience.DefaultRetryPolicy(),
		fallbackCurrency: DefaultFallbackCurrency,
		logger:           slog.Default(),
		tracer:           otel.Tracer("flight-search-service/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PriceOne returns the downstream price for seats on flight, or the local
// fallback when the downstream is unavailable or the circuit is open. The
// only errors are precondition failures wrapping domain.ErrInvalidArgument.
func (g *Gateway) PriceOne(ctx context.Context, flight domain.FlightCandidate, pax domain.PassengerType, seats int) (domain.PricedFlight, error) {
	if strings.TrimSpace(flight.FlightNumber) == "" {
		pricingCallsTotal.WithLabelValues(outcomeRejected).Inc()
		return domain.PricedFlight{}, fmt.Errorf("gateway: %w: flight number is required", domain.ErrInvalidArgument)
	}
	if seats < 1 {
		pricingCallsTotal.WithLabelValues(outcomeRejected).Inc()
		return domain.PricedFlight{}, fmt.Errorf("gateway: %w: seats must be >= 1, got %d", domain.ErrInvalidArgument, seats)
	}

	ctx, span := g.tracer.Start(ctx, "pricing.PriceOne", trace.WithAttributes(
		attribute.String("flight.number", flight.FlightNumber),
		attribute.String("passenger.type", string(pax)),
		attribute.Int("seats", seats),
	))
	defer span.End()

	trial, err := g.breaker.Acquire()
	if err != nil {
		g.logger.WarnContext(ctx, "pricing circuit open, using fallback",
			"flight_number", flight.FlightNumber,
			"breaker", g.breaker.Name(),
		)
		span.SetAttributes(attribute.Bool("pricing.degraded", true), attribute.String("pricing.reason", "circuit_open"))
		pricingCallsTotal.WithLabelValues(outcomeCircuitOpen).Inc()
		return g.Fallback(flight), nil
	}

	req := ports.QuoteRequest{
		FlightNumber:  flight.FlightNumber,
		DepartureDate: flight.DepartureDate,
		PassengerType: pax,
		Seats:         seats,
		BaseFare:      flight.BaseFare.Decimal,
		Currency:      flight.Currency,
	}
	if req.Currency == "" {
		req.Currency = g.fallbackCurrency
	}

	res, err := resilience.Retry(ctx, g.retry, g.observeAttempt(ctx, flight.FlightNumber),
		func(ctx context.Context) (ports.QuoteResult, error) {
			return g.downstream.Quote(ctx, req)
		})
	if err != nil {
		// A caller that went away says nothing about the downstream, unless it
		// held the trial permit, which must be handed back.
		if ctx.Err() == nil || trial {
			g.breaker.OnFailure(trial)
		}
		g.logger.WarnContext(ctx, "pricing service unavailable, using fallback",
			"flight_number", flight.FlightNumber,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "pricing unavailable")
		span.SetAttributes(attribute.Bool("pricing.degraded", true), attribute.String("pricing.reason", "unavailable"))
		pricingCallsTotal.WithLabelValues(outcomeUnavailable).Inc()
		return g.Fallback(flight), nil
	}

	g.breaker.OnSuccess(trial)
	pricingCallsTotal.WithLabelValues(outcomePriced).Inc()

	currency := res.Currency
	if currency == "" {
		currency = req.Currency
	}
	return domain.PricedFlight{
		Flight:     flight,
		TotalPrice: res.Total,
		Currency:   currency,
	}, nil
}

// Fallback prices a flight locally: its base fare, or zero when it has none,
// in the fallback currency.
func (g *Gateway) Fallback(flight domain.FlightCandidate) domain.PricedFlight {
	total := decimal.Zero
	if flight.BaseFare.Valid {
		total = flight.BaseFare.Decimal
	}
	return domain.PricedFlight{
		Flight:     flight,
		TotalPrice: total,
		Currency:   g.fallbackCurrency,
		Degraded:   true,
	}
}

func (g *Gateway) observeAttempt(ctx context.Context, flightNumber string) resilience.AttemptHook {
	return func(attempt int, elapsed time.Duration, err error) {
		result := "ok"
		if err != nil {
			result = "error"
			if errors.Is(err, context.DeadlineExceeded) {
				result = "timeout"
			}
			g.logger.DebugContext(ctx, "pricing attempt failed",
				"flight_number", flightNumber,
				"attempt", attempt,
				"elapsed", elapsed,
				"error", err,
			)
		}
		pricingAttemptDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	}
}
