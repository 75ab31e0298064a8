package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/gateway"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/resilience"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/search"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/infra/adapters/inventory"
	"github.com/jcmexdev/flight-services/internal/pkg/interceptors/constants"
)

type fakeDownstream struct {
	QuoteFn func(ctx context.Context, req ports.QuoteRequest) (ports.QuoteResult, error)
}

func (f *fakeDownstream) Quote(ctx context.Context, req ports.QuoteRequest) (ports.QuoteResult, error) {
	return f.QuoteFn(ctx, req)
}

type failingInventory struct{}

func (failingInventory) FindFlights(context.Context, string, string, time.Time, time.Time) ([]domain.FlightCandidate, error) {
	return nil, errors.New("connection reset")
}

func (failingInventory) ListFlights(context.Context) ([]domain.FlightCandidate, error) {
	return nil, errors.New("connection reset")
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testFlights() []domain.FlightCandidate {
	d := func(s string) time.Time { t, _ := time.Parse(domain.DateLayout, s); return t }
	return []domain.FlightCandidate{
		{FlightNumber: "IB3101", Airline: "IB", Origin: "MAD", Destination: "BCN", DepartureDate: d("2025-12-10"), Cabin: "ECONOMY",
			BaseFare: decimal.NewNullDecimal(decimal.RequireFromString("100")), Currency: "EUR", SeatsAvailable: 10},
		{FlightNumber: "VY1003", Airline: "VY", Origin: "MAD", Destination: "BCN", DepartureDate: d("2025-12-11"), Cabin: "ECONOMY",
			Currency: "EUR", SeatsAvailable: 3},
	}
}

func newTestRouter(inv ports.Inventory, ds ports.PricingDownstream) (http.Handler, *resilience.CircuitBreaker) {
	breaker := resilience.NewCircuitBreaker("pricing", resilience.BreakerConfig{FailureThreshold: 1})
	gw := gateway.New(ds, breaker,
		gateway.WithRetryPolicy(resilience.RetryPolicy{MaxAttempts: 1, AttemptTimeout: 50 * time.Millisecond}),
		gateway.WithLogger(quiet),
	)
	orch := search.NewOrchestrator(inv, gw, 2, quiet)
	return NewRouter(NewHandler(orch, inv, breaker)), breaker
}

func healthyPricing() *fakeDownstream {
	return &fakeDownstream{QuoteFn: func(_ context.Context, req ports.QuoteRequest) (ports.QuoteResult, error) {
		return ports.QuoteResult{Total: req.BaseFare.Mul(decimal.RequireFromString("1.21")), Currency: "EUR"}, nil
	}}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchFlights(t *testing.T) {
	router, _ := newTestRouter(inventory.NewMemoryInventory(testFlights()...), healthyPricing())

	rec := get(t, router, "/api/flights/search?origin=mad&destination=bcn&dateFrom=2025-12-01&dateTo=2025-12-31&seats=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(constants.HeaderXPricingDegraded); got != "0" {
		t.Errorf("degraded header = %q", got)
	}

	var body []PricedFlightResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("len = %d", len(body))
	}
	if body[0].Flight.FlightNumber != "IB3101" || body[0].TotalPrice.String() != "121.00" || body[0].Currency != "EUR" {
		t.Errorf("first = %+v", body[0])
	}
	if body[1].Flight.BaseFare != nil {
		t.Errorf("missing fare rendered as %v", *body[1].Flight.BaseFare)
	}
	if !strings.Contains(rec.Body.String(), `"totalPrice":121.00`) {
		t.Errorf("amount not rendered with two decimals: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "degraded") {
		t.Errorf("body exposes degraded flag: %s", rec.Body.String())
	}
}

func TestSearchFlightsDegradedHeader(t *testing.T) {
	down := &fakeDownstream{QuoteFn: func(context.Context, ports.QuoteRequest) (ports.QuoteResult, error) {
		return ports.QuoteResult{}, errors.New("unavailable")
	}}
	router, breaker := newTestRouter(inventory.NewMemoryInventory(testFlights()...), down)

	rec := get(t, router, "/api/flights/search?origin=MAD&destination=BCN&dateFrom=2025-12-01&dateTo=2025-12-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(constants.HeaderXPricingDegraded); got != "2" {
		t.Errorf("degraded header = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"totalPrice":100.00,"currency":"USD"`) ||
		!strings.Contains(rec.Body.String(), `"totalPrice":0.00,"currency":"USD"`) {
		t.Errorf("fallback prices missing: %s", rec.Body.String())
	}
	if breaker.Snapshot().State != resilience.StateOpen {
		t.Errorf("breaker state = %s", breaker.Snapshot().State)
	}
}

func TestSearchFlightsValidation(t *testing.T) {
	router, _ := newTestRouter(inventory.NewMemoryInventory(testFlights()...), healthyPricing())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"missing origin", "destination=BCN&dateFrom=2025-12-01&dateTo=2025-12-31", "origin is required"},
		{"bad date", "origin=MAD&destination=BCN&dateFrom=01/12/2025&dateTo=2025-12-31", "dateFrom must be an ISO date"},
		{"inverted range", "origin=MAD&destination=BCN&dateFrom=2025-12-31&dateTo=2025-12-01", "dateFrom must be <= dateTo"},
		{"zero seats", "origin=MAD&destination=BCN&dateFrom=2025-12-01&dateTo=2025-12-31&seats=0", "seats must be >= 1"},
		{"bad passenger", "origin=MAD&destination=BCN&dateFrom=2025-12-01&dateTo=2025-12-31&passengerType=PET", "unknown passengerType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, "/api/flights/search?"+tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
				t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestSearchFlightsInventoryFailure(t *testing.T) {
	router, _ := newTestRouter(failingInventory{}, healthyPricing())

	rec := get(t, router, "/api/flights/search?origin=MAD&destination=BCN&dateFrom=2025-12-01&dateTo=2025-12-31")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = get(t, router, "/api/flights")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("list status = %d", rec.Code)
	}
}

func TestListFlights(t *testing.T) {
	router, _ := newTestRouter(inventory.NewMemoryInventory(testFlights()...), healthyPricing())

	rec := get(t, router, "/api/flights")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body []FlightResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 2 || body[0].DepartureDate != "2025-12-10" {
		t.Errorf("body = %+v", body)
	}
}

func TestCircuitAdmin(t *testing.T) {
	router, breaker := newTestRouter(inventory.NewMemoryInventory(testFlights()...), healthyPricing())

	trial, _ := breaker.Acquire()
	breaker.OnFailure(trial)

	rec := get(t, router, "/admin/circuit")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"OPEN"`) {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/circuit/reset", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"CLOSED"`) {
		t.Fatalf("reset status = %d body = %s", rec.Code, rec.Body.String())
	}
	if breaker.Snapshot().State != resilience.StateClosed {
		t.Error("breaker not reset")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(inventory.NewMemoryInventory(), healthyPricing())

	if rec := get(t, router, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := get(t, router, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("metrics = %d", rec.Code)
	}
}
