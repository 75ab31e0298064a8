package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/resilience"
	"github.com/jcmexdev/flight-services/internal/pkg/interceptors/constants"
)

type Searcher interface {
	SearchAndPrice(ctx context.Context, criteria domain.SearchCriteria) ([]domain.PricedFlight, error)
}

// CircuitAdmin is the operator view of the pricing circuit breaker.
type CircuitAdmin interface {
	Snapshot() resilience.Snapshot
	Reset()
}

type Handler struct {
	searcher Searcher
	lister   ports.FlightLister
	circuit  CircuitAdmin
}

func NewHandler(searcher Searcher, lister ports.FlightLister, circuit CircuitAdmin) *Handler {
	return &Handler{
		searcher: searcher,
		lister:   lister,
		circuit:  circuit,
	}
}

// SearchFlights serves GET /api/flights/search.
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.searcher.SearchAndPrice(r.Context(), criteria)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "flight search failed", "error", err)
		writeError(w, http.StatusBadGateway, "inventory_unavailable", err.Error())
		return
	}

	body, degraded := mapPricedFlights(results)
	w.Header().Set(constants.HeaderXPricingDegraded, strconv.Itoa(degraded))
	writeJSON(w, http.StatusOK, body)
}

// ListFlights serves GET /api/flights.
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.lister.ListFlights(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list flights failed", "error", err)
		writeError(w, http.StatusBadGateway, "inventory_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapFlights(flights))
}

func (h *Handler) CircuitStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.circuit.Snapshot())
}

func (h *Handler) ResetCircuit(w http.ResponseWriter, r *http.Request) {
	before := h.circuit.Snapshot()
	h.circuit.Reset()
	slog.WarnContext(r.Context(), "pricing circuit reset by operator",
		"name", before.Name,
		"previous_state", before.State,
	)
	writeJSON(w, http.StatusOK, h.circuit.Snapshot())
}

func parseCriteria(r *http.Request) (domain.SearchCriteria, error) {
	q := r.URL.Query()

	for _, name := range []string{"origin", "destination", "dateFrom", "dateTo"} {
		if strings.TrimSpace(q.Get(name)) == "" {
			return domain.SearchCriteria{}, fmt.Errorf("%s is required", name)
		}
	}

	from, err := time.Parse(domain.DateLayout, strings.TrimSpace(q.Get("dateFrom")))
	if err != nil {
		return domain.SearchCriteria{}, errors.New("dateFrom must be an ISO date (YYYY-MM-DD)")
	}
	to, err := time.Parse(domain.DateLayout, strings.TrimSpace(q.Get("dateTo")))
	if err != nil {
		return domain.SearchCriteria{}, errors.New("dateTo must be an ISO date (YYYY-MM-DD)")
	}

	pax, err := domain.ParsePassengerType(q.Get("passengerType"))
	if err != nil {
		return domain.SearchCriteria{}, err
	}

	seats := 1
	if raw := strings.TrimSpace(q.Get("seats")); raw != "" {
		if seats, err = strconv.Atoi(raw); err != nil {
			return domain.SearchCriteria{}, errors.New("seats must be an integer")
		}
	}

	return domain.SearchCriteria{
		Origin:        q.Get("origin"),
		Destination:   q.Get("destination"),
		DateFrom:      from,
		DateTo:        to,
		PassengerType: pax,
		Seats:         seats,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
