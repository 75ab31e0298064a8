package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/flight-services/internal/booking-service/app"
	"github.com/jcmexdev/flight-services/internal/booking-service/domain"
	"github.com/jcmexdev/flight-services/internal/booking-service/saga"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req domain.NewBooking) (*domain.Booking, error)
	GetBooking(ctx context.Context, locator string) (*domain.Booking, error)
	BookingHistory(ctx context.Context, locator string) ([]saga.LogEntry, error)
}

type Handler struct {
	service BookingService
}

func NewHandler(service BookingService) *Handler {
	return &Handler{service: service}
}

// CreateBooking books seats and answers with the confirmed booking.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	in := domain.NewBooking{
		FlightNumber: req.FlightNumber,
		Origin:       req.Origin,
		Destination:  req.Destination,
		SeatCount:    req.SeatCount,
		PersonType:   req.PersonType,
		TotalFare:    req.TotalFare,
		Currency:     req.Currency,
	}
	if raw := strings.TrimSpace(req.DepartureDate); raw != "" {
		dep, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "departureDate must be an ISO date (YYYY-MM-DD)")
			return
		}
		in.DepartureDate = &dep
	}

	b, err := h.service.CreateBooking(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, mapBooking(b))
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, app.ErrBookingFailed):
		slog.ErrorContext(r.Context(), "booking failed", "error", err)
		writeError(w, http.StatusBadGateway, "booking_failed", err.Error())
	default:
		slog.ErrorContext(r.Context(), "booking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBooking(r.Context(), chi.URLParam(r, "recordLocator"))
	if err != nil {
		h.lookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBooking(b))
}

func (h *Handler) BookingHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.BookingHistory(r.Context(), chi.URLParam(r, "recordLocator"))
	if err != nil {
		h.lookupError(w, r, err)
		return
	}
	out := make([]SagaLogResponse, len(entries))
	for i, e := range entries {
		out[i] = SagaLogResponse{
			Status:        string(e.Status),
			CurrentStep:   e.CurrentStep,
			ErrorMessages: json.RawMessage(e.ErrorMessages),
			TraceID:       e.TraceID,
			UpdatedAt:     e.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking_not_found", "")
		return
	}
	slog.ErrorContext(r.Context(), "booking lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}

func mapBooking(b *domain.Booking) BookingResponse {
	return BookingResponse{
		RecordLocator: b.RecordLocator,
		FlightNumber:  b.FlightNumber,
		Origin:        b.Origin,
		Destination:   b.Destination,
		DepartureDate: b.DepartureDate.Format(domain.DateLayout),
		SeatCount:     b.SeatCount,
		PersonType:    b.PersonType,
		TotalFare:     json.Number(b.TotalFare.StringFixed(2)),
		Currency:      b.Currency,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
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
