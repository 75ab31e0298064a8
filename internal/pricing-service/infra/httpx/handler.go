package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/flight-services/internal/pricing-service/domain"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Quote serves GET /api/pricing/quote?baseFare=..&currency=..&bags=..
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rawFare := strings.TrimSpace(q.Get("baseFare"))
	if rawFare == "" {
		writeText(w, http.StatusBadRequest, "baseFare is required")
		return
	}
	baseFare, err := decimal.NewFromString(rawFare)
	if err != nil {
		writeText(w, http.StatusBadRequest, "baseFare must be a decimal number")
		return
	}

	rawBags := strings.TrimSpace(q.Get("bags"))
	if rawBags == "" {
		writeText(w, http.StatusBadRequest, "bags is required")
		return
	}
	bags, err := strconv.Atoi(rawBags)
	if err != nil {
		writeText(w, http.StatusBadRequest, "bags must be an integer")
		return
	}

	quote, err := domain.ComputeQuote(baseFare, q.Get("currency"), bags)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "compute quote failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, QuoteResponse{
		BaseFare:     money(quote.BaseFare),
		Tax:          money(quote.Tax),
		BagFees:      money(quote.BagFees),
		TotalFare:    money(quote.Total),
		Currency:     quote.Currency,
		RulesVersion: quote.RulesVersion,
	})
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeText is used for validation failures: the message is the whole body.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
