package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/flight-services/internal/pkg/cache"
	"github.com/jcmexdev/flight-services/internal/pkg/interceptors"
	"github.com/jcmexdev/flight-services/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/flight-services/internal/pricing-service/domain"
	pricingv1 "github.com/jcmexdev/flight-services/internal/rpc/pricing/v1"
)

const dateLayout = "2006-01-02"

// Server answers pricing.v1.Pricing/Quote. Quotes are cached when a cache is
// configured; a failing cache never fails a quote.
type Server struct {
	pricingv1.UnimplementedPricingServer
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewServer accepts a nil cache, in which case every quote is computed.
func NewServer(c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cache: c, cacheTTL: cacheTTL, logger: logger}
}

func (s *Server) Quote(ctx context.Context, req *pricingv1.QuoteRequest) (*pricingv1.QuoteResponse, error) {
	in, err := validateQuoteRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	reqID := interceptors.GetMetadataValue(ctx, constants.HeaderXRequestId)

	key := ""
	if s.cache != nil {
		key = s.cache.GenerateKey("quote",
			in.flightNumber, in.date, in.passengerType, strconv.Itoa(in.seats), in.baseFare.String(), in.currency)
		if resp, ok := s.fromCache(ctx, key); ok {
			s.logger.DebugContext(ctx, "quote served from cache", "request_id", reqID, "flight_number", in.flightNumber)
			return resp, nil
		}
	}

	q, err := domain.QuoteSeats(in.baseFare, in.currency, in.seats)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Errorf(codes.Internal, "compute quote: %v", err)
	}

	resp := &pricingv1.QuoteResponse{
		BaseFare:     q.PerSeat.BaseFare.StringFixed(2),
		SeatFeeTotal: q.SeatFeeTotal.StringFixed(2),
		Total:        q.Total.StringFixed(2),
		Currency:     q.PerSeat.Currency,
		RulesVersion: q.PerSeat.RulesVersion,
	}

	s.logger.InfoContext(ctx, "quote computed",
		"request_id", reqID,
		"flight_number", in.flightNumber,
		"date", in.date,
		"passenger_type", in.passengerType,
		"seats", in.seats,
		"total", resp.Total,
		"currency", resp.Currency,
	)

	if key != "" {
		s.toCache(ctx, key, resp)
	}
	return resp, nil
}

type quoteInput struct {
	flightNumber  string
	date          string
	passengerType string
	seats         int
	baseFare      decimal.Decimal
	currency      string
}

func validateQuoteRequest(req *pricingv1.QuoteRequest) (quoteInput, error) {
	if req == nil {
		return quoteInput{}, errors.New("request is required")
	}
	in := quoteInput{
		flightNumber:  strings.TrimSpace(req.FlightNumber),
		date:          strings.TrimSpace(req.DepartureDate),
		passengerType: strings.ToUpper(strings.TrimSpace(req.PassengerType)),
		seats:         int(req.Seats),
	}
	if in.flightNumber == "" {
		return quoteInput{}, errors.New("flight_number is required")
	}
	if _, err := time.Parse(dateLayout, in.date); err != nil {
		return quoteInput{}, errors.New("departure_date must be YYYY-MM-DD")
	}
	if in.passengerType == "" {
		in.passengerType = "ADULT"
	}
	if in.passengerType != "ADULT" && in.passengerType != "CHILD" {
		return quoteInput{}, errors.New("passenger_type must be ADULT or CHILD")
	}
	if in.seats < 1 {
		return quoteInput{}, errors.New("seats must be >= 1")
	}
	fare, err := decimal.NewFromString(strings.TrimSpace(req.BaseFare))
	if err != nil {
		return quoteInput{}, errors.New("base_fare must be a decimal number")
	}
	in.baseFare = fare
	curr, err := domain.NormalizeCurrency(req.Currency)
	if err != nil {
		return quoteInput{}, err
	}
	in.currency = curr
	return in, nil
}

func (s *Server) fromCache(ctx context.Context, key string) (*pricingv1.QuoteResponse, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "quote cache read failed", "key", key, "error", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var resp pricingv1.QuoteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		s.logger.WarnContext(ctx, "quote cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return &resp, true
}

func (s *Server) toCache(ctx context.Context, key string, resp *pricingv1.QuoteResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "quote cache write failed", "key", key, "error", err)
	}
}
