package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
)

// FlightFinder returns the flights between two airports departing within
// [from, to], both ends inclusive. Codes match case-insensitively.
type FlightFinder interface {
	FindFlights(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.FlightCandidate, error)
}

type FlightLister interface {
	ListFlights(ctx context.Context) ([]domain.FlightCandidate, error)
}

// Inventory is what the HTTP layer needs from the flight store.
type Inventory interface {
	FlightFinder
	FlightLister
}

type QuoteRequest struct {
	FlightNumber  string
	DepartureDate time.Time
	PassengerType domain.PassengerType
	Seats         int
	BaseFare      decimal.Decimal
	Currency      string
}

type QuoteResult struct {
	Total    decimal.Decimal
	Currency string
}

// PricingDownstream is the remote pricing service. Implementations should
// honour ctx cancellation; callers bound every call with a deadline anyway.
type PricingDownstream interface {
	Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error)
}
