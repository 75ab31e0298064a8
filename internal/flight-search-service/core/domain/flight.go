package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of every calendar date in the search API.
const DateLayout = "2006-01-02"

// FlightCandidate is a flight returned by the inventory, before pricing.
// BaseFare is invalid when the inventory row carries no fare.
type FlightCandidate struct {
	FlightNumber   string
	Airline        string
	Origin         string
	Destination    string
	DepartureDate  time.Time
	Cabin          string
	BaseFare       decimal.NullDecimal
	Currency       string
	SeatsAvailable int
}

// PricedFlight is the result of pricing one candidate. Degraded is set when
// the price came from the local fallback instead of the pricing service.
type PricedFlight struct {
	Flight     FlightCandidate
	TotalPrice decimal.Decimal
	Currency   string
	Degraded   bool
}
