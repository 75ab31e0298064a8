package httpx

import (
	"encoding/json"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
)

type FlightResponse struct {
	FlightNumber   string       `json:"flightNumber"`
	Airline        string       `json:"airline"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	DepartureDate  string       `json:"departureDate"`
	Cabin          string       `json:"cabin"`
	BaseFare       *json.Number `json:"baseFare"`
	Currency       string       `json:"currency"`
	SeatsAvailable int          `json:"seatsAvailable"`
}

// PricedFlightResponse leaves out the degraded flag; the count of degraded
// results travels in the X-Pricing-Degraded header.
type PricedFlightResponse struct {
	Flight     FlightResponse `json:"flight"`
	TotalPrice json.Number    `json:"totalPrice"`
	Currency   string         `json:"currency"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapFlight(f domain.FlightCandidate) FlightResponse {
	out := FlightResponse{
		FlightNumber:   f.FlightNumber,
		Airline:        f.Airline,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureDate:  f.DepartureDate.Format(domain.DateLayout),
		Cabin:          f.Cabin,
		Currency:       f.Currency,
		SeatsAvailable: f.SeatsAvailable,
	}
	if f.BaseFare.Valid {
		n := json.Number(f.BaseFare.Decimal.StringFixed(2))
		out.BaseFare = &n
	}
	return out
}

func mapFlights(fs []domain.FlightCandidate) []FlightResponse {
	out := make([]FlightResponse, len(fs))
	for i, f := range fs {
		out[i] = mapFlight(f)
	}
	return out
}

// mapPricedFlights also returns how many results were priced by fallback.
func mapPricedFlights(ps []domain.PricedFlight) ([]PricedFlightResponse, int) {
	out := make([]PricedFlightResponse, len(ps))
	degraded := 0
	for i, p := range ps {
		if p.Degraded {
			degraded++
		}
		out[i] = PricedFlightResponse{
			Flight:     mapFlight(p.Flight),
			TotalPrice: json.Number(p.TotalPrice.StringFixed(2)),
			Currency:   p.Currency,
		}
	}
	return out, degraded
}
