package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	FlightNumber  string           `json:"flightNumber"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	DepartureDate string           `json:"departureDate"`
	SeatCount     int              `json:"seatCount"`
	PersonType    string           `json:"personType"`
	TotalFare     *decimal.Decimal `json:"totalFare"`
	Currency      string           `json:"currency"`
}

type BookingResponse struct {
	RecordLocator string      `json:"recordLocator"`
	FlightNumber  string      `json:"flightNumber"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
	SeatCount     int         `json:"seatCount"`
	PersonType    string      `json:"personType"`
	TotalFare     json.Number `json:"totalFare"`
	Currency      string      `json:"currency"`
	Status        string      `json:"status"`
	CreatedAt     string      `json:"createdAt"`
}

type SagaLogResponse struct {
	Status        string          `json:"status"`
	CurrentStep   string          `json:"currentStep,omitempty"`
	ErrorMessages json.RawMessage `json:"errorMessages"`
	TraceID       string          `json:"traceId,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
