package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("booking not found")
	ErrDuplicateLocator = errors.New("record locator already taken")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

const DateLayout = "2006-01-02"

type Booking struct {
	ID            string
	RecordLocator string
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate time.Time
	SeatCount     int
	PersonType    string
	TotalFare     decimal.Decimal
	Currency      string
	Status        Status
	// TraceID and SpanID identify the request that created the booking.
	TraceID   string
	SpanID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBooking is the validated input of a booking request. Optional fields are
// pointers so a missing value can be told apart from a zero one.
type NewBooking struct {
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate *time.Time
	SeatCount     int
	PersonType    string
	TotalFare     *decimal.Decimal
	Currency      string
}

// Validate returns the normalised booking fields: airport and currency codes
// upper-cased, flight number trimmed.
func (n NewBooking) Validate() (Booking, error) {
	var problems []string

	flight := strings.TrimSpace(n.FlightNumber)
	if flight == "" {
		problems = append(problems, "flightNumber must not be blank")
	} else if len(flight) > 10 {
		problems = append(problems, "flightNumber must be at most 10 characters")
	}

	origin, ok := code3(n.Origin)
	if !ok {
		problems = append(problems, "origin must be 3 characters")
	}
	destination, ok := code3(n.Destination)
	if !ok {
		problems = append(problems, "destination must be 3 characters")
	}
	currency, ok := code3(n.Currency)
	if !ok {
		problems = append(problems, "currency must be 3 characters")
	}

	if n.DepartureDate == nil || n.DepartureDate.IsZero() {
		problems = append(problems, "departureDate is required")
	}
	if n.SeatCount < 1 {
		problems = append(problems, "seatCount must be >= 1")
	}
	if n.PersonType != "ADULT" && n.PersonType != "CHILD" {
		problems = append(problems, "personType must be ADULT or CHILD")
	}
	if n.TotalFare == nil {
		problems = append(problems, "totalFare is required")
	} else if n.TotalFare.IsNegative() {
		problems = append(problems, "totalFare must be >= 0")
	}

	if len(problems) > 0 {
		return Booking{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}

	return Booking{
		FlightNumber:  flight,
		Origin:        origin,
		Destination:   destination,
		DepartureDate: *n.DepartureDate,
		SeatCount:     n.SeatCount,
		PersonType:    n.PersonType,
		TotalFare:     n.TotalFare.Round(2),
		Currency:      currency,
		Status:        StatusPending,
	}, nil
}

func code3(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, len(s) == 3
}
