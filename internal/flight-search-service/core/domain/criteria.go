package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidArgument marks caller mistakes. It is never retried and maps to
// HTTP 400.
var ErrInvalidArgument = errors.New("invalid argument")

type PassengerType string

const (
	PassengerAdult PassengerType = "ADULT"
	PassengerChild PassengerType = "CHILD"
)

// ParsePassengerType is case-insensitive; an empty value means ADULT.
func ParsePassengerType(raw string) (PassengerType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(PassengerAdult):
		return PassengerAdult, nil
	case string(PassengerChild):
		return PassengerChild, nil
	default:
		return "", fmt.Errorf("%w: unknown passengerType %q", ErrInvalidArgument, raw)
	}
}

type SearchCriteria struct {
	Origin        string
	Destination   string
	DateFrom      time.Time
	DateTo        time.Time
	PassengerType PassengerType
	Seats         int
}

// Validate checks the criteria and returns a copy with trimmed airport codes.
func (c SearchCriteria) Validate() (SearchCriteria, error) {
	c.Origin = strings.TrimSpace(c.Origin)
	c.Destination = strings.TrimSpace(c.Destination)

	switch {
	case c.Origin == "":
		return c, fmt.Errorf("%w: origin is required", ErrInvalidArgument)
	case c.Destination == "":
		return c, fmt.Errorf("%w: destination is required", ErrInvalidArgument)
	case c.DateFrom.IsZero() || c.DateTo.IsZero():
		return c, fmt.Errorf("%w: dateFrom and dateTo are required", ErrInvalidArgument)
	case c.DateFrom.After(c.DateTo):
		return c, fmt.Errorf("%w: dateFrom must be <= dateTo", ErrInvalidArgument)
	case c.Seats < 1:
		return c, fmt.Errorf("%w: seats must be >= 1", ErrInvalidArgument)
	}

	if c.PassengerType == "" {
		c.PassengerType = PassengerAdult
	}
	return c, nil
}
