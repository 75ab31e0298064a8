package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validNewBooking() NewBooking {
	dep := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	fare := decimal.RequireFromString("242.004")
	return NewBooking{
		FlightNumber:  " AM400 ",
		Origin:        "mex",
		Destination:   "cun",
		DepartureDate: &dep,
		SeatCount:     2,
		PersonType:    "ADULT",
		TotalFare:     &fare,
		Currency:      "usd",
	}
}

func TestNewBookingValidate(t *testing.T) {
	b, err := validNewBooking().Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.FlightNumber != "AM400" || b.Origin != "MEX" || b.Destination != "CUN" || b.Currency != "USD" {
		t.Errorf("not normalised: %+v", b)
	}
	if b.TotalFare.StringFixed(2) != "242.00" {
		t.Errorf("fare = %s", b.TotalFare)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %s", b.Status)
	}
}

func TestNewBookingValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewBooking)
		want   string
	}{
		{"blank flight", func(n *NewBooking) { n.FlightNumber = " " }, "flightNumber must not be blank"},
		{"long origin", func(n *NewBooking) { n.Origin = "MEXX" }, "origin must be 3 characters"},
		{"short destination", func(n *NewBooking) { n.Destination = "CU" }, "destination must be 3 characters"},
		{"no date", func(n *NewBooking) { n.DepartureDate = nil }, "departureDate is required"},
		{"no seats", func(n *NewBooking) { n.SeatCount = 0 }, "seatCount must be >= 1"},
		{"lower person type", func(n *NewBooking) { n.PersonType = "adult" }, "personType must be ADULT or CHILD"},
		{"no fare", func(n *NewBooking) { n.TotalFare = nil }, "totalFare is required"},
		{"bad currency", func(n *NewBooking) { n.Currency = "" }, "currency must be 3 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := validNewBooking()
			tt.mutate(&n)
			_, err := n.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestGenerateRecordLocator(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		loc, err := GenerateRecordLocator()
		if err != nil {
			t.Fatal(err)
		}
		if len(loc) != LocatorLength {
			t.Fatalf("locator %q has length %d", loc, len(loc))
		}
		for _, r := range loc {
			if !strings.ContainsRune(LocatorAlphabet, r) {
				t.Fatalf("locator %q contains %q", loc, r)
			}
		}
		seen[loc] = true
	}
	if len(seen) < 190 {
		t.Errorf("only %d distinct locators out of 200", len(seen))
	}
}
