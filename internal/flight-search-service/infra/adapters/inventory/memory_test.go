package inventory

import (
	"context"
	"testing"
	"time"
)

func TestMemoryInventoryFindFlights(t *testing.T) {
	today := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	inv := NewMemoryInventory(SeedFlights(today)...)

	tests := []struct {
		name        string
		origin      string
		destination string
		from, to    time.Time
		want        []string
	}{
		{"case insensitive and ordered", " mad", "bcn ", today, today.AddDate(0, 0, 30), []string{"IB3101", "VY1003", "IB3115"}},
		{"inclusive bounds", "MAD", "BCN", today.AddDate(0, 0, 9), today.AddDate(0, 0, 9), []string{"IB3115"}},
		{"outside range", "MAD", "BCN", today.AddDate(0, 0, 10), today.AddDate(0, 0, 20), nil},
		{"unknown route", "MAD", "JFK", today, today.AddDate(1, 0, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inv.FindFlights(context.Background(), tt.origin, tt.destination, tt.from, tt.to)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil {
				t.Fatal("nil slice returned")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d flights, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].FlightNumber != w {
					t.Errorf("got[%d] = %s, want %s", i, got[i].FlightNumber, w)
				}
			}
		})
	}
}

func TestMemoryInventoryListFlights(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seed := SeedFlights(today)
	inv := NewMemoryInventory(seed...)

	got, err := inv.ListFlights(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(seed) {
		t.Fatalf("len = %d, want %d", len(got), len(seed))
	}
	for i := 1; i < len(got); i++ {
		if got[i].DepartureDate.Before(got[i-1].DepartureDate) {
			t.Fatalf("not ordered by departure at %d", i)
		}
	}

	got[0].FlightNumber = "CHANGED"
	again, _ := inv.ListFlights(context.Background())
	if again[0].FlightNumber == "CHANGED" {
		t.Error("ListFlights exposes internal storage")
	}
}

func TestSeedFlightsIncludesMissingFare(t *testing.T) {
	var missing int
	for _, f := range SeedFlights(time.Now()) {
		if !f.BaseFare.Valid {
			missing++
		}
	}
	if missing == 0 {
		t.Error("seed has no flight without a base fare")
	}
}
