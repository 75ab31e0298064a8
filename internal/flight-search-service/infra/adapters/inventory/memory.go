package inventory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
)

var _ ports.Inventory = (*MemoryInventory)(nil)

// MemoryInventory keeps flights in process memory. It backs local runs when
// no DATABASE_URL is configured, and tests.
type MemoryInventory struct {
	mu      sync.RWMutex
	flights []domain.FlightCandidate
}

func NewMemoryInventory(flights ...domain.FlightCandidate) *MemoryInventory {
	m := &MemoryInventory{}
	for _, f := range flights {
		m.Add(f)
	}
	return m
}

func (m *MemoryInventory) Add(f domain.FlightCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights = append(m.flights, f)
}

// FindFlights matches airports case-insensitively and returns flights ordered
// by departure date, then flight number.
func (m *MemoryInventory) FindFlights(_ context.Context, origin, destination string, from, to time.Time) ([]domain.FlightCandidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	from, to = dateOnly(from), dateOnly(to)

	out := make([]domain.FlightCandidate, 0)
	for _, f := range m.flights {
		dep := dateOnly(f.DepartureDate)
		if !strings.EqualFold(f.Origin, origin) || !strings.EqualFold(f.Destination, destination) {
			continue
		}
		if dep.Before(from) || dep.After(to) {
			continue
		}
		out = append(out, f)
	}
	sortFlights(out)

	slog.Debug("memory inventory search", "origin", origin, "destination", destination, "found", len(out))
	return out, nil
}

func (m *MemoryInventory) ListFlights(context.Context) ([]domain.FlightCandidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.FlightCandidate, len(m.flights))
	copy(out, m.flights)
	sortFlights(out)
	return out, nil
}

func sortFlights(fs []domain.FlightCandidate) {
	sort.SliceStable(fs, func(i, j int) bool {
		if !fs[i].DepartureDate.Equal(fs[j].DepartureDate) {
			return fs[i].DepartureDate.Before(fs[j].DepartureDate)
		}
		return fs[i].FlightNumber < fs[j].FlightNumber
	})
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SeedFlights is a small fixed inventory, relative to today, used when the
// service runs without a database.
func SeedFlights(today time.Time) []domain.FlightCandidate {
	today = dateOnly(today)
	fare := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}
	return []domain.FlightCandidate{
		{FlightNumber: "IB3101", Airline: "IB", Origin: "MAD", Destination: "BCN", DepartureDate: today.AddDate(0, 0, 7), Cabin: "ECONOMY", BaseFare: fare("79.90"), Currency: "EUR", SeatsAvailable: 42},
		{FlightNumber: "VY1003", Airline: "VY", Origin: "MAD", Destination: "BCN", DepartureDate: today.AddDate(0, 0, 7), Cabin: "ECONOMY", BaseFare: fare("54.99"), Currency: "EUR", SeatsAvailable: 12},
		{FlightNumber: "IB3115", Airline: "IB", Origin: "MAD", Destination: "BCN", DepartureDate: today.AddDate(0, 0, 9), Cabin: "BUSINESS", BaseFare: fare("210.00"), Currency: "EUR", SeatsAvailable: 6},
		{FlightNumber: "AM400", Airline: "AM", Origin: "MEX", Destination: "CUN", DepartureDate: today.AddDate(0, 0, 14), Cabin: "ECONOMY", BaseFare: fare("100.00"), Currency: "USD", SeatsAvailable: 30},
		{FlightNumber: "AM402", Airline: "AM", Origin: "MEX", Destination: "CUN", DepartureDate: today.AddDate(0, 0, 15), Cabin: "ECONOMY", Currency: "USD", SeatsAvailable: 3},
		{FlightNumber: "UA1542", Airline: "UA", Origin: "JFK", Destination: "SFO", DepartureDate: today.AddDate(0, 0, 21), Cabin: "PREMIUM", BaseFare: fare("389.45"), Currency: "USD", SeatsAvailable: 18},
	}
}
