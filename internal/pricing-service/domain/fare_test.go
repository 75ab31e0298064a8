package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeQuote(t *testing.T) {
	tests := []struct {
		name                      string
		baseFare                  string
		currency                  string
		bags                      int
		base, tax, bagFees, total string
		wantCurrency              string
	}{
		{
			name: "reference quote", baseFare: "100.00", currency: "usd", bags: 2,
			base: "100.00", tax: "21.00", bagFees: "60.00", total: "181.00", wantCurrency: "USD",
		},
		{
			name: "no bags", baseFare: "250", currency: "EUR", bags: 0,
			base: "250.00", tax: "52.50", bagFees: "0.00", total: "302.50", wantCurrency: "EUR",
		},
		{
			name: "tax rounds half up", baseFare: "12.50", currency: "MXN", bags: 1,
			base: "12.50", tax: "2.63", bagFees: "30.00", total: "45.13", wantCurrency: "MXN",
		},
		{
			name: "base rounded before tax", baseFare: "0.025", currency: " gbp ", bags: 0,
			base: "0.03", tax: "0.01", bagFees: "0.00", total: "0.04", wantCurrency: "GBP",
		},
		{
			name: "zero fare", baseFare: "0", currency: "USD", bags: 3,
			base: "0.00", tax: "0.00", bagFees: "90.00", total: "90.00", wantCurrency: "USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ComputeQuote(d(tt.baseFare), tt.currency, tt.bags)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			check := func(field string, got decimal.Decimal, want string) {
				t.Helper()
				if got.StringFixed(2) != want {
					t.Errorf("%s = %s, want %s", field, got.StringFixed(2), want)
				}
			}
			check("base", q.BaseFare, tt.base)
			check("tax", q.Tax, tt.tax)
			check("bagFees", q.BagFees, tt.bagFees)
			check("total", q.Total, tt.total)
			if q.Currency != tt.wantCurrency {
				t.Errorf("currency = %q, want %q", q.Currency, tt.wantCurrency)
			}
			if q.RulesVersion != "v1" {
				t.Errorf("rulesVersion = %q", q.RulesVersion)
			}
			if !q.Total.Equal(q.BaseFare.Add(q.Tax).Add(q.BagFees)) {
				t.Errorf("total %s != base+tax+bagFees", q.Total)
			}
		})
	}
}

func TestComputeQuoteRoundsEachStep(t *testing.T) {
	// A single rounding of 0.025*1.21 would give 0.03; rounding per step gives 0.04.
	q, err := ComputeQuote(d("0.025"), "USD", 0)
	if err != nil {
		t.Fatal(err)
	}
	single := d("0.025").Mul(d("1.21")).Round(2)
	if q.Total.Equal(single) {
		t.Fatalf("total %s matches single final rounding; expected per-step rounding", q.Total)
	}
}

func TestComputeQuoteIsDeterministic(t *testing.T) {
	for _, fare := range []string{"0", "0.005", "99.995", "1234.5678", "100"} {
		a, errA := ComputeQuote(d(fare), "usd", 4)
		b, errB := ComputeQuote(d(fare), "usd", 4)
		if errA != nil || errB != nil {
			t.Fatalf("errors: %v %v", errA, errB)
		}
		if a.BaseFare.StringFixed(2) != b.BaseFare.StringFixed(2) ||
			a.Tax.StringFixed(2) != b.Tax.StringFixed(2) ||
			a.BagFees.StringFixed(2) != b.BagFees.StringFixed(2) ||
			a.Total.StringFixed(2) != b.Total.StringFixed(2) ||
			a.Currency != b.Currency || a.RulesVersion != b.RulesVersion {
			t.Errorf("fare %s: quotes differ: %+v vs %+v", fare, a, b)
		}
	}
}

func TestComputeQuoteRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		baseFare string
		currency string
		bags     int
	}{
		{"negative fare", "-0.01", "USD", 0},
		{"negative bags", "10", "USD", -1},
		{"blank currency", "10", "   ", 0},
		{"short currency", "10", "US", 0},
		{"long currency", "10", "USDT", 0},
		{"non letters", "10", "U5D", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeQuote(d(tt.baseFare), tt.currency, tt.bags)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
