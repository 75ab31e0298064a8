// Package domain holds the fare rules of the pricing service.
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RulesVersion tags every quote so a change to TaxRate or BagFeeUnit is
// visible in the output.
const RulesVersion = "v1"

var (
	TaxRate    = decimal.RequireFromString("0.21")
	BagFeeUnit = decimal.RequireFromString("30.00")
)

// ErrInvalidInput is returned for a negative fare or bag count and for a
// malformed currency code.
var ErrInvalidInput = errors.New("invalid input")

// FareQuote is a fully itemised price. Every amount has exactly two
// fractional digits.
type FareQuote struct {
	BaseFare     decimal.Decimal
	Tax          decimal.Decimal
	BagFees      decimal.Decimal
	Total        decimal.Decimal
	Currency     string
	RulesVersion string
}

// ComputeQuote prices a single fare. Rounding to cents happens at every step
// (base, tax, bag fees, total), never only at the end.
func ComputeQuote(baseFare decimal.Decimal, currency string, bags int) (FareQuote, error) {
	if baseFare.IsNegative() {
		return FareQuote{}, fmt.Errorf("%w: baseFare must be >= 0, got %s", ErrInvalidInput, baseFare)
	}
	if bags < 0 {
		return FareQuote{}, fmt.Errorf("%w: bags must be >= 0, got %d", ErrInvalidInput, bags)
	}
	curr, err := NormalizeCurrency(currency)
	if err != nil {
		return FareQuote{}, err
	}

	base := round2(baseFare)
	tax := round2(base.Mul(TaxRate))
	bagFees := round2(BagFeeUnit.Mul(decimal.NewFromInt(int64(bags))))
	total := round2(base.Add(tax).Add(bagFees))

	return FareQuote{
		BaseFare:     base,
		Tax:          tax,
		BagFees:      bagFees,
		Total:        total,
		Currency:     curr,
		RulesVersion: RulesVersion,
	}, nil
}

// NormalizeCurrency trims and upper-cases a 3-letter currency code.
func NormalizeCurrency(currency string) (string, error) {
	curr := strings.ToUpper(strings.TrimSpace(currency))
	if len(curr) != 3 {
		return "", fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidInput, currency)
	}
	for _, r := range curr {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidInput, currency)
		}
	}
	return curr, nil
}

// round2 is HALF_UP for the non-negative amounts the engine handles;
// decimal.Round rounds half away from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
