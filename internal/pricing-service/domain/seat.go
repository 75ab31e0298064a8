package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SeatQuote prices several identical seats on one flight.
type SeatQuote struct {
	PerSeat      FareQuote
	Seats        int
	SeatFeeTotal decimal.Decimal // taxes over all seats
	Total        decimal.Decimal
}

// QuoteSeats applies ComputeQuote to one seat and scales it, rounding each
// scaled amount to cents.
func QuoteSeats(baseFare decimal.Decimal, currency string, seats int) (SeatQuote, error) {
	if seats < 1 {
		return SeatQuote{}, fmt.Errorf("%w: seats must be >= 1, got %d", ErrInvalidInput, seats)
	}
	perSeat, err := ComputeQuote(baseFare, currency, 0)
	if err != nil {
		return SeatQuote{}, err
	}
	n := decimal.NewFromInt(int64(seats))
	return SeatQuote{
		PerSeat:      perSeat,
		Seats:        seats,
		SeatFeeTotal: round2(perSeat.Tax.Mul(n)),
		Total:        round2(perSeat.Total.Mul(n)),
	}, nil
}
