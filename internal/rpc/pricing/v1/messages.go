// Package pricingv1 is the pricing.v1 gRPC contract shared by the pricing
// service and its clients. Messages travel as google.protobuf.Struct so the
// contract needs no generated code; typed Go structs are mapped at the edges.
package pricingv1

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// QuoteRequest asks for the price of seats on one flight. FlightNumber,
// DepartureDate, PassengerType and Seats identify the quote; BaseFare and
// Currency are the inventory fare the pricing rules start from.
type QuoteRequest struct {
	FlightNumber  string
	DepartureDate string // 2006-01-02
	PassengerType string
	Seats         int32
	BaseFare      string // decimal string
	Currency      string
}

type QuoteResponse struct {
	BaseFare     string
	SeatFeeTotal string
	Total        string
	Currency     string
	RulesVersion string
}

const (
	fieldFlightNumber  = "flight_number"
	fieldDepartureDate = "departure_date"
	fieldPassengerType = "passenger_type"
	fieldSeats         = "seats"
	fieldBaseFare      = "base_fare"
	fieldCurrency      = "currency"
	fieldSeatFeeTotal  = "seat_fee_total"
	fieldTotal         = "total"
	fieldRulesVersion  = "rules_version"
)

func (r *QuoteRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldFlightNumber:  r.FlightNumber,
		fieldDepartureDate: r.DepartureDate,
		fieldPassengerType: r.PassengerType,
		fieldSeats:         r.Seats,
		fieldBaseFare:      r.BaseFare,
		fieldCurrency:      r.Currency,
	})
}

func QuoteRequestFromStruct(s *structpb.Struct) (*QuoteRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("pricingv1: empty quote request")
	}
	seats, err := int32Field(s, fieldSeats)
	if err != nil {
		return nil, err
	}
	req := &QuoteRequest{Seats: seats}
	for field, dst := range map[string]*string{
		fieldFlightNumber:  &req.FlightNumber,
		fieldDepartureDate: &req.DepartureDate,
		fieldPassengerType: &req.PassengerType,
		fieldBaseFare:      &req.BaseFare,
		fieldCurrency:      &req.Currency,
	} {
		if *dst, err = stringField(s, field); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (r *QuoteResponse) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldBaseFare:     r.BaseFare,
		fieldSeatFeeTotal: r.SeatFeeTotal,
		fieldTotal:        r.Total,
		fieldCurrency:     r.Currency,
		fieldRulesVersion: r.RulesVersion,
	})
}

func QuoteResponseFromStruct(s *structpb.Struct) (*QuoteResponse, error) {
	if s == nil {
		return nil, fmt.Errorf("pricingv1: empty quote response")
	}
	resp := &QuoteResponse{}
	var err error
	for field, dst := range map[string]*string{
		fieldBaseFare:     &resp.BaseFare,
		fieldSeatFeeTotal: &resp.SeatFeeTotal,
		fieldTotal:        &resp.Total,
		fieldCurrency:     &resp.Currency,
		fieldRulesVersion: &resp.RulesVersion,
	} {
		if *dst, err = stringField(s, field); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("pricingv1: missing field %q", name)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("pricingv1: field %q is not a string", name)
	}
	return sv.StringValue, nil
}

func numberField(s *structpb.Struct, name string) (float64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("pricingv1: missing field %q", name)
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("pricingv1: field %q is not a number", name)
	}
	return nv.NumberValue, nil
}

// int32Field accepts only whole numbers that fit an int32.
func int32Field(s *structpb.Struct, name string) (int32, error) {
	n, err := numberField(s, name)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("pricingv1: field %q must be a whole number in int32 range, got %v", name, n)
	}
	return int32(n), nil
}
