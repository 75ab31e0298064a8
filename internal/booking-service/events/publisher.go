// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/jcmexdev/flight-services/internal/booking-service/domain"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is the JSON message written to the broker. The record locator
// is the message key so all events of one booking land on one partition.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"bookingId"`
	RecordLocator string    `json:"recordLocator"`
	FlightNumber  string    `json:"flightNumber"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departureDate"`
	SeatCount     int       `json:"seatCount"`
	PersonType    string    `json:"personType"`
	TotalFare     string    `json:"totalFare"`
	Currency      string    `json:"currency"`
	TraceID       string    `json:"traceId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		RecordLocator: b.RecordLocator,
		FlightNumber:  b.FlightNumber,
		Origin:        b.Origin,
		Destination:   b.Destination,
		DepartureDate: b.DepartureDate.Format(domain.DateLayout),
		SeatCount:     b.SeatCount,
		PersonType:    b.PersonType,
		TotalFare:     b.TotalFare.StringFixed(2),
		Currency:      b.Currency,
		TraceID:       b.TraceID,
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct {
	Logger *slog.Logger
}

func (p NopPublisher) Publish(ctx context.Context, event BookingEvent) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "event publishing disabled, dropping event",
		"type", event.Type,
		"record_locator", event.RecordLocator,
	)
	return nil
}

func (NopPublisher) Close() error { return nil }
