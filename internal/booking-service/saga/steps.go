package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/flight-services/internal/booking-service/domain"
	"github.com/jcmexdev/flight-services/internal/booking-service/events"
)

type BookingWriter interface {
	CreateBooking(ctx context.Context, b *domain.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, status domain.Status) error
}

// --- PersistBookingStep ---

// PersistBookingStep stores the booking as PENDING. Compensation cancels it;
// rows are never deleted.
type PersistBookingStep struct {
	store   BookingWriter
	booking *domain.Booking
}

func NewPersistBookingStep(store BookingWriter, b *domain.Booking) *PersistBookingStep {
	return &PersistBookingStep{store: store, booking: b}
}

func (s *PersistBookingStep) Name() string { return "Persist_Booking_Step" }

func (s *PersistBookingStep) Execute(ctx context.Context) error {
	s.booking.Status = domain.StatusPending
	if err := s.store.CreateBooking(ctx, s.booking); err != nil {
		return fmt.Errorf("persist booking: %w", err)
	}
	return nil
}

func (s *PersistBookingStep) Compensate(ctx context.Context) error {
	if err := s.store.UpdateBookingStatus(ctx, s.booking.ID, domain.StatusCancelled); err != nil {
		return fmt.Errorf("cancel booking %s: %w", s.booking.RecordLocator, err)
	}
	s.booking.Status = domain.StatusCancelled
	return nil
}

// --- PublishBookingEventStep ---

type PublishBookingEventStep struct {
	publisher events.Publisher
	booking   *domain.Booking
	now       func() time.Time
}

func NewPublishBookingEventStep(p events.Publisher, b *domain.Booking) *PublishBookingEventStep {
	return &PublishBookingEventStep{publisher: p, booking: b, now: time.Now}
}

func (s *PublishBookingEventStep) Name() string { return "Publish_Booking_Event_Step" }

func (s *PublishBookingEventStep) Execute(ctx context.Context) error {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(events.TypeBookingCreated, s.booking, s.now())); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}

// Compensate tells consumers that the announced booking will not happen.
func (s *PublishBookingEventStep) Compensate(ctx context.Context) error {
	return s.publisher.Publish(ctx, events.NewBookingEvent(events.TypeBookingCancelled, s.booking, s.now()))
}

// --- ConfirmBookingStep ---

type ConfirmBookingStep struct {
	store   BookingWriter
	booking *domain.Booking
}

func NewConfirmBookingStep(store BookingWriter, b *domain.Booking) *ConfirmBookingStep {
	return &ConfirmBookingStep{store: store, booking: b}
}

func (s *ConfirmBookingStep) Name() string { return "Confirm_Booking_Step" }

func (s *ConfirmBookingStep) Execute(ctx context.Context) error {
	if err := s.store.UpdateBookingStatus(ctx, s.booking.ID, domain.StatusConfirmed); err != nil {
		return fmt.Errorf("confirm booking: %w", err)
	}
	s.booking.Status = domain.StatusConfirmed
	return nil
}

// Compensate is a no-op: this is the last step, nothing runs after it.
func (s *ConfirmBookingStep) Compensate(context.Context) error {
	return nil
}
