package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/flight-services/internal/booking-service/domain"
	"github.com/jcmexdev/flight-services/internal/booking-service/events"
	"github.com/jcmexdev/flight-services/internal/booking-service/saga"
	"github.com/jcmexdev/flight-services/internal/pkg/telemetry"
)

// ErrBookingFailed is returned when the booking saga could not complete. The
// booking, if it was stored, is left CANCELLED.
var ErrBookingFailed = errors.New("booking failed")

const maxLocatorAttempts = 5

type Store interface {
	saga.BookingWriter
	saga.LogRepository
	GetBookingByLocator(ctx context.Context, locator string) (*domain.Booking, error)
	SagaHistory(ctx context.Context, sagaID string) ([]saga.LogEntry, error)
}

type Service struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	locator   func() (string, error)
	now       func() time.Time
}

func NewService(store Store, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer("booking-service/app"),
		locator:   domain.GenerateRecordLocator,
		now:       time.Now,
	}
}

// CreateBooking validates req and runs the booking saga. A record locator
// collision is retried with a fresh locator.
func (s *Service) CreateBooking(ctx context.Context, req domain.NewBooking) (*domain.Booking, error) {
	base, err := req.Validate()
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.String("flight.number", base.FlightNumber),
		attribute.Int("seats", base.SeatCount),
	))
	defer span.End()

	for attempt := 1; attempt <= maxLocatorAttempts; attempt++ {
		b, err := s.newBooking(ctx, base)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		err = s.runSaga(ctx, b)
		if err == nil {
			span.SetAttributes(attribute.String("booking.locator", b.RecordLocator))
			s.logger.InfoContext(ctx, "booking confirmed",
				"booking_id", b.ID,
				"record_locator", b.RecordLocator,
				"flight_number", b.FlightNumber,
			)
			return b, nil
		}
		if errors.Is(err, domain.ErrDuplicateLocator) {
			s.logger.WarnContext(ctx, "record locator collision, regenerating", "record_locator", b.RecordLocator, "attempt", attempt)
			continue
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "booking saga failed")
		return b, fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}

	err = fmt.Errorf("%w: no free record locator after %d attempts", ErrBookingFailed, maxLocatorAttempts)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

func (s *Service) GetBooking(ctx context.Context, locator string) (*domain.Booking, error) {
	return s.store.GetBookingByLocator(ctx, strings.ToUpper(strings.TrimSpace(locator)))
}

// BookingHistory returns the saga transitions of the booking behind locator.
func (s *Service) BookingHistory(ctx context.Context, locator string) ([]saga.LogEntry, error) {
	b, err := s.GetBooking(ctx, locator)
	if err != nil {
		return nil, err
	}
	return s.store.SagaHistory(ctx, b.ID)
}

func (s *Service) newBooking(ctx context.Context, base domain.Booking) (*domain.Booking, error) {
	locator, err := s.locator()
	if err != nil {
		return nil, err
	}
	info := telemetry.ExtractTraceInfo(ctx)
	now := s.now().UTC()

	b := base
	b.ID = ulid.Make().String()
	b.RecordLocator = locator
	b.Status = domain.StatusPending
	b.TraceID = info.TraceID
	b.SpanID = info.SpanID
	b.CreatedAt = now
	b.UpdatedAt = now
	return &b, nil
}

func (s *Service) runSaga(ctx context.Context, b *domain.Booking) error {
	steps := []saga.Step{
		saga.NewPersistBookingStep(s.store, b),
		saga.NewPublishBookingEventStep(s.publisher, b),
		saga.NewConfirmBookingStep(s.store, b),
	}
	payload := events.NewBookingEvent(events.TypeBookingCreated, b, b.CreatedAt)
	return saga.NewOrchestrator(b.ID, payload, steps, s.store, s.logger).Start(ctx)
}
