// Package sqlite stores bookings and the booking saga log in one SQLite
// database. WAL mode lets the HTTP readers run while a saga writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jcmexdev/flight-services/internal/booking-service/domain"
	"github.com/jcmexdev/flight-services/internal/booking-service/saga"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
    id              TEXT PRIMARY KEY,
    record_locator  TEXT NOT NULL UNIQUE,
    flight_number   TEXT NOT NULL,
    origin          TEXT NOT NULL,
    destination     TEXT NOT NULL,
    departure_date  TEXT NOT NULL,
    seat_count      INTEGER NOT NULL,
    person_type     TEXT NOT NULL,
    -- decimal string with two fractional digits
    total_fare      TEXT NOT NULL,
    currency        TEXT NOT NULL,
    status          TEXT NOT NULL,
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

-- Append-only: one row per saga transition.
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT NOT NULL,
    status          TEXT NOT NULL,
    current_step    TEXT NOT NULL DEFAULT '',
    payload         TEXT,
    error_messages  TEXT NOT NULL DEFAULT '[]',
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',
    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema. The
// parent directory is created when missing.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateBooking inserts b. A locator clash returns domain.ErrDuplicateLocator.
func (r *Repository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	const q = `
		INSERT INTO bookings
			(id, record_locator, flight_number, origin, destination, departure_date, seat_count,
			 person_type, total_fare, currency, status, trace_id, span_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		b.ID,
		b.RecordLocator,
		b.FlightNumber,
		b.Origin,
		b.Destination,
		b.DepartureDate.Format(domain.DateLayout),
		b.SeatCount,
		b.PersonType,
		b.TotalFare.StringFixed(2),
		b.Currency,
		string(b.Status),
		b.TraceID,
		b.SpanID,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: insert booking %q: %w", b.RecordLocator, domain.ErrDuplicateLocator)
		}
		return fmt.Errorf("sqlite: insert booking %q: %w", b.RecordLocator, err)
	}
	return nil
}

func (r *Repository) UpdateBookingStatus(ctx context.Context, id string, status domain.Status) error {
	const q = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, string(status), formatTime(nowUTC()), id)
	if err != nil {
		return fmt.Errorf("sqlite: update booking %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update booking %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite: update booking %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repository) GetBookingByLocator(ctx context.Context, locator string) (*domain.Booking, error) {
	const q = `
		SELECT id, record_locator, flight_number, origin, destination, departure_date, seat_count,
		       person_type, total_fare, currency, status, trace_id, span_id, created_at, updated_at
		FROM   bookings
		WHERE  record_locator = ?`

	var (
		b                            domain.Booking
		departure, fare              string
		status, createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, q, locator).Scan(
		&b.ID, &b.RecordLocator, &b.FlightNumber, &b.Origin, &b.Destination, &departure, &b.SeatCount,
		&b.PersonType, &fare, &b.Currency, &status, &b.TraceID, &b.SpanID, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: booking %q: %w", locator, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get booking %q: %w", locator, err)
	}

	b.Status = domain.Status(status)
	if b.DepartureDate, err = parseDate(departure); err != nil {
		return nil, err
	}
	if b.TotalFare, err = decimal.NewFromString(fare); err != nil {
		return nil, fmt.Errorf("sqlite: booking %q total_fare %q: %w", locator, fare, err)
	}
	if b.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveSagaLog appends a saga transition.
func (r *Repository) SaveSagaLog(ctx context.Context, entry *saga.LogEntry) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// SagaHistory returns every transition of a saga, oldest first.
func (r *Repository) SagaHistory(ctx context.Context, sagaID string) ([]saga.LogEntry, error) {
	const q = `
		SELECT saga_id, status, current_step, COALESCE(payload, ''), error_messages,
		       trace_id, span_id, updated_at
		FROM   saga_logs
		WHERE  saga_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: saga history %q: %w", sagaID, err)
	}
	defer rows.Close()

	var out []saga.LogEntry
	for rows.Next() {
		var (
			e         saga.LogEntry
			updatedAt string
		)
		if err := rows.Scan(&e.SagaID, &e.Status, &e.CurrentStep, &e.Payload, &e.ErrorMessages,
			&e.TraceID, &e.SpanID, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan saga log: %w", err)
		}
		if e.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: saga history %q: %w", sagaID, err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
