// Package inventory provides the flight stores behind ports.Inventory.
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
)

var _ ports.Inventory = (*PostgresInventory)(nil)

// Schema creates the flights table when it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS flights (
	id              BIGSERIAL PRIMARY KEY,
	origin          VARCHAR(8)     NOT NULL,
	destination     VARCHAR(8)     NOT NULL,
	departure_date  DATE           NOT NULL,
	return_date     DATE,
	airline         VARCHAR(2)     NOT NULL,
	flight_number   VARCHAR(10)    NOT NULL,
	cabin           VARCHAR(16)    NOT NULL,
	base_fare       NUMERIC(12,2),
	total_fare      NUMERIC(12,2),
	currency        VARCHAR(3)     NOT NULL,
	seats_available INTEGER        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flights_route_date
	ON flights (UPPER(origin), UPPER(destination), departure_date);
`

const flightColumns = `flight_number, airline, origin, destination, departure_date, cabin,
	base_fare::text, currency, seats_available`

type PostgresInventory struct {
	db *pgxpool.Pool
}

func NewPostgresInventory(db *pgxpool.Pool) *PostgresInventory {
	return &PostgresInventory{db: db}
}

// Connect opens a pool and makes sure the schema exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate flights: %w", err)
	}
	return pool, nil
}

func (r *PostgresInventory) FindFlights(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.FlightCandidate, error) {
	const q = `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE UPPER(origin) = UPPER($1)
		  AND UPPER(destination) = UPPER($2)
		  AND departure_date BETWEEN $3 AND $4
		ORDER BY departure_date, flight_number`

	rows, err := r.db.Query(ctx, q,
		strings.TrimSpace(origin),
		strings.TrimSpace(destination),
		dateOnly(from),
		dateOnly(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query flights %s-%s: %w", origin, destination, err)
	}
	return collectFlights(rows)
}

func (r *PostgresInventory) ListFlights(ctx context.Context) ([]domain.FlightCandidate, error) {
	const q = `SELECT ` + flightColumns + ` FROM flights ORDER BY departure_date, flight_number`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return collectFlights(rows)
}

// Insert stores a flight; used to seed a fresh database.
func (r *PostgresInventory) Insert(ctx context.Context, f domain.FlightCandidate) error {
	const q = `
		INSERT INTO flights (flight_number, airline, origin, destination, departure_date, cabin,
			base_fare, currency, seats_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`

	var fare *string
	if f.BaseFare.Valid {
		s := f.BaseFare.Decimal.StringFixed(2)
		fare = &s
	}
	_, err := r.db.Exec(ctx, q, f.FlightNumber, f.Airline, f.Origin, f.Destination,
		dateOnly(f.DepartureDate), f.Cabin, fare, f.Currency, f.SeatsAvailable)
	if err != nil {
		return fmt.Errorf("insert flight %s: %w", f.FlightNumber, err)
	}
	return nil
}

// Count is used to decide whether a fresh database needs seeding.
func (r *PostgresInventory) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flights`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

func collectFlights(rows pgx.Rows) ([]domain.FlightCandidate, error) {
	defer rows.Close()

	out := make([]domain.FlightCandidate, 0)
	for rows.Next() {
		var (
			f    domain.FlightCandidate
			fare *string
		)
		if err := rows.Scan(&f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &f.DepartureDate,
			&f.Cabin, &fare, &f.Currency, &f.SeatsAvailable); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		if fare != nil {
			d, err := decimal.NewFromString(*fare)
			if err != nil {
				return nil, fmt.Errorf("flight %s: bad base_fare %q: %w", f.FlightNumber, *fare, err)
			}
			f.BaseFare = decimal.NewNullDecimal(d)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flights: %w", err)
	}
	return out, nil
}
