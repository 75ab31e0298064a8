package sqlite

import (
	"fmt"
	"time"

	"github.com/jcmexdev/flight-services/internal/booking-service/domain"
)

// SQLite has no datetime type; timestamps are stored as RFC3339 TEXT in UTC.
const timeLayout = "2006-01-02T15:04:05.999999999Z"

var nowUTC = func() time.Time { return time.Now().UTC() }

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = nowUTC()
	}
	return t.UTC().Format(timeLayout)
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse date %q: %w", s, err)
	}
	return t, nil
}
