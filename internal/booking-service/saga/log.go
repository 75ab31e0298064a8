package saga

import (
	"context"
	"time"
)

type LogStatus string

const (
	LogStarted      LogStatus = "STARTED"
	LogStepDone     LogStatus = "STEP_DONE"
	LogCompleted    LogStatus = "COMPLETED"
	LogCompensating LogStatus = "COMPENSATING"
	LogFailed       LogStatus = "FAILED"
)

// LogEntry is one transition of a saga. Entries are append-only; the newest
// one per SagaID is the current state.
type LogEntry struct {
	SagaID      string
	Status      LogStatus
	CurrentStep string
	// Payload is the JSON input of the saga, written on STARTED only.
	Payload string
	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string
	TraceID       string
	SpanID        string
	UpdatedAt     time.Time
}

type LogRepository interface {
	SaveSagaLog(ctx context.Context, entry *LogEntry) error
}
