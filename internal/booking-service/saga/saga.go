// Package saga runs a booking as a sequence of steps, compensating the
// completed ones in reverse order when a later step fails. Every transition
// is appended to a saga log tagged with the active trace.
package saga

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/flight-services/internal/pkg/telemetry"
)

// Step is one unit of work with its compensating action.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

type Orchestrator struct {
	sagaID  string
	payload any
	steps   []Step
	log     LogRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewOrchestrator builds a saga. logRepo may be nil, in which case
// transitions are only written to the process log.
func NewOrchestrator(sagaID string, payload any, steps []Step, logRepo LogRepository, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sagaID:  sagaID,
		payload: payload,
		steps:   steps,
		log:     logRepo,
		logger:  logger.With("saga_id", sagaID),
		now:     time.Now,
	}
}

// Start runs the steps in order. On failure the completed steps are
// compensated last-first and the step error is returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, LogStarted, "", nil)

	var done []Step
	for _, step := range o.steps {
		o.logger.InfoContext(ctx, "executing saga step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			o.logger.WarnContext(ctx, "saga step failed, compensating", "step", step.Name(), "error", err)
			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, LogCompensating, step.Name(), errs)

			errs = append(errs, o.rollback(ctx, done)...)
			o.record(ctx, LogFailed, step.Name(), errs)
			return fmt.Errorf("saga %s: %s: %w", o.sagaID, step.Name(), err)
		}
		done = append(done, step)
		o.record(ctx, LogStepDone, step.Name(), nil)
	}

	o.record(ctx, LogCompleted, "", nil)
	o.logger.InfoContext(ctx, "saga completed")
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		o.logger.InfoContext(ctx, "compensating saga step", "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			o.logger.ErrorContext(ctx, "CRITICAL: failed to compensate saga step", "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

// record never fails the saga: a log write error is reported and dropped.
func (o *Orchestrator) record(ctx context.Context, status LogStatus, step string, errs []string) {
	if o.log == nil {
		return
	}

	info := telemetry.ExtractTraceInfo(ctx)
	entry := &LogEntry{
		SagaID:        o.sagaID,
		Status:        status,
		CurrentStep:   step,
		ErrorMessages: "[]",
		TraceID:       info.TraceID,
		SpanID:        info.SpanID,
		UpdatedAt:     o.now(),
	}
	if status == LogStarted && o.payload != nil {
		if b, err := json.Marshal(o.payload); err == nil {
			entry.Payload = string(b)
		}
	}
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			entry.ErrorMessages = string(b)
		}
	}

	if err := o.log.SaveSagaLog(ctx, entry); err != nil {
		o.logger.ErrorContext(ctx, "failed to write saga log", "status", status, "error", err)
	}
}
