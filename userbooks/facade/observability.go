package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

const (
	// OperationDurationMetric tracks aggregate operation duration.
	OperationDurationMetric = "userbooks_facade_operation_duration_seconds"
	// OperationCallsMetric tracks total aggregate operation calls.
	OperationCallsMetric = "userbooks_facade_operation_calls_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"
	// StatusNotFound indicates that the targeted user did not exist and nothing was written or found.
	StatusNotFound = "not_found"
	// StatusError indicates a failed operation.
	StatusError = "error"
	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"
	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// SpanNameOperation is the tracing span name of an aggregate operation.
	SpanNameOperation = "userbooks.facade.operation"

	logMsgOperationStarted   = "facade operation started"
	logMsgOperationCompleted = "facade operation completed"
	logMsgOperationFailed    = "facade operation failed"
	logMsgStage              = "facade stage: "

	logAttrOperation   = "operation"
	logAttrOperationID = "operation_id"
	logAttrStatus      = "status"
	logAttrDurationMS  = "duration_ms"
	logAttrErrorKind   = "error_kind"
	logAttrError       = "error"
	logAttrInput       = "input"
	logAttrOutput      = "output"
	logAttrOutcome     = "outcome"
)

// operation carries the observability state of one running aggregate operation.
type operation struct {
	name  string
	id    string
	start time.Time
	span  userbooks.SpanContext
}

// startOperation assigns a correlation id, starts the span and logs the start of the operation.
func (f UserDataFacade) startOperation(ctx context.Context, name string) (context.Context, operation) {
	op := operation{
		name:  name,
		id:    uuid.New().String(),
		start: time.Now(),
	}

	if f.tracingCollector != nil {
		ctx, op.span = f.tracingCollector.StartSpan(ctx, SpanNameOperation, map[string]string{
			logAttrOperation:   name,
			logAttrOperationID: op.id,
		})
	}

	f.logInfo(ctx, logMsgOperationStarted, logAttrOperation, name, logAttrOperationID, op.id)

	return ctx, op
}

// logStage logs the input or output of one stage of the operation.
func (f UserDataFacade) logStage(ctx context.Context, op operation, stage string, args ...any) {
	allArgs := []any{logAttrOperation, op.name, logAttrOperationID, op.id}
	allArgs = append(allArgs, args...)

	f.logInfo(ctx, logMsgStage+stage, allArgs...)
}

// finishOperation records a completed operation with the given status.
func (f UserDataFacade) finishOperation(ctx context.Context, op operation, status string) {
	duration := time.Since(op.start)

	f.recordMetrics(ctx, op.name, status, duration)
	f.finishSpan(op, status, duration, nil)
	f.logInfo(
		ctx,
		logMsgOperationCompleted,
		logAttrOperation, op.name,
		logAttrOperationID, op.id,
		logAttrStatus, status,
		logAttrDurationMS, toMilliseconds(duration),
	)
}

// failOperation records a failed operation, distinguishing cancellation and timeouts from other errors.
func (f UserDataFacade) failOperation(ctx context.Context, op operation, err error) {
	duration := time.Since(op.start)
	status := statusOf(err)

	f.recordMetrics(ctx, op.name, status, duration)
	f.finishSpan(op, status, duration, err)

	args := []any{
		logAttrOperation, op.name,
		logAttrOperationID, op.id,
		logAttrStatus, status,
		logAttrErrorKind, userbooks.KindOf(err).String(),
		logAttrError, err.Error(),
	}

	if f.contextualLogger != nil {
		f.contextualLogger.ErrorContext(ctx, logMsgOperationFailed, args...)
	} else if f.logger != nil {
		f.logger.Error(logMsgOperationFailed, args...)
	}
}

func (f UserDataFacade) logInfo(ctx context.Context, msg string, args ...any) {
	if f.contextualLogger != nil {
		f.contextualLogger.InfoContext(ctx, msg, args...)
	} else if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f UserDataFacade) recordMetrics(ctx context.Context, name, status string, duration time.Duration) {
	if f.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		logAttrOperation: name,
		logAttrStatus:    status,
	}

	if contextualCollector, ok := f.metricsCollector.(userbooks.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, OperationDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, OperationCallsMetric, labels)
	} else {
		f.metricsCollector.RecordDuration(OperationDurationMetric, duration, labels)
		f.metricsCollector.IncrementCounter(OperationCallsMetric, labels)
	}
}

func (f UserDataFacade) finishSpan(op operation, status string, duration time.Duration, err error) {
	if f.tracingCollector == nil || op.span == nil {
		return
	}

	attrs := map[string]string{
		logAttrStatus:     status,
		logAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration)),
	}

	if err != nil {
		attrs[logAttrError] = err.Error()
		attrs[logAttrErrorKind] = userbooks.KindOf(err).String()
	}

	f.tracingCollector.FinishSpan(op.span, status, attrs)
}

func statusOf(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	default:
		return StatusError
	}
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
