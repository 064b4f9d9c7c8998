package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

// logQueryWithDurationContext logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDurationContext(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	msg := logMsgSQLExecuted + action
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// logOperationContext logs operational information at info level.
func (s *Store) logOperationContext(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarnContext logs non-critical failures at warn level.
func (s *Store) logWarnContext(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, allArgs...)
	}
}

// logErrorContext logs error information at the error level.
func (s *Store) logErrorContext(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetricsContext records a statement duration, using the context-aware method if available.
func (s *Store) recordDurationMetricsContext(ctx context.Context, action, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		metricLabelAction: action,
		metricLabelStatus: status,
	}

	if contextualCollector, ok := s.metricsCollector.(userbooks.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricStatementDuration, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricStatementDuration, duration, labels)
	}
}

// recordErrorMetricsContext records a database error, using the context-aware method if available.
func (s *Store) recordErrorMetricsContext(ctx context.Context, action, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		metricLabelAction:    action,
		metricLabelStatus:    statusError,
		metricLabelErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(userbooks.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// incrementCounterContext increments a plain counter labeled with the action.
func (s *Store) incrementCounterContext(ctx context.Context, metric, action string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{metricLabelAction: action}

	if contextualCollector, ok := s.metricsCollector.(userbooks.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		s.metricsCollector.IncrementCounter(metric, labels)
	}
}
