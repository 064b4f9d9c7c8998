package postgresengine

import (
	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

// Logger interface for SQL statement logging, operational messages, warnings, and error reporting.
type Logger = userbooks.Logger

// ContextualLogger interface for context-aware logging with automatic trace correlation.
type ContextualLogger = userbooks.ContextualLogger

// MetricsCollector interface for collecting store performance and error metrics.
type MetricsCollector = userbooks.MetricsCollector

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithPersonTableName sets the table name of the person records.
func WithPersonTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return userbooks.ErrEmptyTableName
		}

		s.personTableName = tableName

		return nil
	}
}

// WithBookTableName sets the table name of the book records.
func WithBookTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return userbooks.ErrEmptyTableName
		}

		s.bookTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: completed operations with durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set, it is preferred over the basic logger so log records carry the request context.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives statement durations and database error counters.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}
