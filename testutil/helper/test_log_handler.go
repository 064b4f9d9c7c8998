package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// TestLogHandler is a slog.Handler implementation that captures log records for testing.
type TestLogHandler struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewTestLogHandler creates a new TestLogHandler.
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewTestLogHandler(logToStdOut bool) *TestLogHandler {
	return &TestLogHandler{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdOut,
	}
}

// Handle implements slog.Handler interface.
func (h *TestLogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())

	if h.logToStdout {
		jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		_ = jsonHandler.Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler interface.
func (h *TestLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler interface.
func (h *TestLogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler interface.
func (h *TestLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// GetRecordCount returns the number of captured log records.
func (h *TestLogHandler) GetRecordCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.records)
}

// GetRecords returns a copy of all captured log records.
func (h *TestLogHandler) GetRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	records := make([]slog.Record, len(h.records))
	copy(records, h.records)

	return records
}

// Reset clears all captured log records.
func (h *TestLogHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

// CountLogsWithMessage counts the records of the given level and message.
func (h *TestLogHandler) CountLogsWithMessage(level slog.Level, message string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for _, record := range h.records {
		if record.Level == level && record.Message == message {
			count++
		}
	}

	return count
}

// LogRecordMatcher provides a fluent interface for checking log record attributes.
type LogRecordMatcher struct {
	record *slog.Record
	found  bool
}

// HasDebugLogWithMessage starts a fluent chain to check a debug-level log record.
func (h *TestLogHandler) HasDebugLogWithMessage(message string) *LogRecordMatcher {
	return h.hasLogWithMessage(slog.LevelDebug, message)
}

// HasInfoLogWithMessage starts a fluent chain to check an info-level log record.
func (h *TestLogHandler) HasInfoLogWithMessage(message string) *LogRecordMatcher {
	return h.hasLogWithMessage(slog.LevelInfo, message)
}

// HasWarnLogWithMessage starts a fluent chain to check a warn-level log record.
func (h *TestLogHandler) HasWarnLogWithMessage(message string) *LogRecordMatcher {
	return h.hasLogWithMessage(slog.LevelWarn, message)
}

// HasErrorLogWithMessage starts a fluent chain to check an error-level log record.
func (h *TestLogHandler) HasErrorLogWithMessage(message string) *LogRecordMatcher {
	return h.hasLogWithMessage(slog.LevelError, message)
}

func (h *TestLogHandler) hasLogWithMessage(level slog.Level, message string) *LogRecordMatcher {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.records {
		if h.records[i].Level == level && h.records[i].Message == message {
			record := h.records[i]
			return &LogRecordMatcher{record: &record, found: true}
		}
	}

	return &LogRecordMatcher{found: false}
}

// WithDurationMS checks if the log record has a duration_ms attribute with a non-negative value.
func (m *LogRecordMatcher) WithDurationMS() *LogRecordMatcher {
	return m.withAttr("duration_ms", func(value slog.Value) bool {
		switch value.Kind() {
		case slog.KindInt64:
			return value.Int64() >= 0
		case slog.KindFloat64:
			return value.Float64() >= 0
		default:
			return false
		}
	})
}

// WithRowsAffected checks if the log record has a rows_affected attribute with a non-negative value.
func (m *LogRecordMatcher) WithRowsAffected() *LogRecordMatcher {
	return m.withAttr("rows_affected", func(value slog.Value) bool {
		return value.Kind() == slog.KindInt64 && value.Int64() >= 0
	})
}

// WithAttr checks if the log record has an attribute with the given key.
func (m *LogRecordMatcher) WithAttr(key string) *LogRecordMatcher {
	return m.withAttr(key, func(slog.Value) bool { return true })
}

// WithStringAttr checks if the log record has a string-valued attribute with the given key and value.
func (m *LogRecordMatcher) WithStringAttr(key, expected string) *LogRecordMatcher {
	return m.withAttr(key, func(value slog.Value) bool {
		return value.Kind() == slog.KindString && value.String() == expected
	})
}

func (m *LogRecordMatcher) withAttr(key string, matches func(slog.Value) bool) *LogRecordMatcher {
	if !m.found {
		return m
	}

	hasAttr := false
	m.record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key && matches(attr.Value) {
			hasAttr = true
			return false
		}

		return true
	})

	if !hasAttr {
		m.found = false
	}

	return m
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *LogRecordMatcher) Assert() bool {
	return m.found
}
