// Package helper provides test doubles for the observability interfaces of the userbooks packages:
// a slog handler that captures log records, a metrics collector spy and a tracing collector spy.
package helper
