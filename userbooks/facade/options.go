package facade

import (
	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

// Option defines a functional option for configuring the UserDataFacade.
type Option func(*UserDataFacade) error

// WithLogger sets the basic logger for the UserDataFacade.
// Every stage of an operation is logged at info level, failures at error level.
func WithLogger(logger userbooks.Logger) Option {
	return func(f *UserDataFacade) error {
		f.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the UserDataFacade.
// When set, it is preferred over the basic logger.
func WithContextualLogger(logger userbooks.ContextualLogger) Option {
	return func(f *UserDataFacade) error {
		f.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the UserDataFacade.
func WithMetrics(collector userbooks.MetricsCollector) Option {
	return func(f *UserDataFacade) error {
		f.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the UserDataFacade.
func WithTracing(collector userbooks.TracingCollector) Option {
	return func(f *UserDataFacade) error {
		f.tracingCollector = collector
		return nil
	}
}
