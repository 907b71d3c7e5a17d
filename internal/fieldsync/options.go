package fieldsync

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Handler
type Option func(*options)

type options struct {
	onOutcome        func(Outcome)
	cancelSuperseded bool
	timeout          time.Duration
	logger           *zap.Logger
}

func defaultOptions() options {
	return options{logger: zap.NewNop()}
}

// WithOutcomeHook calls fn with the outcome of every completed lookup,
// on the goroutine that ran it.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(o *options) {
		o.onOutcome = fn
	}
}

// WithCancelSuperseded cancels the in-flight lookup when a newer selection
// is made. A superseded response is never written, even if it arrives.
func WithCancelSuperseded() Option {
	return func(o *options) {
		o.cancelSuperseded = true
	}
}

// WithLookupTimeout bounds each lookup. Zero means no timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the handler logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
