package flow

import (
	"github.com/kbukum/typedflow/config"
	"github.com/kbukum/typedflow/logger"
	"github.com/kbukum/typedflow/observability"
)

// EmptyFoldPolicy decides what a fold without an initial value does when it
// receives no items.
type EmptyFoldPolicy string

const (
	// EmptyFoldError fails the run with EMPTY_STREAM.
	EmptyFoldError EmptyFoldPolicy = config.EmptyFoldError
	// EmptyFoldAbsent leaves the output out of the result.
	EmptyFoldAbsent EmptyFoldPolicy = config.EmptyFoldAbsent
)

type options struct {
	name      string
	log       *logger.Logger
	metrics   *observability.Metrics
	tracing   bool
	emptyFold EmptyFoldPolicy
}

func defaultOptions() options {
	return options{
		name:      "flow",
		emptyFold: EmptyFoldError,
	}
}

// Option configures a Flow or OpenPipe.
type Option func(*options)

// WithName sets the name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The default is the registered "flow" logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracing opens a span for every run.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = enabled }
}

// WithEmptyFold sets the empty-fold policy.
func WithEmptyFold(p EmptyFoldPolicy) Option {
	return func(o *options) { o.emptyFold = p }
}

// WithConfig applies engine settings. Metrics still need WithMetrics, since
// the instruments belong to the caller's meter.
func WithConfig(cfg config.EngineConfig) Option {
	return func(o *options) {
		if cfg.EmptyFold != "" {
			o.emptyFold = EmptyFoldPolicy(cfg.EmptyFold)
		}
		o.tracing = cfg.Tracing
	}
}

func (o options) getLogger() *logger.Logger {
	if o.log != nil {
		return o.log
	}
	return logger.Get("flow")
}
