package store

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/on-the-ground/composable_ive_go/store"

type options struct {
	name        string
	logger      *zap.Logger
	bufferSize  int
	metrics     *Metrics
	tracer      trace.Tracer
	printChange func(string)
}

// Option configures a Store.
type Option func(*options)

// WithName labels the store in logs, metrics and spans.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger that receives programmer errors at DPanic level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBufferSize sets how many actions may wait for the store loop.
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer overrides the tracer of the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithChangePrinting passes a diff of every state change to print.
func WithChangePrinting(print func(string)) Option {
	return func(o *options) { o.printChange = print }
}

// defaultOptions leaves the logger unset; New falls back to a no-op logger.
func defaultOptions() options {
	return options{
		name:       "store",
		bufferSize: 64,
		tracer:     otel.Tracer(tracerName),
	}
}
