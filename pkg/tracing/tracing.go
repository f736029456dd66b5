// Package tracing exposes navigations as OpenTelemetry spans. The
// Observer plugs into the router's observer slot and opens one span
// per navigation attempt, ending it when the attempt settles.
//
// The span lives in the context the router threads through the
// navigation, so route loaders can hang child spans and events off it
// via SpanFromContext.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zenith-dev/zenith/pkg/router"
)

const defaultTracerName = "zenith"

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer to use (default: "zenith").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider
	// registered with otel.SetTracerProvider.
	TracerProvider trace.TracerProvider

	// Filter decides whether a navigation is traced. Nil traces all.
	Filter func(path string) bool

	// AttributeExtractor adds custom attributes to each navigation
	// span.
	AttributeExtractor func(path string, token uint64) []attribute.KeyValue
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithFilter sets a predicate that decides which paths are traced.
func WithFilter(filter func(path string) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a function that adds custom span
// attributes per navigation.
func WithAttributeExtractor(fn func(path string, token uint64) []attribute.KeyValue) Option {
	return func(c *Config) {
		c.AttributeExtractor = fn
	}
}

// Observer traces navigations. It implements router.Observer.
type Observer struct {
	tracer    trace.Tracer
	filter    func(string) bool
	extractor func(string, uint64) []attribute.KeyValue
}

// navSpanKey marks spans this package opened. NavigationCompleted only
// ends spans found under this key, never spans the host application
// put in the context.
type navSpanKey struct{}

// New builds a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{
		tracer:    tp.Tracer(config.TracerName),
		filter:    config.Filter,
		extractor: config.AttributeExtractor,
	}
}

// NavigationStarted implements router.Observer. It opens a span and
// returns a context carrying it.
func (o *Observer) NavigationStarted(ctx context.Context, path string, token uint64) context.Context {
	if o.filter != nil && !o.filter(path) {
		return ctx
	}

	attrs := []attribute.KeyValue{
		attribute.String("zenith.path", path),
		attribute.Int64("zenith.token", int64(token)),
	}
	if o.extractor != nil {
		attrs = append(attrs, o.extractor(path, token)...)
	}

	spanCtx, span := o.tracer.Start(ctx, formatSpanName(path),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
	return context.WithValue(spanCtx, navSpanKey{}, span)
}

// NavigationCompleted implements router.Observer. It records the
// outcome and ends the span opened by NavigationStarted. Failed
// navigations mark the span status as Error; all other outcomes,
// including unmatched and superseded, end it Ok.
func (o *Observer) NavigationCompleted(ctx context.Context, path string, token uint64, outcome router.Outcome, elapsed time.Duration) {
	span, ok := ctx.Value(navSpanKey{}).(trace.Span)
	if !ok {
		return
	}

	span.SetAttributes(attribute.String("zenith.outcome", outcome.String()))
	if outcome == router.OutcomeFailed {
		span.SetStatus(codes.Error, "navigation failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(time.Now()))
}

// SpanFromContext returns the navigation span carried by ctx. Inside a
// route loader this is the span for the navigation that triggered the
// load. Falls back to the span recorded by the OpenTelemetry API, or a
// no-op span when there is none.
func SpanFromContext(ctx context.Context) trace.Span {
	if span, ok := ctx.Value(navSpanKey{}).(trace.Span); ok {
		return span
	}
	return trace.SpanFromContext(ctx)
}

func formatSpanName(path string) string {
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("navigate %s", path)
}
