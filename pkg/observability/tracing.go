// Package observability wires OpenTelemetry tracing into scenepool. Template
// loads are the only operation that can be slow, so they are the only one
// traced.
package observability

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/pool"
)

// LoadSpanName is the span recorded around every template load.
const LoadSpanName = "scenepool.load"

// Attribute keys set on load spans.
const (
	TemplateKey   = attribute.Key("scenepool.template")
	InstanceIDKey = attribute.Key("scenepool.instance_id")
)

// ShutdownFunc flushes pending spans and releases the tracer provider.
type ShutdownFunc func(context.Context) error

// Option customizes InitTracing.
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	writer   io.Writer
	version  string
}

// WithExporter replaces the default stdout exporter.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporter = exp }
}

// WithWriter directs the stdout exporter to w.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithServiceVersion tags the resource with the running build version.
func WithServiceVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// InitTracing installs a global tracer provider configured from cfg and
// returns the tracer to hand to TracedLoader. When tracing is disabled it
// returns a no-op tracer and a shutdown that does nothing.
func InitTracing(cfg config.TracingConfig, opts ...Option) (trace.Tracer, ShutdownFunc, error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider().Tracer(cfg.ServiceName), func(context.Context) error { return nil }, nil
	}

	o := options{version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(o.version),
		),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create trace resource")
	}

	exporter := o.exporter
	if exporter == nil {
		stdoutOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if o.writer != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(o.writer))
		}
		exporter, err = stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create stdout exporter")
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRate)),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to shutdown tracer")
		}
		return nil
	}
	return tp.Tracer(cfg.ServiceName), shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// TracedLoader wraps next so that every Load runs inside a span. Spans are
// parented on ctx, which is typically the run's root span context.
func TracedLoader(ctx context.Context, next pool.Loader, tracer trace.Tracer) pool.Loader {
	if ctx == nil {
		ctx = context.Background()
	}
	return &tracedLoader{ctx: ctx, next: next, tracer: tracer}
}

type tracedLoader struct {
	ctx    context.Context
	next   pool.Loader
	tracer trace.Tracer
}

func (l *tracedLoader) Load(template string) (pool.RawInstance, error) {
	_, span := l.tracer.Start(l.ctx, LoadSpanName,
		trace.WithAttributes(TemplateKey.String(template)))
	defer span.End()

	raw, err := l.next.Load(template)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return raw, err
	}
	if raw != nil {
		span.SetAttributes(InstanceIDKey.Int64(int64(raw.ID())))
	}
	return raw, nil
}
