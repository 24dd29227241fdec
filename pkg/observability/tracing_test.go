package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/pool"
)

type stubRaw struct{ id pool.InstanceID }

func (s stubRaw) ID() pool.InstanceID                             { return s.id }
func (s stubRaw) LocalTransform() pool.Transform                  { return pool.Transform{} }
func (s stubRaw) SetLocalPlacement(pool.Vector3, pool.Quaternion) {}
func (s stubRaw) Active() bool                                    { return true }
func (s stubRaw) Activate()                                       {}
func (s stubRaw) Deactivate()                                     {}
func (s stubRaw) Teardown()                                       {}

func restoreGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracedLoaderRecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	loader := TracedLoader(context.Background(), pool.LoaderFunc(func(template string) (pool.RawInstance, error) {
		return stubRaw{id: 42}, nil
	}), tp.Tracer("test"))

	raw, err := loader.Load("fx/spark")
	require.NoError(t, err)
	assert.Equal(t, pool.InstanceID(42), raw.ID())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, LoadSpanName, spans[0].Name())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "fx/spark", attrs[TemplateKey].AsString())
	assert.Equal(t, int64(42), attrs[InstanceIDKey].AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracedLoaderRecordsError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	loader := TracedLoader(nil, pool.LoaderFunc(func(string) (pool.RawInstance, error) { //nolint:staticcheck // nil context falls back to Background
		return nil, assert.AnError
	}), tp.Tracer("test"))

	_, err := loader.Load("missing")
	require.ErrorIs(t, err, assert.AnError)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
	assert.NotContains(t, attrMap(spans[0].Attributes()), InstanceIDKey)
}

func TestInitTracingDisabled(t *testing.T) {
	restoreGlobalProvider(t)
	before := otel.GetTracerProvider()

	tracer, shutdown, err := InitTracing(config.TracingConfig{Enabled: false, ServiceName: "scenepool"})
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "ignored")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInitTracingExportsToWriter(t *testing.T) {
	restoreGlobalProvider(t)
	var buf bytes.Buffer

	tracer, shutdown, err := InitTracing(config.TracingConfig{
		Enabled:      true,
		ServiceName:  "scenepool-test",
		SamplingRate: 1.0,
	}, WithWriter(&buf), WithServiceVersion("test"))
	require.NoError(t, err)

	loader := TracedLoader(context.Background(), pool.LoaderFunc(func(string) (pool.RawInstance, error) {
		return stubRaw{id: 1}, nil
	}), tracer)
	_, err = loader.Load("enemy")
	require.NoError(t, err)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), LoadSpanName)
	assert.Contains(t, buf.String(), "scenepool-test")
}

func TestInitTracingUsesExporter(t *testing.T) {
	restoreGlobalProvider(t)
	exp := tracetest.NewInMemoryExporter()

	tracer, shutdown, err := InitTracing(config.TracingConfig{
		Enabled:      true,
		ServiceName:  "scenepool",
		SamplingRate: 0,
	}, WithExporter(exp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := tracer.Start(context.Background(), "never-sampled")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}
