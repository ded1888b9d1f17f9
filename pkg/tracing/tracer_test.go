package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tair/multiplication-service/pkg/config"
)

func testConfig(exporter string) Config {
	return Config{
		ServiceName:    "multiplication-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Exporter:       exporter,
		JaegerEndpoint: "http://localhost:14268/api/traces",
		OTLPEndpoint:   "localhost:4317",
		OTLPInsecure:   true,
	}
}

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		wantErr  bool
	}{
		{"no exporter", config.ExporterNone, false},
		// Exporters connect lazily, so creation succeeds without a collector
		{"jaeger", config.ExporterJaeger, false},
		{"otlp", config.ExporterOTLP, false},
		{"unknown", "zipkin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer otel.SetTracerProvider(noop.NewTracerProvider())

			tp, err := InitTracer(context.Background(), testConfig(tt.exporter))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tp)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tp)
			assert.Same(t, tp, otel.GetTracerProvider())

			// Only the exporter-less provider gets a span; the others would try to reach a collector
			if tt.exporter == config.ExporterNone {
				_, span := otel.Tracer("test").Start(context.Background(), "op")
				assert.True(t, span.SpanContext().IsValid())
				span.End()
			}

			assert.NoError(t, Shutdown(context.Background(), tp))
		})
	}
}

func TestShutdown_NonSDKProvider(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background(), noop.NewTracerProvider()))
}

func TestShutdownMeter_Nil(t *testing.T) {
	assert.NoError(t, ShutdownMeter(context.Background(), nil))
}

func TestNewResource(t *testing.T) {
	res, err := NewResource(context.Background(), testConfig(config.ExporterNone))
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "multiplication-service", attrs["service.name"])
	assert.Equal(t, "1.0.0", attrs["service.version"])
	assert.Equal(t, "test", attrs["deployment.environment"])
}
