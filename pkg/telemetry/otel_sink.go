package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/tair/multiplication-service/pkg/telemetry"

// OTelMetricsSink records telemetry as OpenTelemetry instruments
type OTelMetricsSink struct {
	operations   metric.Int64Counter
	errors       metric.Int64Counter
	healthChecks metric.Int64Counter
	duration     metric.Float64Histogram
	responseTime metric.Float64Histogram
}

// NewOTelMetricsSink creates the instruments on a meter from mp
func NewOTelMetricsSink(mp metric.MeterProvider) (*OTelMetricsSink, error) {
	meter := mp.Meter(meterName)

	operations, err := meter.Int64Counter("operations",
		metric.WithDescription("Arithmetic operations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("create operations counter: %w", err)
	}

	errs, err := meter.Int64Counter("operation.errors",
		metric.WithDescription("Failed arithmetic operations"))
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}

	health, err := meter.Int64Counter("health_checks",
		metric.WithDescription("Health checks served"))
	if err != nil {
		return nil, fmt.Errorf("create health checks counter: %w", err)
	}

	duration, err := meter.Float64Histogram("operation.duration",
		metric.WithDescription("Manually timed operation duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	responseTime, err := meter.Float64Histogram("operation.response_time",
		metric.WithDescription("Response time reported with operation metrics"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create response time histogram: %w", err)
	}

	return &OTelMetricsSink{
		operations:   operations,
		errors:       errs,
		healthChecks: health,
		duration:     duration,
		responseTime: responseTime,
	}, nil
}

func (s *OTelMetricsSink) Name() string { return "otel" }

func (s *OTelMetricsSink) Emit(ctx context.Context, rec Record) error {
	service := attribute.String("service", rec.Service)

	switch rec.Kind {
	case KindMetrics:
		if v, ok := rec.Metrics[MetricHealthCheck]; ok {
			if n, ok := toFloat(v); ok && n > 0 {
				s.healthChecks.Add(ctx, int64(n), metric.WithAttributes(service))
			}
		}
		op := rec.Operation()
		if op == "" {
			return nil
		}
		success, _ := toBool(rec.Metrics[MetricSuccess])
		attrs := metric.WithAttributes(service,
			attribute.String("operation", op),
			attribute.Bool("success", success))
		s.operations.Add(ctx, 1, attrs)
		if ms, ok := toFloat(rec.Metrics[MetricResponseTimeMs]); ok {
			s.responseTime.Record(ctx, ms, attrs)
		}

	case KindTrace:
		s.duration.Record(ctx, rec.Trace.DurationMs, metric.WithAttributes(service,
			attribute.String("operation", rec.Trace.Operation)))

	case KindError:
		s.errors.Add(ctx, 1, metric.WithAttributes(service,
			attribute.String("operation", rec.Error.Operation)))

	default:
		return fmt.Errorf("unsupported record kind %q", rec.Kind)
	}
	return nil
}
