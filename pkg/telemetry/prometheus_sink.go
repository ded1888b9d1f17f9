package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink turns records into Prometheus series
type PrometheusSink struct {
	operations   *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	healthChecks prometheus.Counter
	errors       *prometheus.CounterVec
}

// NewPrometheusSink creates the sink and registers its collectors on reg
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiplication_service_operations_total",
			Help: "Total number of arithmetic operations by outcome",
		},
		[]string{"operation", "success"},
	)

	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multiplication_service_operation_duration_seconds",
			Help:    "Duration of traced arithmetic operations in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"operation"},
	)

	healthChecks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "multiplication_service_health_checks_total",
			Help: "Total number of health checks served",
		},
	)

	errs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiplication_service_operation_errors_total",
			Help: "Total number of failed arithmetic operations",
		},
		[]string{"operation"},
	)

	s := &PrometheusSink{}
	var err error
	if s.operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if s.durations, err = register(reg, durations); err != nil {
		return nil, err
	}
	if s.healthChecks, err = register(reg, healthChecks); err != nil {
		return nil, err
	}
	if s.errors, err = register(reg, errs); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PrometheusSink) Name() string { return "prometheus" }

func (s *PrometheusSink) Emit(_ context.Context, rec Record) error {
	switch rec.Kind {
	case KindMetrics:
		if v, ok := rec.Metrics[MetricHealthCheck]; ok {
			if n, ok := toFloat(v); ok && n > 0 {
				s.healthChecks.Add(n)
			}
		}
		if op := rec.Operation(); op != "" {
			success, _ := toBool(rec.Metrics[MetricSuccess])
			s.operations.WithLabelValues(op, strconv.FormatBool(success)).Inc()
		}

	case KindTrace:
		s.durations.WithLabelValues(rec.Trace.Operation).Observe(rec.Trace.DurationMs / 1000)

	case KindError:
		s.errors.WithLabelValues(rec.Error.Operation).Inc()

	default:
		return fmt.Errorf("unsupported record kind %q", rec.Kind)
	}
	return nil
}

// RegisterQueueMetrics exposes the delivery counters of t on reg
func RegisterQueueMetrics(reg prometheus.Registerer, t *Telemetry) error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "multiplication_service_telemetry_records_dropped_total",
			Help: "Telemetry records dropped because the buffer was full or closed",
		}, func() float64 { return float64(t.Stats().Dropped) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "multiplication_service_telemetry_sink_failures_total",
			Help: "Telemetry sink deliveries that failed or timed out",
		}, func() float64 { return float64(t.Stats().Failed) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "multiplication_service_telemetry_queue_length",
			Help: "Telemetry records waiting for delivery",
		}, func() float64 { return float64(t.Stats().Queued) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register telemetry queue metrics: %w", err)
		}
	}
	return nil
}

// register adds c to reg, reusing an identical collector that is already there
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register prometheus collector: %w", err)
	}
	return c, nil
}
