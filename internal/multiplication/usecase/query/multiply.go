package query

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/multiplication-service/internal/multiplication/domain"
	"github.com/tair/multiplication-service/pkg/telemetry"
)

const tracerName = "multiplication-usecase"

// Telemetry is the part of the telemetry component the use cases write to
type Telemetry interface {
	LogTrace(ctx context.Context, tr telemetry.TraceRecord)
	LogMetrics(ctx context.Context, m telemetry.MetricsRecord)
	LogErrorWithTrace(ctx context.Context, err error, metadata map[string]interface{}) telemetry.ErrorRecord
}

// MultiplyQuery represents the query to multiply two numbers
type MultiplyQuery struct {
	FirstNumber  float64
	SecondNumber float64
}

// MultiplyHandler handles multiply query
type MultiplyHandler struct {
	calc      domain.Calculator
	telemetry Telemetry
}

// NewMultiplyHandler creates a new multiply handler
func NewMultiplyHandler(calc domain.Calculator, tel Telemetry) *MultiplyHandler {
	return &MultiplyHandler{
		calc:      calc,
		telemetry: tel,
	}
}

// Handle executes the multiply query. Every failure is recorded through
// LogErrorWithTrace and returned as a *domain.OperationError.
func (h *MultiplyHandler) Handle(ctx context.Context, query MultiplyQuery) (*domain.MultiplicationResult, error) {
	// Child of the request span when there is one
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(tracerName).Start(ctx, "usecase.Multiply",
		trace.WithAttributes(
			attribute.Float64("multiplication.first_number", query.FirstNumber),
			attribute.Float64("multiplication.second_number", query.SecondNumber),
		),
	)
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, h.fail(ctx, span, query, start, domain.NewOperationError(domain.OperationMultiplication, domain.KindCanceled, err))
	}

	product, err := h.run(ctx, query, start)
	if err != nil {
		return nil, h.fail(ctx, span, query, start, err)
	}

	span.SetAttributes(attribute.Float64("multiplication.result", product))
	return domain.NewMultiplicationResult(query.FirstNumber, query.SecondNumber, product), nil
}

// run computes the product and records the success telemetry, turning a panic
// anywhere along the way into an internal OperationError
func (h *MultiplyHandler) run(ctx context.Context, query MultiplyQuery, start time.Time) (product float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewOperationError(domain.OperationMultiplication, domain.KindInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	product = h.calc.Multiply(query.FirstNumber, query.SecondNumber)
	duration := time.Since(start)

	h.telemetry.LogTrace(ctx, telemetry.NewTraceRecord(domain.OperationMultiplication, duration, map[string]interface{}{
		"first_number":  query.FirstNumber,
		"second_number": query.SecondNumber,
		"result":        product,
	}))

	h.telemetry.LogMetrics(ctx, telemetry.MetricsRecord{
		telemetry.MetricOperation:      domain.OperationMultiplication,
		telemetry.MetricSuccess:        true,
		telemetry.MetricResponseTimeMs: telemetry.Milliseconds(duration),
	})

	return product, nil
}

func (h *MultiplyHandler) fail(ctx context.Context, span trace.Span, query MultiplyQuery, start time.Time, err error) error {
	durationMs := telemetry.Milliseconds(time.Since(start))

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	h.telemetry.LogErrorWithTrace(ctx, err, map[string]interface{}{
		telemetry.MetricOperation: domain.OperationMultiplication,
		"first_number":            query.FirstNumber,
		"second_number":           query.SecondNumber,
		"duration_ms":             durationMs,
	})

	h.telemetry.LogMetrics(ctx, telemetry.MetricsRecord{
		telemetry.MetricOperation:      domain.OperationMultiplication,
		telemetry.MetricSuccess:        false,
		telemetry.MetricResponseTimeMs: durationMs,
	})

	return err
}
