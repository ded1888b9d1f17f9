package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/tair/multiplication-service/pkg/logger"
)

// InitMeter initializes an OTLP push meter provider and installs it as the global one.
// The metrics are exported to the same collector the OTLP trace exporter talks to.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	res, err := NewResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exporter, err := otlpmetricgrpc.New(dialCtx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithDialOption(dialOptions(cfg.OTLPInsecure)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second),
		)),
	)

	otel.SetMeterProvider(mp)

	logger.Logger.Info().
		Str("otlp_endpoint", cfg.OTLPEndpoint).
		Msg("Meter provider initialized")
	return mp, nil
}

// ShutdownMeter flushes and stops the meter provider
func ShutdownMeter(ctx context.Context, mp *sdkmetric.MeterProvider) error {
	if mp == nil {
		return nil
	}
	return mp.Shutdown(ctx)
}
