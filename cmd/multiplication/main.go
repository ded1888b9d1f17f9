package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/tair/multiplication-service/internal/multiplication"
	httpDelivery "github.com/tair/multiplication-service/internal/multiplication/delivery/http"
	"github.com/tair/multiplication-service/kafka"
	"github.com/tair/multiplication-service/pkg/config"
	"github.com/tair/multiplication-service/pkg/logger"
	"github.com/tair/multiplication-service/pkg/telemetry"
	"github.com/tair/multiplication-service/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting multiplication service")

	ctx := context.Background()

	// Initialize tracing
	tracingCfg := tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		Exporter:       cfg.Tracing.Exporter,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Tracing.OTLPInsecure,
	}

	tp, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	var mp *sdkmetric.MeterProvider
	if cfg.Tracing.MetricsEnabled {
		mp, err = tracing.InitMeter(ctx, tracingCfg)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize meter")
		}
	}

	// Telemetry pipeline
	reg := prometheus.DefaultRegisterer
	sinks, err := buildSinks(ctx, cfg, reg, mp)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize telemetry sinks")
	}

	tel := telemetry.New(telemetry.Config{
		ServiceName: cfg.ServiceName,
		BufferSize:  cfg.Telemetry.BufferSize,
		SinkTimeout: cfg.Telemetry.SinkTimeout,
	}, logger.Logger, sinks...)

	if err := telemetry.RegisterQueueMetrics(reg, tel); err != nil {
		logger.Logger.Warn().Err(err).Msg("Telemetry queue metrics unavailable")
	}

	// Initialize handler with Wire DI
	handler, err := multiplication.InitializeHTTPHandler(tel, reg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	middlewareCfg := httpDelivery.DefaultMiddlewareConfig()
	middlewareCfg.TimeoutDuration = cfg.Server.RequestTimeout
	middlewareCfg.CORSOptions.AllowedOrigins = cfg.Server.CORSAllowedOrigins

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: httpDelivery.NewHTTPHandler(handler, httpDelivery.ServerOptions{
			Middleware:     middlewareCfg,
			TracerProvider: tp,
			Gatherer:       prometheus.DefaultGatherer,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Server.Port).
			Str("metrics_endpoint", "/metrics").
			Str("docs_endpoint", "/docs/index.html").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := tel.Close(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}
	if err := tracing.ShutdownMeter(shutdownCtx, mp); err != nil {
		logger.Logger.Error().Err(err).Msg("Meter shutdown failed")
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
	}

	logger.Logger.Info().Msg("Server stopped")
}

// buildSinks creates the telemetry sinks enabled by cfg. Kafka and Redis are
// optional: an unreachable backend disables its sink instead of failing startup.
func buildSinks(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, mp *sdkmetric.MeterProvider) ([]telemetry.Sink, error) {
	promSink, err := telemetry.NewPrometheusSink(reg)
	if err != nil {
		return nil, err
	}
	sinks := []telemetry.Sink{promSink}

	if mp != nil {
		var provider metric.MeterProvider = mp
		otelSink, err := telemetry.NewOTelMetricsSink(provider)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, otelSink)
	}

	if len(cfg.Telemetry.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.Telemetry.KafkaBrokers, cfg.Telemetry.KafkaTopic, cfg.Telemetry.SinkTimeout)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka telemetry sink disabled")
		} else {
			sinks = append(sinks, telemetry.NewKafkaSink(publisher))
		}
	}

	if cfg.Telemetry.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Telemetry.RedisAddr,
			Password: cfg.Telemetry.RedisPassword,
		})

		pingCtx, cancel := context.WithTimeout(ctx, cfg.Telemetry.SinkTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Str("addr", cfg.Telemetry.RedisAddr).Msg("Redis telemetry sink disabled")
			client.Close()
		} else {
			sinks = append(sinks, telemetry.NewRedisSink(client, cfg.ServiceName, cfg.Telemetry.RedisMaxLen))
		}
	}

	return sinks, nil
}
