package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Trace exporters understood by pkg/tracing
const (
	ExporterJaeger = "jaeger"
	ExporterOTLP   = "otlp"
	ExporterNone   = "none"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               string
	RequestTimeout     time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Exporter       string
	JaegerEndpoint string
	OTLPEndpoint   string
	OTLPInsecure   bool
	MetricsEnabled bool
}

// TelemetryConfig holds configuration of the telemetry pipeline and its sinks
type TelemetryConfig struct {
	BufferSize    int
	SinkTimeout   time.Duration
	KafkaBrokers  []string
	KafkaTopic    string
	RedisAddr     string
	RedisPassword string
	RedisMaxLen   int64
}

// Config holds the service configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       string

	Server    ServerConfig
	Tracing   TracingConfig
	Telemetry TelemetryConfig
}

// IsDevelopment reports whether console logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads the service configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "multiplication-service"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:               getEnv("HTTP_PORT", "8000"),
			RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			ReadTimeout:        getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:       getEnvDuration("WRITE_TIMEOUT", 35*time.Second),
			IdleTimeout:        getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Tracing: TracingConfig{
			Exporter:       strings.ToLower(getEnv("TRACE_EXPORTER", ExporterJaeger)),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
			OTLPInsecure:   getEnvBool("OTLP_INSECURE", true),
			MetricsEnabled: getEnvBool("OTEL_METRICS_ENABLED", false),
		},
		Telemetry: TelemetryConfig{
			BufferSize:    getEnvInt("TELEMETRY_BUFFER_SIZE", 1024),
			SinkTimeout:   getEnvDuration("TELEMETRY_SINK_TIMEOUT", 2*time.Second),
			KafkaBrokers:  getEnvList("KAFKA_BROKERS", nil),
			KafkaTopic:    getEnv("TELEMETRY_KAFKA_TOPIC", "multiplication-telemetry"),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisMaxLen:   int64(getEnvInt("TELEMETRY_REDIS_MAX_LEN", 10000)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid HTTP port: %q", c.Server.Port)
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	switch c.Tracing.Exporter {
	case ExporterJaeger, ExporterOTLP, ExporterNone:
	default:
		return fmt.Errorf("unknown trace exporter: %q", c.Tracing.Exporter)
	}

	if c.Telemetry.BufferSize < 1 {
		return fmt.Errorf("telemetry buffer size must be at least 1")
	}
	if c.Telemetry.SinkTimeout <= 0 {
		return fmt.Errorf("telemetry sink timeout must be positive")
	}
	if len(c.Telemetry.KafkaBrokers) > 0 && c.Telemetry.KafkaTopic == "" {
		return fmt.Errorf("kafka topic is required when brokers are configured")
	}
	if c.Telemetry.RedisMaxLen < 1 {
		return fmt.Errorf("redis max length must be at least 1")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
