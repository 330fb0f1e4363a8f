package instrumentation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: taskbridge)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	// In Kubernetes, this is typically the pod name
	ServiceInstanceID string

	// K8sNamespace is the Kubernetes namespace where the service is running
	K8sNamespace string

	// K8sPodName is the Kubernetes pod name
	K8sPodName string

	// Transport is the MCP transport this process serves (stdio or
	// streamable-http). Recorded as a resource attribute when set.
	Transport string

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// (default: localhost:4318 for HTTP)
	OTLPEndpoint string

	// OTLPInsecure determines if the OTLP connection should be insecure
	// (default: true for local development)
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0)
	// (default: 0.1 = 10% of traces sampled)
	TraceSamplingRate float64

	// MetricsInterval is how often the push exporters (otlp, stdout)
	// export metrics (default: 60s, env METRICS_INTERVAL). The pull-based
	// prometheus exporter ignores it.
	MetricsInterval time.Duration

	// AuditLogging configures audit logging for tool invocations
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig configures audit logging behavior.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// LogLevel for audit entries: "debug", "info", "warn" (default: "info")
	LogLevel string
}

// Exporter type constants
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Status constants for metrics and audit logging
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Task store operation constants
const (
	OperationCreate = "create"
	OperationList   = "list"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// DefaultConfig returns a Config with default values, reading from
// environment variables where available.
func DefaultConfig() Config {
	hostname, _ := os.Hostname()

	return Config{
		ServiceName:       getEnvOrDefault("OTEL_SERVICE_NAME", "taskbridge"),
		ServiceVersion:    getEnvOrDefault("SERVICE_VERSION", "dev"),
		ServiceInstanceID: getEnvOrDefault("SERVICE_INSTANCE_ID", hostname),
		K8sNamespace:      os.Getenv("K8S_NAMESPACE"),
		K8sPodName:        os.Getenv("K8S_POD_NAME"),
		Enabled:           getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   getEnvOrDefault("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTLPInsecure:      getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", true),
		TraceSamplingRate: getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
		MetricsInterval:   getEnvDurationOrDefault("METRICS_INTERVAL", 60*time.Second),
		AuditLogging: AuditLoggingConfig{
			Enabled:  getEnvBoolOrDefault("AUDIT_LOGGING_ENABLED", true),
			LogLevel: getEnvOrDefault("AUDIT_LOG_LEVEL", "info"),
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0.0 || c.TraceSamplingRate > 1.0 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{
		ExporterPrometheus: true,
		ExporterOTLP:       true,
		ExporterStdout:     true,
	}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter: %s (valid: prometheus, otlp, stdout)", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{
		ExporterOTLP:   true,
		ExporterStdout: true,
		ExporterNone:   true,
	}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter: %s (valid: otlp, stdout, none)", c.TracingExporter)
	}

	if c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP {
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("OTLP endpoint required when using OTLP exporter")
		}
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the environment variable as bool or a default.
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvFloatOrDefault returns the environment variable as float64 or a default.
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDurationOrDefault returns the environment variable as a duration or
// a default. Unparseable and non-positive values fall back to the default.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
