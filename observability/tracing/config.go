package tracing

import "time"

const reconnectionPeriod = 10 * time.Second

// Config configures the global OpenTelemetry tracer.
type Config struct {
	// Enable exports spans to the collector. When false a no-op tracer
	// provider is installed, so local runs and tests need no collector.
	Enable bool `yaml:"enable"`

	// ExporterHost and ExporterPort address the OTLP gRPC collector.
	ExporterHost string `yaml:"exporter_host" default:"localhost"`
	ExporterPort int    `yaml:"exporter_port" default:"4317"`

	// SampleRate is the fraction of root traces that are sampled.
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1" default:"1"`

	// Tags are added to the trace resource. Values are coerced to strings.
	Tags map[string]any `yaml:"tags"`
}
