package observability

import (
	"time"

	"atsgenie/internal/config"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
	CustomMetrics      config.CustomMetricsConfig
}

// GetObservabilityConfig creates observability config from the application config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:        "atsgenie",
			ServiceVersion:     version,
			ServiceInstance:    "atsgenie-1",
			Enabled:            false,
			SampleRate:         1.0,
			CollectionInterval: 30 * time.Second,
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" || serviceVersion == "dev" {
		serviceVersion = version
	}

	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         obs.SampleRate,
		CollectionInterval: interval,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled && obs.Metrics.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP:          obs.OTLP,
		CustomMetrics: obs.CustomMetrics,
	}
}
