package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// GELFAddr is an optional host:port of a Graylog UDP input.
	GELFAddr string `koanf:"gelf_addr"`
}

type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		NewRelic: NewRelicConfig{
			DistributedTracingEnabled: true,
		},
	}
}

func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level %q: %w", c.Logging.Level, err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging format %q (want console or json)", c.Logging.Format)
	}
	return nil
}

// NewRelicEnabled reports whether APM reporting should be started.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c.NewRelic.LicenseKey != ""
}

func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
