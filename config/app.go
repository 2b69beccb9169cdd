package config

import (
	"fmt"

	"github.com/kbukum/edlflash/flasher"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/server"
	"github.com/kbukum/edlflash/validation"
)

// DefaultServiceName names the service in logs, telemetry and env keys.
const DefaultServiceName = "edlflash"

// AppConfig is the complete edlflash configuration.
//
//	name: edlflash
//	debug: false
//	flasher:
//	  encoding: auto
//	  grace_period: 5s
//	  device_wait: 0s
//	server:
//	  addr: 127.0.0.1:8765
//	telemetry:
//	  enabled: false
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Flasher   flasher.Config                `yaml:"flasher" mapstructure:"flasher"`
	Server    server.Config                 `yaml:"server" mapstructure:"server"`
	Telemetry observability.TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills zero fields in every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Flasher.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Telemetry.Enabled {
		c.Telemetry.ApplyDefaults()
	}
}

// Validate checks every section and reports all problems at once.
func (c *AppConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads config.yml, .env and EDLFLASH_* environment variables, then
// applies defaults and validates the result.
func Load(opts ...LoaderOption) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := LoadConfig(DefaultServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
