package observability

import (
	"context"
	stderrors "errors"
	"fmt"
)

// TelemetryConfig enables exporting traces and metrics to an OTLP collector.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills zero fields.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// ShutdownFunc flushes and stops the exporters started by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup starts the tracer and meter providers when telemetry is enabled and
// returns the metric instruments for tool runs. With telemetry disabled the
// instruments are bound to the global no-op provider and shutdown does nothing.
func Setup(ctx context.Context, cfg TelemetryConfig, service, version, environment string) (*Metrics, ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		m, err := NewMetrics(Meter(service))
		return m, noop, err
	}
	cfg.ApplyDefaults()

	tc := DefaultTracerConfig(service)
	tc.ServiceVersion, tc.Environment = version, environment
	tc.Endpoint, tc.Insecure, tc.SampleRate = cfg.Endpoint, cfg.Insecure, cfg.SampleRate
	tp, err := InitTracer(ctx, tc)
	if err != nil {
		return nil, noop, fmt.Errorf("tracer: %w", err)
	}

	mc := DefaultMeterConfig(service)
	mc.ServiceVersion, mc.Environment = version, environment
	mc.Endpoint, mc.Insecure = cfg.Endpoint, cfg.Insecure
	mp, err := InitMeter(ctx, &mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, noop, fmt.Errorf("meter: %w", err)
	}

	m, err := NewMetrics(Meter(service))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, noop, err
	}

	return m, func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
