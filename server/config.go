package server

import (
	"time"

	"github.com/kbukum/edlflash/server/middleware"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr              string                `yaml:"addr" mapstructure:"addr" validate:"required,hostname_port"`
	ReadHeaderTimeout time.Duration         `yaml:"read_header_timeout" mapstructure:"read_header_timeout" validate:"gte=0"`
	IdleTimeout       time.Duration         `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration         `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBodySize       string                `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "1MB"
	CORS              middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// ApplyDefaults sets default values for unset fields. There is no write
// timeout: event streams stay open for the life of the GUI.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8765"
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = append([]string(nil), middleware.DefaultOrigins...)
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Last-Event-ID", middleware.RequestIDHeader}
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = 600
	}
}
