package process

import (
	"context"
	"os/exec"
	"time"

	"github.com/kbukum/edlflash/decode"
	"github.com/kbukum/edlflash/provider"
)

var _ provider.RequestResponse[Command, *Result] = (*Adapter)(nil)

// Config configures a process adapter.
type Config struct {
	// Name identifies this adapter in logs, metrics and spans.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// Binary, when set, is the tool this adapter runs; IsAvailable checks it
	// can be resolved.
	Binary string `yaml:"binary,omitempty" mapstructure:"binary"`
	// Dir is the default working directory of commands that set none.
	Dir string `yaml:"dir,omitempty" mapstructure:"dir"`
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	// Decoder is the default output decoder of commands that set none.
	Decoder decode.Decoder `yaml:"-" mapstructure:"-"`
}

// Adapter runs commands as a provider.RequestResponse, filling in
// adapter-level defaults.
type Adapter struct {
	config Config
}

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "process"
	}
	return &Adapter{config: cfg}
}

// Run executes a command, applying adapter-level defaults.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if cmd.Dir == "" {
		cmd.Dir = a.config.Dir
	}
	if cmd.Decoder == nil {
		cmd.Decoder = a.config.Decoder
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// IsAvailable reports whether the configured binary can be found. Adapters
// without a fixed binary are always available.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	if a.config.Binary == "" {
		return true
	}
	_, err := exec.LookPath(a.config.Binary)
	return err == nil
}

// Execute runs a command.
func (a *Adapter) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return a.Run(ctx, cmd)
}
