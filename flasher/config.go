package flasher

import (
	"time"

	"github.com/kbukum/edlflash/process"
	"github.com/kbukum/edlflash/resilience"
)

// Config configures tool resolution and execution.
type Config struct {
	// ToolsDir holds QSaharaServer and fh_loader. Defaults to <exe dir>/tools.
	ToolsDir string `yaml:"tools_dir" mapstructure:"tools_dir"`
	// WorkDir is the working directory of tool runs. Defaults to the
	// directory of the executable, as reported by Toolchain.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
	// Encoding of tool output: auto, gbk or utf8.
	Encoding string `yaml:"encoding" mapstructure:"encoding" validate:"omitempty,oneof=auto gbk cp936 gb2312 utf8 utf-8"`
	// GracePeriod bounds SIGTERM→SIGKILL escalation of a cancelled run.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	// Timeout bounds each tool run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// DeviceWait is how long a run waits for the device while another run
	// owns it. Zero fails immediately, negative waits until cancelled.
	DeviceWait time.Duration `yaml:"device_wait" mapstructure:"device_wait"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Encoding == "" {
		c.Encoding = "auto"
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = process.DefaultGracePeriod
	}
}

func (c *Config) deviceWait() time.Duration {
	if c.DeviceWait < 0 {
		return resilience.WaitForever
	}
	return c.DeviceWait
}
