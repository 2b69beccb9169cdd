package process

import (
	"time"

	"github.com/kbukum/edlflash/decode"
)

// DefaultGracePeriod is how long a cancelled run waits for the tool to exit
// after SIGTERM, and for its output pipes to close, before forcing both.
const DefaultGracePeriod = 5 * time.Second

// Command configures one execution of an external tool.
type Command struct {
	// Argv is the command specification: Argv[0] is the executable path or
	// name (resolved via PATH), the rest are arguments. Must not be empty.
	Argv []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Decoder converts raw output chunks to text. Defaults to decode.Default.
	Decoder decode.Decoder
	// OnStdout is called with each decoded stdout chunk, from the drain goroutine.
	OnStdout func(chunk string)
	// OnStderr is called with each decoded stderr chunk, from the drain goroutine.
	OnStderr func(chunk string)
	// GracePeriod bounds SIGTERM→SIGKILL escalation and the final pipe drain
	// of a cancelled run. Defaults to DefaultGracePeriod if zero.
	GracePeriod time.Duration
}

// Binary returns the executable of the command, or "" for an empty command.
func (c Command) Binary() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}
