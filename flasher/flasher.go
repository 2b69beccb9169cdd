package flasher

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/kbukum/edlflash/decode"
	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/events"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/process"
	"github.com/kbukum/edlflash/provider"
	"github.com/kbukum/edlflash/resilience"
	"github.com/kbukum/edlflash/serialport"
)

// Options carries the collaborators of a Flasher.
type Options struct {
	// Debug echoes every command line as a log event.
	Debug bool
	// Emitter receives log and progress events. Defaults to events.Nop.
	Emitter events.Emitter
	// Logger defaults to the global logger's "flasher" component.
	Logger *logger.Logger
	// Metrics, when set, records every run.
	Metrics *observability.Metrics
	// ServiceName prefixes span names. Defaults to "edlflash".
	ServiceName string
}

// Flasher runs labelled tool steps against one device, one at a time.
type Flasher struct {
	mu          sync.RWMutex
	toolchain   *Toolchain
	adapter     *process.Adapter
	lock        *resilience.Bulkhead
	emitter     events.Emitter
	log         *logger.Logger
	metrics     *observability.Metrics
	serviceName string
	debug       bool
}

// New creates a Flasher for the given toolchain.
func New(cfg Config, tc *Toolchain, opts Options) (*Flasher, error) {
	cfg.ApplyDefaults()
	dec, err := decode.ByName(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if tc == nil {
		tc = &Toolchain{}
	}
	if tc.WorkDir == "" {
		tc.WorkDir = cfg.WorkDir
	}
	if opts.Emitter == nil {
		opts.Emitter = events.Nop
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get("flasher")
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "edlflash"
	}

	return &Flasher{
		toolchain: tc,
		adapter: process.NewAdapter(process.Config{
			Name:        "flasher",
			Dir:         tc.WorkDir,
			GracePeriod: cfg.GracePeriod,
			Timeout:     cfg.Timeout,
			Decoder:     dec,
		}),
		lock:        resilience.NewBulkhead(resilience.DeviceLockConfig("device", cfg.deviceWait())),
		emitter:     opts.Emitter,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		serviceName: opts.ServiceName,
		debug:       opts.Debug,
	}, nil
}

// Toolchain returns a snapshot of the resolved toolchain.
func (f *Flasher) Toolchain() Toolchain {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return *f.toolchain
}

// CheckHealth reports the health of the current toolchain.
func (f *Flasher) CheckHealth(ctx context.Context) observability.Health {
	tc := f.Toolchain()
	return tc.CheckHealth(ctx)
}

// RefreshPort rediscovers the device and points the toolchain at it. When
// discovery fails the toolchain is left disconnected and the "Not found"
// placeholder is returned with the error.
func (f *Flasher) RefreshPort(finder PortFinder) (serialport.Port, error) {
	port, err := finder.Discover()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.toolchain.detach()
		return f.toolchain.Port(), err
	}
	f.toolchain.attach(runtime.GOOS, port)
	f.log.Info("device attached", logger.Fields("port", port.Name, "product", port.Product))
	return port, nil
}

// ExecuteWithLabel runs argv and reports the outcome as "<label>...OK" or
// "<label>...Error". Each chunk of tool stdout emits a progress event. The
// return values are those of process.Execute.
func (f *Flasher) ExecuteWithLabel(ctx context.Context, label string, argv []string) (string, error) {
	return f.ExecuteInDir(ctx, label, argv, "")
}

// ExecuteInDir is ExecuteWithLabel with an explicit working directory.
func (f *Flasher) ExecuteInDir(ctx context.Context, label string, argv []string, dir string) (string, error) {
	if f.debug {
		events.Log(f.emitter, strings.Join(argv, " "))
	}

	result, err := f.step(label).Execute(ctx, process.Command{
		Argv: argv,
		Dir:  dir,
		OnStdout: func(string) {
			events.Progress(f.emitter)
		},
	})
	if err != nil {
		events.Log(f.emitter, label+"...Error")
		return "", err
	}
	events.Log(f.emitter, label+"...OK")
	return result.Stdout, nil
}

// Sahara runs QSaharaServer against the attached port.
func (f *Flasher) Sahara(ctx context.Context, label string, extra ...string) (string, error) {
	tc, err := f.requireDevice(label)
	if err != nil {
		return "", err
	}
	return f.ExecuteWithLabel(ctx, label, tc.SaharaArgs(extra...))
}

// Firehose runs fh_loader against the attached port.
func (f *Flasher) Firehose(ctx context.Context, label string, extra ...string) (string, error) {
	tc, err := f.requireDevice(label)
	if err != nil {
		return "", err
	}
	return f.ExecuteWithLabel(ctx, label, tc.FirehoseArgs(extra...))
}

// Busy reports whether a tool currently owns the device.
func (f *Flasher) Busy() bool {
	return f.lock.InUse() > 0
}

func (f *Flasher) requireDevice(label string) (Toolchain, error) {
	tc := f.Toolchain()
	if tc.Connected {
		return tc, nil
	}
	events.Log(f.emitter, label+"...Error")
	return tc, errors.NotFound("usb serial port", "")
}

// step wraps the process adapter for one labelled run. The label names the
// run in logs, metrics and spans.
func (f *Flasher) step(label string) provider.RequestResponse[process.Command, *process.Result] {
	return provider.Step(
		provider.Func(label, f.adapter.Execute),
		f.serviceName,
		f.metrics,
		f.log.WithFields(logger.Fields(logger.FieldLabel, label)),
		f.lock,
	)
}
