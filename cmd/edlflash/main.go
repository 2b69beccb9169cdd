// edlflash - run EDL flashing tools against a USB serial device
//
// Usage:
//
//	edlflash port                         Detect the device port
//	edlflash run [flags] -- <command>     Run a command as a labelled step
//	edlflash sahara [flags] -- <args>     Run QSaharaServer against the device
//	edlflash firehose [flags] -- <args>   Run fh_loader against the device
//	edlflash serve [flags]                Serve the local HTTP bridge
//	edlflash version                      Show build information
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kbukum/edlflash/bootstrap"
	"github.com/kbukum/edlflash/config"
	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/events"
	"github.com/kbukum/edlflash/flasher"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/serialport"
	"github.com/kbukum/edlflash/version"
)

// Global flags
var (
	configFlag   string
	envFileFlag  string
	debugFlag    bool
	encodingFlag string
	toolsDirFlag string
	workDirFlag  string
	labelFlag    string
	dirFlag      string
	addrFlag     string
	jsonFlag     bool
)

func main() {
	flag.StringVarP(&configFlag, "config", "c", "", "Config file (default: config.yml next to the working directory or executable)")
	flag.StringVar(&envFileFlag, "env-file", "", "Env file loaded before EDLFLASH_* variables are read")
	flag.BoolVar(&debugFlag, "debug", false, "Log at debug level and echo every command line")
	flag.StringVarP(&encodingFlag, "encoding", "e", "", "Tool output encoding: auto, gbk, utf8")
	flag.StringVar(&toolsDirFlag, "tools-dir", "", "Directory holding QSaharaServer and fh_loader")
	flag.StringVar(&workDirFlag, "work-dir", "", "Working directory of tool runs")
	flag.StringVarP(&labelFlag, "label", "l", "", "Step label reported as <label>...OK or <label>...Error")
	flag.StringVarP(&dirFlag, "dir", "d", "", "Working directory of this run (run only)")
	flag.StringVar(&addrFlag, "addr", "", "Listen address for serve (default 127.0.0.1:8765)")
	flag.BoolVar(&jsonFlag, "json", false, "Print results as JSON")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `edlflash - run EDL flashing tools against a USB serial device

Usage:
  edlflash port                         Detect the device port
  edlflash run [flags] -- <command>     Run a command as a labelled step
  edlflash sahara [flags] -- <args>     Run QSaharaServer against the device
  edlflash firehose [flags] -- <args>   Run fh_loader against the device
  edlflash serve [flags]                Serve the local HTTP bridge
  edlflash version                      Show build information

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "version":
		cmdVersion()
	case "port":
		cmdPort()
	case "run":
		if len(cmdArgs) == 0 {
			fatal("usage: edlflash run [--label L] [--dir D] -- <command>")
		}
		cmdRun(cmdArgs)
	case "sahara":
		cmdTool(cmd, cmdArgs)
	case "firehose":
		cmdTool(cmd, cmdArgs)
	case "serve":
		cmdServe()
	default:
		fatal("unknown command: %s", cmd)
	}
}

// env is what every command except version needs: the app lifecycle, the
// port finder and a Flasher bound to the resolved toolchain.
type env struct {
	app     *bootstrap.App[*config.AppConfig]
	finder  *serialport.Finder
	metrics *observability.Metrics
	tc      *flasher.Toolchain
}

// setup loads the configuration, applies flag overrides and starts telemetry.
func setup() *env {
	var opts []config.LoaderOption
	if configFlag != "" {
		opts = append(opts, config.WithConfigFile(configFlag))
	}
	if envFileFlag != "" {
		opts = append(opts, config.WithEnvFile(envFileFlag))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fatal("%v", err)
	}
	applyFlags(cfg)

	// NewApp re-validates, so bad flag values are reported like bad config.
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		fatal("%v", err)
	}

	metrics, shutdown, err := observability.Setup(context.Background(), cfg.Telemetry, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		fatal("telemetry: %v", err)
	}
	if err := app.RegisterComponent(telemetryComponent(shutdown)); err != nil {
		fatal("%v", err)
	}

	finder := serialport.NewFinder()
	tc, err := flasher.Resolve(cfg.Flasher, finder)
	if tc == nil {
		fatal("%v", err)
	}
	if err != nil {
		app.Logger.Warn("no device attached", logger.Fields(logger.FieldError, err.Error()))
	}

	return &env{app: app, finder: finder, metrics: metrics, tc: tc}
}

func applyFlags(cfg *config.AppConfig) {
	if debugFlag {
		cfg.Debug = true
	}
	if encodingFlag != "" {
		cfg.Flasher.Encoding = encodingFlag
	}
	if toolsDirFlag != "" {
		cfg.Flasher.ToolsDir = toolsDirFlag
	}
	if workDirFlag != "" {
		cfg.Flasher.WorkDir = workDirFlag
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}
	if cfg.Version == "" {
		cfg.Version = version.Short()
	}
}

// newFlasher builds the Flasher, sending its events to the log and to extra.
func (e *env) newFlasher(extra ...events.Emitter) *flasher.Flasher {
	cfg := e.app.Cfg
	emitters := append([]events.Emitter{events.NewLogEmitter(e.app.Logger.WithComponent("events"))}, extra...)

	f, err := flasher.New(cfg.Flasher, e.tc, flasher.Options{
		Debug:       cfg.Debug,
		Emitter:     events.Multi(emitters...),
		Logger:      e.app.Logger.WithComponent("flasher"),
		Metrics:     e.metrics,
		ServiceName: cfg.Name,
	})
	if err != nil {
		fatal("%v", err)
	}
	return f
}

func cmdVersion() {
	if jsonFlag {
		printJSON(version.Get())
		return
	}
	fmt.Println(version.String())
}

func cmdPort() {
	e := setup()
	f := e.newFlasher()
	err := e.app.RunTask(context.Background(), func(ctx context.Context) error {
		port, err := f.RefreshPort(e.finder)
		if jsonFlag {
			printJSON(port)
		} else {
			fmt.Printf("%s\t%s\n", port.Name, port.Product)
		}
		return err
	})
	if err != nil {
		exit(err)
	}
}

func cmdRun(argv []string) {
	label := labelFlag
	if label == "" {
		label = argv[0]
	}

	e := setup()
	f := e.newFlasher()
	var output string
	err := e.app.RunTask(context.Background(), func(ctx context.Context) error {
		var err error
		output, err = f.ExecuteInDir(ctx, label, argv, dirFlag)
		return err
	})
	if err != nil {
		exit(err)
	}
	printOutput(output)
}

func cmdTool(tool string, extra []string) {
	label := labelFlag
	if label == "" {
		label = tool
	}

	e := setup()
	f := e.newFlasher()
	var output string
	err := e.app.RunTask(context.Background(), func(ctx context.Context) error {
		var err error
		if tool == "sahara" {
			output, err = f.Sahara(ctx, label, extra...)
		} else {
			output, err = f.Firehose(ctx, label, extra...)
		}
		return err
	})
	if err != nil {
		exit(err)
	}
	printOutput(output)
}

func printOutput(output string) {
	if jsonFlag {
		printJSON(map[string]string{"output": output})
		return
	}
	fmt.Print(output)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("%v", err)
	}
}

// exit reports err and exits with status 1. Tool failures print the tool's
// own diagnostic text.
func exit(err error) {
	if jsonFlag {
		printJSON(errors.FromError(err).ToResponse())
		os.Exit(1)
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.Message != "" {
		fatal("%s", appErr.Message)
	}
	fatal("%v", err)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
