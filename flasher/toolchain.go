package flasher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/serialport"
)

// Tool names, without platform suffix.
const (
	SaharaServerName = "QSaharaServer"
	FhLoaderName     = "fh_loader"
)

// PortFinder locates the device port.
type PortFinder interface {
	Discover() (serialport.Port, error)
}

// Toolchain is the resolved pair of vendor tools plus the port they talk to.
type Toolchain struct {
	SaharaServerPath string `json:"sahara_server_path"`
	FhLoaderPath     string `json:"fh_loader_path"`
	PortName         string `json:"port_name"`
	PortProduct      string `json:"port_product"`
	SaharaPortArg    string `json:"sahara_port_arg"`
	FhLoaderPortArg  string `json:"fh_loader_port_arg"`
	WorkDir          string `json:"work_dir"`
	Connected        bool   `json:"connected"`
}

// Resolve builds the toolchain for the attached device. When no device is
// found the returned toolchain has Connected false along with the
// discovery error; tool paths are resolved either way.
func Resolve(cfg Config, finder PortFinder) (*Toolchain, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, errors.Internal(err)
	}
	tc := resolve(runtime.GOOS, exeDir, cfg)

	port, err := finder.Discover()
	if err != nil {
		tc.detach()
		return tc, err
	}
	tc.attach(runtime.GOOS, port)
	return tc, nil
}

func resolve(goos, exeDir string, cfg Config) *Toolchain {
	toolsDir := cfg.ToolsDir
	if toolsDir == "" {
		toolsDir = filepath.Join(exeDir, "tools")
	}
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = exeDir
	}
	return &Toolchain{
		SaharaServerPath: toolPath(goos, toolsDir, SaharaServerName),
		FhLoaderPath:     toolPath(goos, toolsDir, FhLoaderName),
		WorkDir:          workDir,
	}
}

func (tc *Toolchain) attach(goos string, port serialport.Port) {
	tc.PortName = port.Name
	tc.PortProduct = port.Product
	tc.SaharaPortArg, tc.FhLoaderPortArg = portArgs(goos, port.Name)
	tc.Connected = true
}

func (tc *Toolchain) detach() {
	tc.PortName, tc.PortProduct = serialport.NotFound, serialport.NoProduct
	tc.SaharaPortArg, tc.FhLoaderPortArg = "", ""
	tc.Connected = false
}

// Port returns the attached port, or the "Not found" placeholder.
func (tc *Toolchain) Port() serialport.Port {
	if !tc.Connected {
		return serialport.Port{Name: serialport.NotFound, Product: serialport.NoProduct}
	}
	return serialport.Port{Name: tc.PortName, Product: tc.PortProduct}
}

// portArgs returns the port arguments of QSaharaServer and fh_loader.
// Windows tools address COM ports through the device namespace.
func portArgs(goos, portName string) (sahara, fhLoader string) {
	if goos == "windows" {
		device := `\\.\` + portName
		return device, "--port=" + device
	}
	return portName, "--port=" + portName
}

func toolPath(goos, dir, name string) string {
	if goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// SaharaArgs returns the QSaharaServer command line for the attached port.
func (tc *Toolchain) SaharaArgs(extra ...string) []string {
	return append([]string{tc.SaharaServerPath, "-p", tc.SaharaPortArg}, extra...)
}

// FirehoseArgs returns the fh_loader command line for the attached port.
func (tc *Toolchain) FirehoseArgs(extra ...string) []string {
	return append([]string{tc.FhLoaderPath, tc.FhLoaderPortArg}, extra...)
}

// CheckHealth reports whether both tools exist.
func (tc *Toolchain) CheckHealth(_ context.Context) observability.Health {
	h := observability.Health{
		Name:    "tools",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{},
	}
	for name, path := range map[string]string{SaharaServerName: tc.SaharaServerPath, FhLoaderName: tc.FhLoaderPath} {
		if _, err := os.Stat(path); err != nil {
			h.Status = observability.HealthStatusDown
			h.Details[name] = "missing: " + path
			continue
		}
		h.Details[name] = path
	}
	if h.Status == observability.HealthStatusDown {
		h.Message = "vendor tools not installed"
	}
	return h
}
