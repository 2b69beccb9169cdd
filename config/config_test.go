package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/process"
)

type mockFS struct {
	files  map[string]bool
	exeDir string
}

func (m *mockFS) Exists(path string) bool        { return m.files[path] }
func (m *mockFS) LoadEnv(string) error           { return nil }
func (m *mockFS) ExecutableDir() (string, error) { return m.exeDir, nil }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := ServiceConfig{}
		cfg.ApplyDefaults()
		if cfg.Name != DefaultServiceName {
			t.Errorf("Name = %q", cfg.Name)
		}
		if cfg.Environment != "production" {
			t.Errorf("Environment = %q", cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("Logging.Level = %q", cfg.Logging.Level)
		}
		if cfg.Logging.ServiceName != DefaultServiceName {
			t.Errorf("Logging.ServiceName = %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
		}
	})

	t.Run("development does not imply debug", func(t *testing.T) {
		cfg := ServiceConfig{Environment: "development"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("Debug should stay off")
		}
	})
}

func TestAppConfigDefaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.ApplyDefaults()

	if cfg.Flasher.Encoding != "auto" {
		t.Errorf("Flasher.Encoding = %q", cfg.Flasher.Encoding)
	}
	if cfg.Flasher.GracePeriod != process.DefaultGracePeriod {
		t.Errorf("Flasher.GracePeriod = %v", cfg.Flasher.GracePeriod)
	}
	if cfg.Server.Addr != "127.0.0.1:8765" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Telemetry.Endpoint != "" {
		t.Errorf("disabled telemetry should keep an empty endpoint, got %q", cfg.Telemetry.Endpoint)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
		want   string
	}{
		{"bad environment", func(c *AppConfig) { c.Environment = "qa" }, "environment"},
		{"bad encoding", func(c *AppConfig) { c.Flasher.Encoding = "latin1" }, "flasher.encoding"},
		{"negative timeout", func(c *AppConfig) { c.Flasher.Timeout = -time.Second }, "flasher.timeout"},
		{"bad addr", func(c *AppConfig) { c.Server.Addr = "localhost" }, "server.addr"},
		{"bad sample rate", func(c *AppConfig) { c.Telemetry.SampleRate = 2 }, "telemetry.sample_rate"},
		{"telemetry without endpoint", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "telemetry.endpoint"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := AppConfig{}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
name: edlflash
debug: true
flasher:
  tools_dir: /opt/qualcomm/tools
  encoding: gbk
  grace_period: 2s
  device_wait: -1s
server:
  addr: 127.0.0.1:9000
`)

	cfg, err := Load(WithConfigFile(path), WithFileSystem(&RealFileSystem{}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Debug || cfg.Logging.Level != "debug" {
		t.Errorf("debug = %v, level = %q", cfg.Debug, cfg.Logging.Level)
	}
	if cfg.Flasher.ToolsDir != "/opt/qualcomm/tools" {
		t.Errorf("ToolsDir = %q", cfg.Flasher.ToolsDir)
	}
	if cfg.Flasher.Encoding != "gbk" {
		t.Errorf("Encoding = %q", cfg.Flasher.Encoding)
	}
	if cfg.Flasher.GracePeriod != 2*time.Second {
		t.Errorf("GracePeriod = %v", cfg.Flasher.GracePeriod)
	}
	if cfg.Flasher.DeviceWait != -time.Second {
		t.Errorf("DeviceWait = %v", cfg.Flasher.DeviceWait)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "flasher:\n  encoding: gbk\n")
	t.Setenv("EDLFLASH_FLASHER_ENCODING", "utf8")
	t.Setenv("EDLFLASH_FLASHER_TOOLS_DIR", "/env/tools")
	t.Setenv("EDLFLASH_SERVER_ADDR", "127.0.0.1:9100")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Flasher.Encoding != "utf8" {
		t.Errorf("Encoding = %q, want env override", cfg.Flasher.Encoding)
	}
	if cfg.Flasher.ToolsDir != "/env/tools" {
		t.Errorf("ToolsDir = %q", cfg.Flasher.ToolsDir)
	}
	if cfg.Server.Addr != "127.0.0.1:9100" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(WithConfigFile("/nonexistent/config.yml"))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
	if cfg.Flasher.Encoding != "auto" {
		t.Errorf("Encoding = %q", cfg.Flasher.Encoding)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	path := writeConfig(t, "flasher:\n  encoding: latin1\n")
	if _, err := Load(WithConfigFile(path)); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "flasher: [unclosed\n")
	if _, err := Load(WithConfigFile(path)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]bool
		want  string
	}{
		{"working directory first", map[string]bool{"config.yml": true, "/opt/edl/config.yml": true}, "config.yml"},
		{"service named file", map[string]bool{"edlflash.yml": true}, "edlflash.yml"},
		{"next to executable", map[string]bool{"/opt/edl/config.yml": true}, "/opt/edl/config.yml"},
		{"nothing found", map[string]bool{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &Resolver{FileSystem: &mockFS{files: tc.files, exeDir: "/opt/edl"}}
			files := resolver.ResolveFiles("edlflash", LoaderConfig{})
			if files.ConfigFile != tc.want {
				t.Errorf("ConfigFile = %q, want %q", files.ConfigFile, tc.want)
			}
		})
	}
}

func TestResolverEnvFile(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"/opt/edl/.env": true}, exeDir: "/opt/edl"}}
	if got := resolver.ResolveFiles("edlflash", LoaderConfig{}).EnvFile; got != "/opt/edl/.env" {
		t.Errorf("EnvFile = %q", got)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"config.yml": true}}}
	files := resolver.ResolveFiles("edlflash", LoaderConfig{ConfigFile: "/etc/edl.yml", EnvFile: "/etc/edl.env"})
	if files.ConfigFile != "/etc/edl.yml" || files.EnvFile != "/etc/edl.env" {
		t.Errorf("explicit paths not kept: %+v", files)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("FLASHER_TOOLS_DIR")
	for _, want := range []string{"flasher_tools_dir", "flasher.tools.dir", "flasher.tools_dir"} {
		if !slices.Contains(got, want) {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if got := generateEnvKeyVariants("DEBUG"); len(got) != 1 || got[0] != "debug" {
		t.Errorf("single part variants = %v", got)
	}
}

func TestBindEnvVarsIgnoresOtherPrefixes(t *testing.T) {
	v := viper.New()
	bindEnvVars(v, envPrefix("edlflash"), []string{"HOME=/root", "EDLFLASH_DEBUG=true", "malformed"})
	if v.IsSet("home") {
		t.Error("unprefixed variable was bound")
	}
	if !v.GetBool("debug") {
		t.Error("EDLFLASH_DEBUG not bound")
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem != fs || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("options not applied: %+v", lc)
	}
}
