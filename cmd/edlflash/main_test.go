package main

import (
	"context"
	"testing"

	"github.com/kbukum/edlflash/config"
	"github.com/kbukum/edlflash/version"
)

func TestApplyFlags(t *testing.T) {
	defer func() {
		debugFlag, encodingFlag, toolsDirFlag, workDirFlag, addrFlag = false, "", "", "", ""
	}()
	debugFlag = true
	encodingFlag = "gbk"
	toolsDirFlag = "/opt/edl/tools"
	workDirFlag = "/tmp/images"
	addrFlag = "127.0.0.1:9000"

	cfg := &config.AppConfig{}
	applyFlags(cfg)
	cfg.ApplyDefaults()

	if !cfg.Debug || cfg.Logging.Level != "debug" {
		t.Errorf("debug = %v, level = %q", cfg.Debug, cfg.Logging.Level)
	}
	if cfg.Flasher.Encoding != "gbk" || cfg.Flasher.ToolsDir != "/opt/edl/tools" || cfg.Flasher.WorkDir != "/tmp/images" {
		t.Errorf("flasher = %+v", cfg.Flasher)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Version != version.Short() {
		t.Errorf("version = %q, want %q", cfg.Version, version.Short())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestApplyFlagsKeepsConfig(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Flasher.Encoding = "utf8"
	cfg.Version = "1.2.3"
	applyFlags(cfg)

	if cfg.Flasher.Encoding != "utf8" {
		t.Errorf("encoding = %q, want config value", cfg.Flasher.Encoding)
	}
	if cfg.Version != "1.2.3" {
		t.Errorf("version = %q, want config value", cfg.Version)
	}
}

func TestTelemetryComponent(t *testing.T) {
	called := false
	c := telemetryComponent(func(context.Context) error {
		called = true
		return nil
	})
	if c.Name() != "telemetry" {
		t.Errorf("Name() = %q", c.Name())
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("shutdown not called on Stop")
	}
}
