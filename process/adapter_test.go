package process_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/edlflash/decode"
	"github.com/kbukum/edlflash/process"
	"github.com/kbukum/edlflash/provider"
)

func TestAdapterDefaults(t *testing.T) {
	a := process.NewAdapter(process.Config{})
	if a.Name() != "process" {
		t.Fatalf("expected default name 'process', got %q", a.Name())
	}
	if !a.IsAvailable(context.Background()) {
		t.Fatal("adapter without a binary should be available")
	}
}

func TestAdapterIsAvailable(t *testing.T) {
	if !process.NewAdapter(process.Config{Binary: "sh"}).IsAvailable(context.Background()) {
		t.Fatal("expected sh to be available")
	}
	if process.NewAdapter(process.Config{Binary: "/nonexistent/fh_loader"}).IsAvailable(context.Background()) {
		t.Fatal("expected missing binary to be unavailable")
	}
}

func TestAdapterAppliesConfig(t *testing.T) {
	dir := t.TempDir()
	a := process.NewAdapter(process.Config{
		Name:    "sahara",
		Dir:     dir,
		Decoder: decode.Func(func(b []byte) string { return "<" + strings.TrimSpace(string(b)) + ">" }),
	})

	var rr provider.RequestResponse[process.Command, *process.Result] = a
	result, err := rr.Execute(context.Background(), process.Command{Argv: []string{"sh", "-c", "basename $(pwd)"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<" + filepath.Base(dir) + ">\n"
	if result.Stdout != want {
		t.Fatalf("expected %q, got %q", want, result.Stdout)
	}
}

func TestAdapterTimeout(t *testing.T) {
	a := process.NewAdapter(process.Config{
		Timeout:     100 * time.Millisecond,
		GracePeriod: 500 * time.Millisecond,
	})

	start := time.Now()
	_, err := a.Run(context.Background(), process.Command{Argv: []string{"sleep", "10"}})
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout not enforced")
	}
}
