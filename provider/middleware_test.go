package provider_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/provider"
	"github.com/kbukum/edlflash/resilience"
)

func echo(name string) provider.RequestResponse[string, string] {
	return provider.Func(name, func(_ context.Context, in string) (string, error) {
		return "echo:" + in, nil
	})
}

func failing(name string) provider.RequestResponse[string, string] {
	return provider.Func(name, func(_ context.Context, _ string) (string, error) {
		return "partial", errors.ProcessFailed("Sahara fail")
	})
}

func TestFunc(t *testing.T) {
	p := echo("step")
	if p.Name() != "step" || !p.IsAvailable(context.Background()) {
		t.Fatalf("unexpected provider identity %q", p.Name())
	}
	out, err := p.Execute(context.Background(), "x")
	if err != nil || out != "echo:x" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestChainEmpty(t *testing.T) {
	wrapped := provider.Chain[string, string]()(echo("test"))
	if wrapped.Name() != "test" {
		t.Fatalf("expected 'test', got %q", wrapped.Name())
	}
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string

	mw := func(tag string) provider.Middleware[string, string] {
		return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
			return provider.Func(inner.Name(), func(ctx context.Context, in string) (string, error) {
				order = append(order, tag+":before")
				out, err := inner.Execute(ctx, in)
				order = append(order, tag+":after")
				return out, err
			})
		}
	}

	if _, err := provider.Chain(mw("A"), mw("B"), mw("C"))(echo("test")).Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	want := []string{"A:before", "B:before", "C:before", "C:after", "B:after", "A:after"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "edlflash", &buf)

	ok := provider.WithLogging[string, string](log)(echo("Send loader"))
	if _, err := ok.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"operation":"Send loader"`) || !strings.Contains(buf.String(), "tool step ok") {
		t.Fatalf("missing success log: %s", buf.String())
	}

	buf.Reset()
	bad := provider.WithLogging[string, string](log)(failing("Read GPT"))
	out, err := bad.Execute(context.Background(), "x")
	if err == nil || out != "partial" {
		t.Fatalf("expected error with partial output, got %q, %v", out, err)
	}
	if !strings.Contains(buf.String(), "tool step failed") || !strings.Contains(buf.String(), "Sahara fail") {
		t.Fatalf("missing failure log: %s", buf.String())
	}
	if !bad.IsAvailable(context.Background()) {
		t.Fatal("expected IsAvailable to delegate")
	}
}

func TestWithMetrics(t *testing.T) {
	metrics, err := observability.NewMetrics(observability.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	wrapped := provider.WithMetrics[string, string](metrics)(echo("metrics-test"))
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("got %q, %v", result, err)
	}
	if wrapped.Name() != "metrics-test" {
		t.Fatalf("expected name 'metrics-test', got %q", wrapped.Name())
	}

	if _, err := provider.WithMetrics[string, string](metrics)(failing("f")).Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWithMetricsNilIsPassthrough(t *testing.T) {
	p := echo("plain")
	if provider.WithMetrics[string, string](nil)(p) != p {
		t.Fatal("nil metrics should not wrap the provider")
	}
}

func TestWithTracing(t *testing.T) {
	wrapped := provider.WithTracing[string, string]("edlflash")(echo("trace-test"))
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("got %q, %v", result, err)
	}
	if _, err := provider.WithTracing[string, string]("edlflash")(failing("f")).Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWithBulkheadSerializes(t *testing.T) {
	lock := resilience.NewBulkhead(resilience.DeviceLockConfig("device", 0))
	started := make(chan struct{})
	release := make(chan struct{})

	slow := provider.Func("slow", func(_ context.Context, in string) (string, error) {
		close(started)
		<-release
		return in, nil
	})
	wrappedSlow := provider.WithBulkhead[string, string](lock)(slow)
	wrappedFast := provider.WithBulkhead[string, string](lock)(echo("fast"))

	done := make(chan error, 1)
	go func() {
		_, err := wrappedSlow.Execute(context.Background(), "x")
		done <- err
	}()
	<-started

	_, err := wrappedFast.Execute(context.Background(), "y")
	if !errors.HasCode(err, errors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE while device is busy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow call failed: %v", err)
	}
	if out, err := wrappedFast.Execute(context.Background(), "y"); err != nil || out != "echo:y" {
		t.Fatalf("expected slot to be free again, got %q, %v", out, err)
	}
}

func TestWithBulkheadContextEndsWait(t *testing.T) {
	lock := resilience.NewBulkhead(resilience.DeviceLockConfig("device", resilience.WaitForever))
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = lock.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := provider.WithBulkhead[string, string](lock)(echo("fast")).Execute(ctx, "y")
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestWithBulkheadPassesToolErrorsThrough(t *testing.T) {
	lock := resilience.NewBulkhead(resilience.DeviceLockConfig("device", 0))
	out, err := provider.WithBulkhead[string, string](lock)(failing("f")).Execute(context.Background(), "x")
	if !errors.HasCode(err, errors.ErrCodeProcessFailed) || out != "partial" {
		t.Fatalf("expected the tool's own error and output, got %q, %v", out, err)
	}
}

func TestStep(t *testing.T) {
	metrics, err := observability.NewMetrics(observability.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	lock := resilience.NewBulkhead(resilience.DeviceLockConfig("device", 0))

	step := provider.Step(echo("Send loader"), "edlflash", metrics, logger.Nop(), lock)
	if step.Name() != "Send loader" {
		t.Errorf("Name() = %q", step.Name())
	}
	result, err := step.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, %v", result, err)
	}
	if lock.InUse() != 0 {
		t.Errorf("device lock still held: %d", lock.InUse())
	}
}
