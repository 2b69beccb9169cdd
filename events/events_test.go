package events

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/edlflash/logger"
)

func TestHelpers(t *testing.T) {
	var rec Recorder
	Log(&rec, "Send loader...OK")
	Progress(&rec)

	got := rec.Events()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Name != NameLog || got[0].Payload != "Send loader...OK" {
		t.Errorf("unexpected log event %+v", got[0])
	}
	if got[1].Name != "update_working_percentage" || got[1].Payload != "0" {
		t.Errorf("unexpected progress event %+v", got[1])
	}
	if got[0].Time.IsZero() {
		t.Error("expected event time to be set")
	}
}

func TestRecorderQueries(t *testing.T) {
	var rec Recorder
	Log(&rec, "a")
	Progress(&rec)
	Progress(&rec)
	Log(&rec, "b")

	if rec.Count(NameProgress) != 2 {
		t.Errorf("progress count = %d, want 2", rec.Count(NameProgress))
	}
	if p := rec.Payloads(NameLog); strings.Join(p, ",") != "a,b" {
		t.Errorf("log payloads = %v", p)
	}
	rec.Reset()
	if len(rec.Events()) != 0 {
		t.Error("expected Reset to clear events")
	}
}

func TestRecorderConcurrent(t *testing.T) {
	var rec Recorder
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Progress(&rec)
			}
		}()
	}
	wg.Wait()
	if rec.Count(NameProgress) != 200 {
		t.Fatalf("count = %d, want 200", rec.Count(NameProgress))
	}
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	m := Multi(&a, nil, &b)
	Log(m, "hello")
	if a.Count(NameLog) != 1 || b.Count(NameLog) != 1 {
		t.Fatalf("fan-out failed: %d/%d", a.Count(NameLog), b.Count(NameLog))
	}
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "edlflash", &buf)
	e := NewLogEmitter(log)

	Progress(e)
	if buf.Len() != 0 {
		t.Fatalf("progress should log at debug only, got %q", buf.String())
	}
	Log(e, "Read GPT...Error")
	if !strings.Contains(buf.String(), "Read GPT...Error") {
		t.Fatalf("log event missing: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	Log(Nop, "ignored")
	Progress(Nop)
}
