package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
	err     error
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return p.err
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel).With("optimizer")

	l.Debug("hidden")
	l.Info("sweep done",
		String("strategy", "rsi-1h"),
		Int("coins", 3),
		Float64("profit", 12.5),
		Duration("took", 1500*time.Millisecond),
		Strings("skipped", []string{"DOGE"}),
		Error(errors.New("partial")),
	)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["component"] != "optimizer" || got["strategy"] != "rsi-1h" || got["error"] != "partial" {
		t.Fatalf("fields = %v", got)
	}
	if got["took"].(float64) != 1500 {
		t.Fatalf("took = %v, want 1500", got["took"])
	}
}

func TestCollectorReachesExistingChildren(t *testing.T) {
	pub := &capturePublisher{}
	root := Nop()
	child := root.With("persist")

	root.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})
	for i := 0; i < 3; i++ {
		child.Error("save failed", String("coin", "BTC"))
	}
	child.Warn("slow upstream")
	child.Info("not collected")
	root.RemoveCollector()

	entries := pub.entries()
	if pub.topic != "logs" || len(entries) != 2 {
		t.Fatalf("topic=%q entries=%+v", pub.topic, entries)
	}
	if entries[0].Message != "save failed" || entries[0].Count != 3 || entries[0].Component != "persist" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[0].Fields["coin"] != "BTC" {
		t.Fatalf("fields = %v", entries[0].Fields)
	}
	if !strings.Contains(entries[0].Caller, "logger_test.go") {
		t.Fatalf("caller = %q", entries[0].Caller)
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})

	c.AddLog("error", "a", "first", nil, "x.go:1")
	if c.Pending() != 1 {
		t.Fatalf("pending = %d", c.Pending())
	}
	c.AddLog("error", "a", "second", nil, "x.go:2")
	if c.Pending() != 0 {
		t.Fatalf("pending after threshold = %d", c.Pending())
	}
	c.Close()

	if n := len(pub.entries()); n != 2 {
		t.Fatalf("published %d entries, want 2", n)
	}
}

func TestCollectorReportsPublishFailure(t *testing.T) {
	var out bytes.Buffer
	pub := &capturePublisher{err: errors.New("broker down")}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub, ErrorOutput: &out})

	c.AddLog("warn", "", "m", nil, "x.go:1")
	c.Close()

	if !strings.Contains(out.String(), "broker down") {
		t.Fatalf("error output = %q", out.String())
	}
}
