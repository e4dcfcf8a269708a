package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type countingHandler struct {
	calls   int
	failFor int
	err     error
}

func (h *countingHandler) Topic() string { return "t" }

func (h *countingHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	if h.calls <= h.failFor {
		return h.err
	}
	return nil
}

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestHandleWithRetryRecovers(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &countingHandler{failFor: 2, err: errors.New("transient")}

	attempts, err := c.handleWithRetry(h, nil)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 || h.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d (calls %d)", attempts, h.calls)
	}
}

func TestHandleWithRetryGivesUp(t *testing.T) {
	c := newTestConsumer(t, 2)
	h := &countingHandler{failFor: 10, err: errors.New("down")}

	attempts, err := c.handleWithRetry(h, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 3 {
		t.Fatalf("expected 1 try + 2 retries, got %d", attempts)
	}
}

func TestHandleWithRetrySkipsPermanent(t *testing.T) {
	c := newTestConsumer(t, 5)
	cause := errors.New("bad payload")
	h := &countingHandler{failFor: 10, err: Permanent(cause)}

	attempts, err := c.handleWithRetry(h, nil)
	if attempts != 1 {
		t.Fatalf("permanent errors must not be retried, got %d attempts", attempts)
	}
	if !errors.Is(err, cause) || !IsPermanent(err) {
		t.Fatalf("unexpected error %v", err)
	}
}

type panickingHandler struct{}

func (panickingHandler) Topic() string { return "t" }
func (panickingHandler) Handle(context.Context, []byte) error { panic("boom") }

func TestHandleWithRetryRecoversPanic(t *testing.T) {
	c := newTestConsumer(t, 3)
	_, err := c.handleWithRetry(panickingHandler{}, nil)
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error from panic, got %v", err)
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of (0, %v]", attempt, d, max)
		}
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestProcessRoutesPermanentFailureToDLQ(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerDLQ("sweeps.dlq"),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	dlq := &fakeWriter{}
	c.dlq = dlq

	h := &countingHandler{failFor: 1, err: Permanent(errors.New("bad json"))}
	c.process(h, &message{topic: "sweeps", km: kafka.Message{Key: []byte("k"), Value: []byte("{")}})

	if h.calls != 1 {
		t.Fatalf("handler called %d times", h.calls)
	}
	if len(dlq.msgs) != 1 {
		t.Fatalf("dlq got %d messages", len(dlq.msgs))
	}
	m := dlq.msgs[0]
	if m.Topic != "sweeps.dlq" || string(m.Value) != "{" || header(m, "source_topic") != "sweeps" {
		t.Fatalf("dlq message = %+v", m)
	}
	if n := testutil.ToFloat64(c.metrics.failures.WithLabelValues("sweeps", "permanent")); n != 1 {
		t.Fatalf("permanent failures = %v", n)
	}
}
