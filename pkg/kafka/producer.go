package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

var compressions = map[string]kafka.Compression{
	"none":   0,
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes keyed messages. Structured values are JSON-encoded and
// tagged with a content-type header.
type Producer struct {
	writer  messageWriter
	source  string
	metrics *producerMetrics
	now     func() time.Time
}

func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	bal := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  compressions[cfg.Compression],
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	return newProducer(writer, cfg), nil
}

func newProducer(w messageWriter, cfg *ProducerConfig) *Producer {
	return &Producer{
		writer:  w,
		source:  cfg.Source,
		metrics: newProducerMetrics(cfg.Registry),
		now:     time.Now,
	}
}

// Publish sends one message. value is sent as is when it is []byte or
// string and JSON-encoded otherwise.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishMessage sends an unkeyed message. It lets the producer serve as
// the log collector's sink.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

// PublishBatch sends messages to topic in one write.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := p.now()
	msgs := make([]kafka.Message, 0, len(messages))
	var total int64
	for _, m := range messages {
		v, contentType, err := encodeValue(m.Value)
		if err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		msgs = append(msgs, kafka.Message{
			Topic:   topic,
			Key:     m.Key,
			Value:   v,
			Time:    start,
			Headers: p.headers(contentType),
		})
		total += int64(len(v))
	}

	err := p.writer.WriteMessages(ctx, msgs...)
	p.metrics.observe(topic, total, len(msgs), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) headers(contentType string) []kafka.Header {
	h := []kafka.Header{{Key: "content-type", Value: []byte(contentType)}}
	if p.source != "" {
		h = append(h, kafka.Header{Key: "source", Value: []byte(p.source)})
	}
	return h
}

func encodeValue(value interface{}) ([]byte, string, error) {
	switch val := value.(type) {
	case []byte:
		return val, "application/octet-stream", nil
	case string:
		return []byte(val), "text/plain", nil
	default:
		v, err := json.Marshal(value)
		if err != nil {
			return nil, "", fmt.Errorf("marshal value: %w", err)
		}
		return v, "application/json", nil
	}
}

// Close flushes pending async writes and closes the writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// Message is one keyed payload of a batch.
type Message struct {
	Key   []byte
	Value interface{}
}
