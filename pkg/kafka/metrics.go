package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// A nil registerer leaves the collectors unregistered.

type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newProducerMetrics(reg prometheus.Registerer) *producerMetrics {
	f := promauto.With(reg)
	return &producerMetrics{
		messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramsweep_kafka_producer_messages_total",
				Help: "Messages published to Kafka by result",
			},
			[]string{"topic", "result"},
		),
		bytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramsweep_kafka_producer_bytes_total",
				Help: "Payload bytes published",
			},
			[]string{"topic"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paramsweep_kafka_producer_publish_seconds",
				Help:    "Publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
	}
}

func (m *producerMetrics) observe(topic string, bytes int64, count int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, result).Add(float64(count))
	if err == nil {
		m.bytes.WithLabelValues(topic).Add(float64(bytes))
	}
	m.latency.WithLabelValues(topic).Observe(dur.Seconds())
}

type consumerMetrics struct {
	queueDepth *prometheus.GaugeVec
	handle     *prometheus.HistogramVec
	failures   *prometheus.CounterVec
	deadLetter *prometheus.CounterVec
}

func newConsumerMetrics(reg prometheus.Registerer) *consumerMetrics {
	f := promauto.With(reg)
	return &consumerMetrics{
		queueDepth: f.NewGaugeVec(
			prometheus.GaugeOpts{Name: "paramsweep_kafka_consumer_queue_depth", Help: "Messages waiting for a worker"},
			[]string{"topic"},
		),
		handle: f.NewHistogramVec(
			prometheus.HistogramOpts{Name: "paramsweep_kafka_consumer_handle_seconds", Help: "Handling time per message", Buckets: prometheus.ExponentialBuckets(0.01, 4, 10)},
			[]string{"topic"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{Name: "paramsweep_kafka_consumer_failures_total", Help: "Messages whose handling failed after retries"},
			[]string{"topic", "kind"},
		),
		deadLetter: f.NewCounterVec(
			prometheus.CounterOpts{Name: "paramsweep_kafka_consumer_dead_letters_total", Help: "Messages routed to the dead-letter topic"},
			[]string{"topic"},
		),
	}
}
