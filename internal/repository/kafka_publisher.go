package repository

import (
	"context"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
)

// TopicProducer is the subset of pkg/kafka.Producer the publisher needs.
type TopicProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher publishes parameter records and live signals keyed by coin.
type KafkaPublisher struct {
	producer     TopicProducer
	resultsTopic string
	signalsTopic string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer TopicProducer, resultsTopic, signalsTopic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, resultsTopic: resultsTopic, signalsTopic: signalsTopic}
}

func (p *KafkaPublisher) PublishRecord(ctx context.Context, rec *models.ParameterRecord) error {
	return p.producer.Publish(ctx, p.resultsTopic, []byte(rec.Coin), rec)
}

func (p *KafkaPublisher) PublishSignal(ctx context.Context, sig *models.Signal) error {
	return p.producer.Publish(ctx, p.signalsTopic, []byte(sig.Coin), sig)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops everything. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishRecord(context.Context, *models.ParameterRecord) error { return nil }

func (NopPublisher) PublishSignal(context.Context, *models.Signal) error { return nil }

func (NopPublisher) Close() error { return nil }
