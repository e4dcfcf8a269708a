package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	pkghttp "ParamSweep/pkg/http"
	pkgkafka "ParamSweep/pkg/kafka"
	"ParamSweep/pkg/logger"
)

// KafkaSweepHandler runs sweeps requested over Kafka.
type KafkaSweepHandler struct {
	topic   string
	sweeps  *SweepService
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewKafkaSweepHandler(topic string, sweeps *SweepService, metrics domrepo.Metrics, log *logger.Logger) *KafkaSweepHandler {
	return &KafkaSweepHandler{topic: topic, sweeps: sweeps, metrics: metrics, log: log.With("kafka_sweeps")}
}

func (h *KafkaSweepHandler) Topic() string { return h.topic }

// Handle decodes a SweepRequest and runs it to completion. Malformed
// requests fail permanently so the consumer dead-letters them at once.
func (h *KafkaSweepHandler) Handle(ctx context.Context, b []byte) error {
	var req models.SweepRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode sweep request: %w", err))
	}
	if err := pkghttp.ValidateStruct(ctx, &req); err != nil {
		h.metrics.RecordError("consumer_validate")
		return pkgkafka.Permanent(fmt.Errorf("invalid sweep request: %w", err))
	}

	sw, err := h.sweeps.Run(ctx, req, nil)
	if err != nil {
		h.metrics.RecordError("consumer_sweep")
		if errors.Is(err, domrepo.ErrUnknownStrategy) || errors.Is(err, domrepo.ErrInvalidParams) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	h.log.Info("kafka sweep finished",
		logger.String("id", sw.ID),
		logger.String("strategy", sw.Strategy.String()),
		logger.String("status", string(sw.Status)),
		logger.Int("best", len(sw.Best)),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSweepHandler)(nil)
