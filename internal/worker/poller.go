package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domainEvent "railbook/internal/domain/event"
	"railbook/internal/infrastructure/kafka"
	"railbook/internal/infrastructure/postgres"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railbook_outbox_events_published_total",
		Help: "The total number of booking events published to Kafka",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railbook_outbox_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
)

// OutboxPoller drains the outbox and publishes booking events to Kafka.
// Events that fail to publish are returned to the 'new' state and retried on
// a later batch.
type OutboxPoller struct {
	outboxRepo *postgres.OutboxRepository
	kafkaProd  *kafka.Producer
	interval   time.Duration
	batchSize  int
}

func NewOutboxPoller(outboxRepo *postgres.OutboxRepository, kafkaProd *kafka.Producer, interval time.Duration, batchSize int) *OutboxPoller {
	return &OutboxPoller{
		outboxRepo: outboxRepo,
		kafkaProd:  kafkaProd,
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("outbox poller started", "topic", p.kafkaProd.GetTopic(), "batch_size", p.batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				slog.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

func (p *OutboxPoller) processBatch(ctx context.Context) error {
	events, err := p.outboxRepo.FetchBatch(ctx, p.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	var processedIDs []string
	var failedIDs []string

	for _, e := range events {
		key := []byte(e.CorrelationID)
		if len(key) == 0 {
			key = []byte(e.ID)
		}

		msg := domainEvent.Message{
			ID:            e.ID,
			Type:          e.EventType,
			CorrelationID: e.CorrelationID,
			Producer:      e.Producer,
			OccurredAt:    time.Now().UTC(),
			Payload:       e.Payload,
		}

		value, err := json.Marshal(msg)
		if err != nil {
			slog.Error("failed to marshal event", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = p.kafkaProd.SendMessage(sendCtx, key, value)
		cancel()

		if err != nil {
			slog.Error("failed to publish event", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		eventsPublished.Inc()
		processedIDs = append(processedIDs, e.ID)
	}

	if len(processedIDs) > 0 {
		if err := p.outboxRepo.MarkProcessed(ctx, processedIDs); err != nil {
			return err
		}
		slog.Info("published booking events", "count", len(processedIDs))
	}

	if len(failedIDs) > 0 {
		if err := p.outboxRepo.MarkFailed(ctx, failedIDs); err != nil {
			slog.Error("failed to mark events as failed", "error", err)
		}
	}

	return nil
}
