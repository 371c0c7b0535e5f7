package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railbook/internal/application/factories/infrastructure"
	"railbook/internal/config"
	domainEvent "railbook/internal/domain/event"
	"railbook/internal/domain/reservation"
	"railbook/internal/infrastructure/kafka"
	"railbook/internal/infrastructure/postgres"
)

var (
	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_notifications_total",
		Help: "The total number of traveler notifications emitted",
	}, []string{"type"})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notifier_processing_duration_seconds",
		Help:    "Time taken to process a booking event",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	})
)

// The notifier consumes booking lifecycle events and emits traveler-facing
// notifications. Delivery here is a structured log line standing in for an
// email gateway; the inbox table keeps processing exactly-once per consumer.
func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("notifier metrics listening on :9091")
		http.ListenAndServe(":9091", mux)
	}()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	inboxRepo := postgres.NewInboxRepository(pgPool)

	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "railbook-notifier"
	}
	kafkaConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID)
	defer kafkaConsumer.Close()

	consumerName := "notifier"
	logger.Info("notifier started", "consumer", consumerName, "group_id", groupID)

	for {
		msg, err := kafkaConsumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("failed to fetch message", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		const maxRetries = 5
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(1<<attempt) * time.Second
				logger.Info("retry attempt", "attempt", attempt, "max", maxRetries, "backoff", backoff)
				time.Sleep(backoff)
			}

			processErr := processMessage(ctx, pgPool, inboxRepo, consumerName, msg.Value)
			if processErr == nil {
				break
			}
			logger.Error("failed to process message", "error", processErr)
		}

		if err := kafkaConsumer.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("failed to commit message", "error", err)
		}
	}

	logger.Info("notifier exited")
}

func processMessage(ctx context.Context, pgPool *pgxpool.Pool, inboxRepo *postgres.InboxRepository, consumerName string, value []byte) error {
	started := time.Now()
	defer func() { processingDuration.Observe(time.Since(started).Seconds()) }()

	var ev domainEvent.Message
	if err := json.Unmarshal(value, &ev); err != nil {
		// Not our envelope (or corrupt). Skip and move on.
		slog.Error("failed to unmarshal event envelope", "error", err)
		return nil
	}

	switch ev.Type {
	case domainEvent.TypeBookingCreated, domainEvent.TypeReservationCancelled, domainEvent.TypeReservationConfirmed:
		// handled below
	default:
		return nil
	}

	tx, err := pgPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	isNew, err := inboxRepo.SaveIfNotExists(ctx, tx, consumerName, ev.ID, ev.Type, ev.CorrelationID)
	if err != nil {
		return fmt.Errorf("inbox save: %w", err)
	}

	if isNew {
		notify(ev)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func notify(ev domainEvent.Message) {
	var payload domainEvent.BookingPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		slog.Error("failed to unmarshal booking payload", "event_id", ev.ID, "error", err)
		return
	}

	recipient := payload.PassengerID
	if recipient == "" {
		recipient = payload.DependentID
	}

	switch {
	case ev.Type == domainEvent.TypeBookingCreated && payload.Status == string(reservation.StatusWaitlisted):
		slog.Info("notify traveler: reservation waitlisted, payment outstanding",
			"recipient", recipient, "reservation_id", payload.ReservationID, "train_id", payload.TrainID)
		notificationsSent.WithLabelValues("waitlisted").Inc()
	case ev.Type == domainEvent.TypeBookingCreated:
		slog.Info("notify traveler: booking confirmed",
			"recipient", recipient, "reservation_id", payload.ReservationID, "ticket_id", payload.TicketID)
		notificationsSent.WithLabelValues("confirmed").Inc()
	case ev.Type == domainEvent.TypeReservationConfirmed:
		slog.Info("notify traveler: waitlisted reservation promoted to a seat",
			"recipient", recipient, "reservation_id", payload.ReservationID, "ticket_id", payload.TicketID)
		notificationsSent.WithLabelValues("promoted").Inc()
	case ev.Type == domainEvent.TypeReservationCancelled:
		slog.Info("notify traveler: reservation cancelled",
			"recipient", recipient, "reservation_id", payload.ReservationID)
		notificationsSent.WithLabelValues("cancelled").Inc()
	}
}
