package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railbook/internal/application/factories/infrastructure"
	"railbook/internal/config"
	"railbook/internal/infrastructure/kafka"
	"railbook/internal/infrastructure/postgres"
	"railbook/internal/usecase"
	"railbook/internal/worker"
)

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
		logger.Info("worker metrics listening on :9093")
		http.ListenAndServe(":9093", mux)
	}()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	outboxRepo := postgres.NewOutboxRepository(pgPool)
	trainRepo := postgres.NewTrainRepository(pgPool)

	kafkaProd := kafka.NewProducer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer kafkaProd.Close()

	poller := worker.NewOutboxPoller(outboxRepo, kafkaProd,
		time.Duration(cfg.Worker.PollIntervalSeconds)*time.Second, cfg.Worker.BatchSize)
	refresher := worker.NewCapacityRefresher(usecase.NewRefreshAvailability(trainRepo),
		time.Duration(cfg.Worker.RefreshIntervalSeconds)*time.Second)

	go func() {
		if err := refresher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("capacity refresher stopped", "error", err)
		}
	}()

	if err := poller.Run(ctx); err != nil {
		logger.Error("outbox poller stopped with error", "error", err)
	}

	logger.Info("worker exited")
}
