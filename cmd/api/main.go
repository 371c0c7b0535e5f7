package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"railbook/internal/api"
	"railbook/internal/application/factories/infrastructure"
	"railbook/internal/config"
	"railbook/internal/infrastructure/postgres"
	redisInfra "railbook/internal/infrastructure/redis"
	"railbook/internal/usecase"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	threshold, err := decimal.NewFromString(cfg.Booking.FirstClassThreshold)
	if err != nil {
		logger.Error("invalid firstclass threshold", "value", cfg.Booking.FirstClassThreshold, "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := redisInfra.NewClient(ctx, redisInfra.Config{
		Addr: cfg.Redis.Addr,
	})
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Repositories
	trainRepo := postgres.NewTrainRepository(pgPool)
	seatRepo := postgres.NewSeatRepository(pgPool)
	reservationRepo := postgres.NewReservationRepository(pgPool)
	ticketRepo := postgres.NewTicketRepository(pgPool)
	paymentRepo := postgres.NewPaymentRepository(pgPool)
	outboxRepo := postgres.NewOutboxRepository(pgPool)
	reportRepo := postgres.NewReportRepository(pgPool)
	txManager := postgres.NewTxManager(pgPool)

	// UseCases
	bookSeatUC := usecase.NewBookSeat(txManager, seatRepo, trainRepo, reservationRepo, ticketRepo, paymentRepo, outboxRepo, threshold, cfg.Booking.ClaimRetries)
	updateResUC := usecase.NewUpdateReservation(txManager, seatRepo, trainRepo, reservationRepo, ticketRepo, outboxRepo, cfg.Booking.ClaimRetries)
	provisionUC := usecase.NewProvisionSeats(txManager, seatRepo, trainRepo)
	refreshUC := usecase.NewRefreshAvailability(trainRepo)
	getTrainUC := usecase.NewGetTrain(redisClient, trainRepo, seatRepo)
	listTrainsUC := usecase.NewListTrains(trainRepo)
	listResUC := usecase.NewListReservations(reservationRepo)
	getAlertsUC := usecase.NewGetAlerts(reservationRepo)
	reportsUC := usecase.NewReports(reportRepo)

	handlers := api.NewHandlers(bookSeatUC, updateResUC, provisionUC, refreshUC, getTrainUC, listTrainsUC, listResUC, getAlertsUC, reportsUC)
	apiHandler := api.NewRouter(handlers, redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: apiHandler,
	}

	go func() {
		logger.Info("server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
