package usecase

import (
	"context"
	"fmt"

	"railbook/internal/domain/seat"
	"railbook/internal/infrastructure/postgres"
)

// ProvisionSeats bulk-creates the physical seat inventory for a train. The
// inserts and the counter refresh commit together; a failed insert aborts the
// whole batch instead of leaving a silently short ledger.
type ProvisionSeats struct {
	txManager postgres.Transactor
	seats     SeatLedger
	trains    TrainStore
}

func NewProvisionSeats(txManager postgres.Transactor, seats SeatLedger, trains TrainStore) *ProvisionSeats {
	return &ProvisionSeats{txManager: txManager, seats: seats, trains: trains}
}

type ProvisionSeatsParams struct {
	TrainID string     `json:"train_id"`
	Class   seat.Class `json:"seat_class"`
	Count   int        `json:"count"`
}

func (uc *ProvisionSeats) Execute(ctx context.Context, params ProvisionSeatsParams) error {
	if !params.Class.Valid() {
		return fmt.Errorf("invalid seat class %q", params.Class)
	}
	if params.Count <= 0 {
		return fmt.Errorf("invalid seat count %d", params.Count)
	}

	// Validates the train exists before touching the ledger.
	if _, err := uc.trains.GetByID(ctx, params.TrainID); err != nil {
		return err
	}

	err := withTxRetry(ctx, func() error {
		return uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := uc.seats.Provision(txCtx, params.TrainID, params.Class, params.Count); err != nil {
				return err
			}
			return uc.trains.RefreshAvailability(txCtx, params.TrainID)
		})
	})
	if err != nil {
		return fmt.Errorf("provision seats: %w", err)
	}

	return nil
}
