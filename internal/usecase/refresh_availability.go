package usecase

import (
	"context"
	"fmt"
)

// RefreshAvailability is the capacity aggregator: it recomputes the derived
// per-class available-seat counters from the seat ledger. Idempotent and
// side-effect-free on seats and tickets.
type RefreshAvailability struct {
	trains TrainStore
}

func NewRefreshAvailability(trains TrainStore) *RefreshAvailability {
	return &RefreshAvailability{trains: trains}
}

// Execute refreshes one train, or every train when trainID is empty.
func (uc *RefreshAvailability) Execute(ctx context.Context, trainID string) error {
	if trainID == "" {
		if err := uc.trains.RefreshAllAvailability(ctx); err != nil {
			return fmt.Errorf("refresh availability: %w", err)
		}
		return nil
	}
	return uc.trains.RefreshAvailability(ctx, trainID)
}
