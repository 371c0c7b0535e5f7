package worker

import (
	"context"
	"log/slog"
	"time"

	"railbook/internal/usecase"
)

// CapacityRefresher periodically recomputes every train's derived
// availability counters. Bookings and cancellations refresh their own train
// inside the transaction; this loop is the backstop that keeps counters
// eventually consistent if a refresh was ever missed.
type CapacityRefresher struct {
	refreshUC *usecase.RefreshAvailability
	interval  time.Duration
}

func NewCapacityRefresher(refreshUC *usecase.RefreshAvailability, interval time.Duration) *CapacityRefresher {
	return &CapacityRefresher{refreshUC: refreshUC, interval: interval}
}

func (w *CapacityRefresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("capacity refresher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.refreshUC.Execute(ctx, ""); err != nil {
				slog.Error("capacity refresh failed", "error", err)
			}
		}
	}
}
