package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"railbook/internal/infrastructure/postgres"
)

// Reports answers the operator report filters of the dashboard. Filters are
// encoded as "name+argument", e.g. "waitlisted_loyalty+<train_id>" or
// "average_load_factor+2026-09-01". Read-only.
type Reports struct {
	reports *postgres.ReportRepository
}

func NewReports(reports *postgres.ReportRepository) *Reports {
	return &Reports{reports: reports}
}

func (uc *Reports) Execute(ctx context.Context, filter string) (any, error) {
	name, arg, _ := strings.Cut(filter, "+")

	switch name {
	case "waitlisted_loyalty":
		return uc.reports.WaitlistedByLoyalty(ctx, arg)
	case "average_load_factor":
		date, err := time.Parse("2006-01-02", arg)
		if err != nil {
			return nil, fmt.Errorf("invalid report date %q: %w", arg, err)
		}
		return uc.reports.AverageLoadFactor(ctx, date)
	default:
		return nil, fmt.Errorf("unknown report filter %q", name)
	}
}
