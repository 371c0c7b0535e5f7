package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository serves the read-only reporting queries that join core
// entities with the externally owned passengers table.
type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

type WaitlistedLoyaltyRow struct {
	TrainID              string `json:"train_id"`
	LoyaltyStatus        string `json:"loyalty_status"`
	WaitlistedPassengers int    `json:"waitlisted_passengers"`
}

func (r *ReportRepository) WaitlistedByLoyalty(ctx context.Context, trainID string) ([]WaitlistedLoyaltyRow, error) {
	const sql = `
		SELECT r.train_id, p.loyalty_status, COUNT(r.reservation_id) AS waitlisted_passengers
		FROM reservations r
		JOIN passengers p ON r.passenger_id = p.passenger_id
		WHERE r.status = 'Waitlisted' AND r.train_id = $1
		GROUP BY r.train_id, p.loyalty_status
	`

	rows, err := r.pool.Query(ctx, sql, trainID)
	if err != nil {
		return nil, fmt.Errorf("query waitlisted by loyalty: %w", err)
	}
	defer rows.Close()

	var out []WaitlistedLoyaltyRow
	for rows.Next() {
		var row WaitlistedLoyaltyRow
		if err := rows.Scan(&row.TrainID, &row.LoyaltyStatus, &row.WaitlistedPassengers); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

type LoadFactorRow struct {
	TrainID           string  `json:"train_id"`
	TrainName         string  `json:"train_name"`
	TravelDate        string  `json:"travel_date"`
	LoadFactorPercent float64 `json:"load_factor_percentage"`
}

// AverageLoadFactor reports confirmed reservations against total seats for
// every train departing on the given date. A train with no seats provisioned
// yet reports zero instead of failing the whole report.
func (r *ReportRepository) AverageLoadFactor(ctx context.Context, date time.Time) ([]LoadFactorRow, error) {
	const sql = `
		SELECT
			t.train_id,
			t.train_name,
			to_char(t.departure_time, 'YYYY-MM-DD') AS travel_date,
			COALESCE(ROUND(
				SUM(CASE WHEN r.status = 'Confirmed' THEN 1 ELSE 0 END) * 100.0
				/ NULLIF(t.total_cabin_seats + t.total_firstclass_seats, 0), 2
			), 0) AS load_factor_percentage
		FROM trains t
		LEFT JOIN reservations r ON t.train_id = r.train_id
		WHERE DATE(t.departure_time) = $1
		GROUP BY t.train_id, t.train_name, travel_date
	`

	rows, err := r.pool.Query(ctx, sql, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query load factor: %w", err)
	}
	defer rows.Close()

	var out []LoadFactorRow
	for rows.Next() {
		var row LoadFactorRow
		if err := rows.Scan(&row.TrainID, &row.TrainName, &row.TravelDate, &row.LoadFactorPercent); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
