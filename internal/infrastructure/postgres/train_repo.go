package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/train"
)

type TrainRepository struct {
	pool *pgxpool.Pool
}

func NewTrainRepository(pool *pgxpool.Pool) *TrainRepository {
	return &TrainRepository{pool: pool}
}

const trainColumns = `
	train_id, train_name, departure_time, arrival_time,
	total_cabin_seats, total_firstclass_seats,
	available_cabin_seats, available_firstclass_seats
`

// refreshSQL recomputes both derived per-class counters from the seat ledger.
// It runs unconditionally: a train with zero booked seats of a class must
// still end up with available == total.
const refreshSQL = `
	UPDATE trains t
	SET available_cabin_seats = t.total_cabin_seats - (
		SELECT COUNT(*) FROM seats s
		WHERE s.train_id = t.train_id AND s.seat_status = 'Booked' AND s.seat_class = 'Cabin'
	),
	available_firstclass_seats = t.total_firstclass_seats - (
		SELECT COUNT(*) FROM seats s
		WHERE s.train_id = t.train_id AND s.seat_status = 'Booked' AND s.seat_class = 'First Class'
	)
`

func (r *TrainRepository) RefreshAvailability(ctx context.Context, trainID string) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, refreshSQL+` WHERE t.train_id = $1`, trainID)
	if err != nil {
		return fmt.Errorf("refresh availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refresh availability: train %s: %w", trainID, booking.ErrNotFound)
	}
	return nil
}

func (r *TrainRepository) RefreshAllAvailability(ctx context.Context) error {
	if _, err := pick(ctx, r.pool).Exec(ctx, refreshSQL); err != nil {
		return fmt.Errorf("refresh all availability: %w", err)
	}
	return nil
}

func (r *TrainRepository) GetByID(ctx context.Context, id string) (*train.Train, error) {
	var t train.Train
	err := pick(ctx, r.pool).QueryRow(ctx, `SELECT `+trainColumns+` FROM trains WHERE train_id = $1`, id).Scan(
		&t.ID, &t.Name, &t.DepartureTime, &t.ArrivalTime,
		&t.TotalCabinSeats, &t.TotalFirstClassSeats,
		&t.AvailableCabinSeats, &t.AvailableFirstClassSeats,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("train %s: %w", id, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("get train by id: %w", err)
	}
	return &t, nil
}

func (r *TrainRepository) List(ctx context.Context) ([]*train.Train, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `SELECT `+trainColumns+` FROM trains ORDER BY departure_time`)
	if err != nil {
		return nil, fmt.Errorf("query trains: %w", err)
	}
	defer rows.Close()

	var trains []*train.Train
	for rows.Next() {
		t := &train.Train{}
		if err := rows.Scan(
			&t.ID, &t.Name, &t.DepartureTime, &t.ArrivalTime,
			&t.TotalCabinSeats, &t.TotalFirstClassSeats,
			&t.AvailableCabinSeats, &t.AvailableFirstClassSeats,
		); err != nil {
			return nil, fmt.Errorf("scan train: %w", err)
		}
		trains = append(trains, t)
	}

	return trains, rows.Err()
}
