package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/reservation"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `
	reservation_id,
	COALESCE(passenger_id::text, ''),
	COALESCE(dependent_id::text, ''),
	train_id, status, reservation_date
`

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	const sql = `
		INSERT INTO reservations (reservation_id, passenger_id, dependent_id, train_id, status, reservation_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := pick(ctx, r.pool).Exec(ctx, sql,
		res.ID, nullIfEmpty(res.PassengerID), nullIfEmpty(res.DependentID),
		res.TrainID, res.Status, res.ReservationDate)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var res reservation.Reservation
	err := pick(ctx, r.pool).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE reservation_id = $1`, id).Scan(
		&res.ID, &res.PassengerID, &res.DependentID, &res.TrainID, &res.Status, &res.ReservationDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reservation %s: %w", id, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}
	return &res, nil
}

// UpdateStatus transitions a reservation, guarded by the set of states the
// transition is allowed from. Zero rows affected means the reservation was
// in some other state, surfaced as ErrInvalidState so concurrent transitions
// cannot double-apply.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, to reservation.Status, from []reservation.Status) error {
	const sql = `
		UPDATE reservations
		SET status = $2
		WHERE reservation_id = $1 AND status = ANY($3)
	`

	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	tag, err := pick(ctx, r.pool).Exec(ctx, sql, id, to, states)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s -> %s: %w", id, to, booking.ErrInvalidState)
	}

	return nil
}

func (r *ReservationRepository) List(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY reservation_date DESC`)
}

func (r *ReservationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*reservation.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE passenger_id = $1 ORDER BY reservation_date DESC`,
		passengerID)
}

func (r *ReservationRepository) list(ctx context.Context, sql string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res := &reservation.Reservation{}
		if err := rows.Scan(&res.ID, &res.PassengerID, &res.DependentID, &res.TrainID, &res.Status, &res.ReservationDate); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}

	return out, rows.Err()
}

// DeparturesForPassenger returns the departure times of every train the
// passenger holds a non-cancelled reservation on. The alert evaluator applies
// the time-window logic.
func (r *ReservationRepository) DeparturesForPassenger(ctx context.Context, passengerID string) ([]time.Time, error) {
	const sql = `
		SELECT t.departure_time
		FROM reservations r
		JOIN trains t ON r.train_id = t.train_id
		WHERE r.passenger_id = $1 AND r.status <> 'Cancelled'
	`

	rows, err := pick(ctx, r.pool).Query(ctx, sql, passengerID)
	if err != nil {
		return nil, fmt.Errorf("query departures: %w", err)
	}
	defer rows.Close()

	var departures []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan departure: %w", err)
		}
		departures = append(departures, d)
	}

	return departures, rows.Err()
}

func (r *ReservationRepository) HasWaitlisted(ctx context.Context, passengerID string) (bool, error) {
	const sql = `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE passenger_id = $1 AND status = 'Waitlisted'
		)
	`

	var exists bool
	if err := pick(ctx, r.pool).QueryRow(ctx, sql, passengerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("query waitlisted: %w", err)
	}
	return exists, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
