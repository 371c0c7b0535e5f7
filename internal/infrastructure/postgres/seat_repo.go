package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/seat"
)

// SeatRepository is the seat ledger: the authoritative record of per-seat
// occupancy. ClaimFree/MarkBooked must run inside an ambient transaction so
// the claimed row stays locked until commit.
type SeatRepository struct {
	pool *pgxpool.Pool
}

func NewSeatRepository(pool *pgxpool.Pool) *SeatRepository {
	return &SeatRepository{pool: pool}
}

// ClaimFree selects one free seat of the given class and locks its row for
// the current transaction. SKIP LOCKED makes concurrent allocations on the
// same train/class pick distinct rows instead of queueing on the same one.
func (r *SeatRepository) ClaimFree(ctx context.Context, trainID string, class seat.Class) (string, error) {
	const sql = `
		SELECT seat_id
		FROM seats
		WHERE train_id = $1 AND seat_status = 'Free' AND seat_class = $2
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	var seatID string
	err := pick(ctx, r.pool).QueryRow(ctx, sql, trainID, class).Scan(&seatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", booking.ErrNoAvailability
		}
		return "", fmt.Errorf("claim free seat: %w", err)
	}

	return seatID, nil
}

// MarkBooked flips a seat Free -> Booked and attaches the ticket. The status
// guard in the WHERE clause is the last line of defense: zero rows affected
// means the seat was not Free anymore, which the row lock taken by ClaimFree
// should have made impossible.
func (r *SeatRepository) MarkBooked(ctx context.Context, seatID, ticketID string) error {
	const sql = `
		UPDATE seats
		SET seat_status = 'Booked', ticket_id = $2
		WHERE seat_id = $1 AND seat_status = 'Free'
	`

	tag, err := pick(ctx, r.pool).Exec(ctx, sql, seatID, ticketID)
	if err != nil {
		return fmt.Errorf("mark seat booked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &booking.ConsistencyError{Entity: "seat", ID: seatID, Detail: "not Free at booking time"}
	}

	return nil
}

func (r *SeatRepository) MarkFree(ctx context.Context, seatID string) error {
	const sql = `
		UPDATE seats
		SET seat_status = 'Free', ticket_id = NULL
		WHERE seat_id = $1
	`

	tag, err := pick(ctx, r.pool).Exec(ctx, sql, seatID)
	if err != nil {
		return fmt.Errorf("mark seat free: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &booking.ConsistencyError{Entity: "seat", ID: seatID, Detail: "does not exist"}
	}

	return nil
}

// Provision bulk-creates count free seats of one class for a train.
// Errors propagate to the caller; a partial failure aborts the enclosing
// transaction rather than leaving a silently short inventory.
func (r *SeatRepository) Provision(ctx context.Context, trainID string, class seat.Class, count int) error {
	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, []any{uuid.New().String(), trainID, string(class), string(seat.StatusFree)})
	}

	var source interface {
		CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		source = tx
	}

	n, err := source.CopyFrom(ctx,
		pgx.Identifier{"seats"},
		[]string{"seat_id", "train_id", "seat_class", "seat_status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("provision seats: %w", err)
	}
	if n != int64(count) {
		return fmt.Errorf("provision seats: inserted %d of %d", n, count)
	}

	return nil
}

func (r *SeatRepository) ListByTrain(ctx context.Context, trainID string) ([]*seat.Seat, error) {
	const sql = `
		SELECT seat_id, train_id, seat_class, seat_status, COALESCE(ticket_id::text, '')
		FROM seats
		WHERE train_id = $1
		ORDER BY seat_class, seat_id
	`

	rows, err := pick(ctx, r.pool).Query(ctx, sql, trainID)
	if err != nil {
		return nil, fmt.Errorf("query seats: %w", err)
	}
	defer rows.Close()

	var seats []*seat.Seat
	for rows.Next() {
		s := &seat.Seat{}
		if err := rows.Scan(&s.ID, &s.TrainID, &s.Class, &s.Status, &s.TicketID); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, s)
	}

	return seats, rows.Err()
}
