package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"railbook/internal/domain/ticket"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	const sql = `
		INSERT INTO tickets (ticket_id, reservation_id, seat_id, train_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := pick(ctx, r.pool).Exec(ctx, sql, t.ID, t.ReservationID, t.SeatID, t.TrainID, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	return nil
}

// GetByReservationID returns nil, nil when the reservation holds no ticket
// (waitlisted reservations that were never assigned a seat).
func (r *TicketRepository) GetByReservationID(ctx context.Context, reservationID string) (*ticket.Ticket, error) {
	const sql = `
		SELECT ticket_id, reservation_id, seat_id, train_id, created_at
		FROM tickets
		WHERE reservation_id = $1
	`

	var t ticket.Ticket
	err := pick(ctx, r.pool).QueryRow(ctx, sql, reservationID).Scan(
		&t.ID, &t.ReservationID, &t.SeatID, &t.TrainID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket by reservation_id: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) DeleteByReservationID(ctx context.Context, reservationID string) error {
	const sql = `DELETE FROM tickets WHERE reservation_id = $1`

	if _, err := pick(ctx, r.pool).Exec(ctx, sql, reservationID); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}
