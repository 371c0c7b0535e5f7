package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"railbook/internal/domain/payment"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	const sql = `
		INSERT INTO payments (payment_id, reservation_id, amount, payment_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reservation_id) DO NOTHING
	`

	_, err := pick(ctx, r.pool).Exec(ctx, sql, p.ID, p.ReservationID, p.Amount, p.PaymentDate)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID string) (*payment.Payment, error) {
	const sql = `
		SELECT payment_id, reservation_id, amount, payment_date
		FROM payments
		WHERE reservation_id = $1
	`

	var p payment.Payment
	err := pick(ctx, r.pool).QueryRow(ctx, sql, reservationID).Scan(&p.ID, &p.ReservationID, &p.Amount, &p.PaymentDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by reservation_id: %w", err)
	}
	return &p, nil
}
