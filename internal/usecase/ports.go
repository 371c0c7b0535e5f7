package usecase

import (
	"context"
	"time"

	"railbook/internal/domain/outbox"
	"railbook/internal/domain/payment"
	"railbook/internal/domain/reservation"
	"railbook/internal/domain/seat"
	"railbook/internal/domain/ticket"
	"railbook/internal/domain/train"
)

// Ports over the postgres repositories. The usecases only depend on these so
// tests can run against an in-memory ledger; the write methods are expected
// to be called inside a Transactor.WithinTransaction scope.

// SeatLedger is the authoritative per-seat occupancy record. ClaimFree must
// reserve the returned seat exclusively for the calling transaction: two
// concurrent allocations on the same train/class never observe the same seat.
type SeatLedger interface {
	ClaimFree(ctx context.Context, trainID string, class seat.Class) (string, error)
	MarkBooked(ctx context.Context, seatID, ticketID string) error
	MarkFree(ctx context.Context, seatID string) error
	Provision(ctx context.Context, trainID string, class seat.Class, count int) error
	ListByTrain(ctx context.Context, trainID string) ([]*seat.Seat, error)
}

type TrainStore interface {
	GetByID(ctx context.Context, id string) (*train.Train, error)
	List(ctx context.Context) ([]*train.Train, error)
	RefreshAvailability(ctx context.Context, trainID string) error
	RefreshAllAvailability(ctx context.Context) error
}

type ReservationStore interface {
	Create(ctx context.Context, res *reservation.Reservation) error
	GetByID(ctx context.Context, id string) (*reservation.Reservation, error)
	UpdateStatus(ctx context.Context, id string, to reservation.Status, from []reservation.Status) error
	List(ctx context.Context) ([]*reservation.Reservation, error)
	ListByPassenger(ctx context.Context, passengerID string) ([]*reservation.Reservation, error)
	DeparturesForPassenger(ctx context.Context, passengerID string) ([]time.Time, error)
	HasWaitlisted(ctx context.Context, passengerID string) (bool, error)
}

type TicketStore interface {
	Create(ctx context.Context, t *ticket.Ticket) error
	GetByReservationID(ctx context.Context, reservationID string) (*ticket.Ticket, error)
	DeleteByReservationID(ctx context.Context, reservationID string) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *payment.Payment) error
	GetByReservationID(ctx context.Context, reservationID string) (*payment.Payment, error)
}

type OutboxStore interface {
	Create(ctx context.Context, e *outbox.Event) error
}
