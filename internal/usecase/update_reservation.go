package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/event"
	"railbook/internal/domain/reservation"
	"railbook/internal/domain/seat"
	"railbook/internal/domain/ticket"
	"railbook/internal/infrastructure/postgres"
)

const (
	ActionCancel  = "cancel"
	ActionConfirm = "confirm"
)

// UpdateReservation is the lifecycle manager: it moves a reservation between
// Confirmed/Waitlisted/Cancelled. Cancelling always releases the seat and
// refreshes the counters; confirming a waitlisted reservation assigns a real
// seat. Each transition is one transaction.
type UpdateReservation struct {
	txManager    postgres.Transactor
	seats        SeatLedger
	trains       TrainStore
	reservations ReservationStore
	tickets      TicketStore
	outboxRepo   OutboxStore
	claimRetries int
}

func NewUpdateReservation(
	txManager postgres.Transactor,
	seats SeatLedger,
	trains TrainStore,
	reservations ReservationStore,
	tickets TicketStore,
	outboxRepo OutboxStore,
	claimRetries int,
) *UpdateReservation {
	return &UpdateReservation{
		txManager:    txManager,
		seats:        seats,
		trains:       trains,
		reservations: reservations,
		tickets:      tickets,
		outboxRepo:   outboxRepo,
		claimRetries: claimRetries,
	}
}

type UpdateReservationParams struct {
	ReservationID string     `json:"reservation_id"`
	Action        string     `json:"action"`
	SeatClass     seat.Class `json:"seat_class"`
}

func (uc *UpdateReservation) Execute(ctx context.Context, params UpdateReservationParams) error {
	switch params.Action {
	case ActionCancel:
		return uc.cancel(ctx, params.ReservationID)
	case ActionConfirm:
		if !params.SeatClass.Valid() {
			return fmt.Errorf("seat class %q: %w", params.SeatClass, booking.ErrInvalidState)
		}
		return uc.confirm(ctx, params.ReservationID, params.SeatClass)
	default:
		return fmt.Errorf("unknown action %q", params.Action)
	}
}

// cancel moves Confirmed/Waitlisted -> Cancelled and performs the mandatory
// side effects in the same transaction: delete the ticket, free the seat,
// recompute the train's counters.
func (uc *UpdateReservation) cancel(ctx context.Context, reservationID string) error {
	err := withTxRetry(ctx, func() error {
		return uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
			res, err := uc.reservations.GetByID(txCtx, reservationID)
			if err != nil {
				return err
			}

			err = uc.reservations.UpdateStatus(txCtx, reservationID, reservation.StatusCancelled,
				[]reservation.Status{reservation.StatusConfirmed, reservation.StatusWaitlisted})
			if err != nil {
				return err
			}

			tkt, err := uc.tickets.GetByReservationID(txCtx, reservationID)
			if err != nil {
				return err
			}
			if tkt != nil {
				if err := uc.tickets.DeleteByReservationID(txCtx, reservationID); err != nil {
					return err
				}
				if err := uc.seats.MarkFree(txCtx, tkt.SeatID); err != nil {
					return err
				}
				if err := uc.trains.RefreshAvailability(txCtx, res.TrainID); err != nil {
					return err
				}
			}

			res.Status = reservation.StatusCancelled
			return uc.outboxRepo.Create(txCtx, bookingEvent(event.TypeReservationCancelled, res, ""))
		})
	})
	if err != nil {
		if errors.Is(err, booking.ErrInvalidState) || errors.Is(err, booking.ErrNotFound) {
			return err
		}
		return fmt.Errorf("cancel reservation: %w", err)
	}

	return nil
}

// confirm moves Waitlisted -> Confirmed and assigns a seat of the requested
// class on the reservation's train, marking it booked and refreshing the
// counters. Without a free seat the reservation stays waitlisted.
func (uc *UpdateReservation) confirm(ctx context.Context, reservationID string, class seat.Class) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = uc.confirmOnce(ctx, reservationID, class)
		if !errors.Is(err, booking.ErrConflict) {
			break
		}
		claimConflicts.Inc()
		if attempt >= uc.claimRetries {
			return booking.ErrNoAvailability
		}
	}
	return err
}

func (uc *UpdateReservation) confirmOnce(ctx context.Context, reservationID string, class seat.Class) error {
	err := withTxRetry(ctx, func() error {
		return uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
			res, err := uc.reservations.GetByID(txCtx, reservationID)
			if err != nil {
				return err
			}

			seatID, err := uc.seats.ClaimFree(txCtx, res.TrainID, class)
			if err != nil {
				return err
			}

			err = uc.reservations.UpdateStatus(txCtx, reservationID, reservation.StatusConfirmed,
				[]reservation.Status{reservation.StatusWaitlisted})
			if err != nil {
				return err
			}

			tkt := &ticket.Ticket{
				ID:            uuid.New().String(),
				ReservationID: reservationID,
				SeatID:        seatID,
				TrainID:       res.TrainID,
				CreatedAt:     time.Now(),
			}
			if err := uc.tickets.Create(txCtx, tkt); err != nil {
				return err
			}
			if err := uc.seats.MarkBooked(txCtx, seatID, tkt.ID); err != nil {
				return err
			}
			if err := uc.trains.RefreshAvailability(txCtx, res.TrainID); err != nil {
				return err
			}

			res.Status = reservation.StatusConfirmed
			return uc.outboxRepo.Create(txCtx, bookingEvent(event.TypeReservationConfirmed, res, tkt.ID))
		})
	})
	if err != nil {
		if errors.Is(err, booking.ErrNoAvailability) ||
			errors.Is(err, booking.ErrConflict) ||
			errors.Is(err, booking.ErrInvalidState) ||
			errors.Is(err, booking.ErrNotFound) {
			return err
		}
		return fmt.Errorf("confirm reservation: %w", err)
	}

	return nil
}
