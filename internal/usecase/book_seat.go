package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/event"
	"railbook/internal/domain/outbox"
	"railbook/internal/domain/payment"
	"railbook/internal/domain/reservation"
	"railbook/internal/domain/seat"
	"railbook/internal/domain/ticket"
	"railbook/internal/infrastructure/postgres"
)

var (
	bookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railbook_bookings_total",
		Help: "Booking attempts by outcome",
	}, []string{"outcome"})
	claimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railbook_seat_claim_conflicts_total",
		Help: "Seat claims lost to a concurrent allocation and retried",
	})
)

// BookSeat is the allocation engine: it claims a free seat, creates the
// reservation/ticket pair, records payment state and refreshes the derived
// availability counters, all in one transaction.
type BookSeat struct {
	txManager    postgres.Transactor
	seats        SeatLedger
	trains       TrainStore
	reservations ReservationStore
	tickets      TicketStore
	payments     PaymentStore
	outboxRepo   OutboxStore
	threshold    decimal.Decimal
	claimRetries int
}

func NewBookSeat(
	txManager postgres.Transactor,
	seats SeatLedger,
	trains TrainStore,
	reservations ReservationStore,
	tickets TicketStore,
	payments PaymentStore,
	outboxRepo OutboxStore,
	threshold decimal.Decimal,
	claimRetries int,
) *BookSeat {
	return &BookSeat{
		txManager:    txManager,
		seats:        seats,
		trains:       trains,
		reservations: reservations,
		tickets:      tickets,
		payments:     payments,
		outboxRepo:   outboxRepo,
		threshold:    threshold,
		claimRetries: claimRetries,
	}
}

type BookSeatParams struct {
	TrainID    string          `json:"train_id"`
	OccupantID string          `json:"occupant_id"`
	Price      decimal.Decimal `json:"price"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type BookSeatResult struct {
	ReservationID string             `json:"reservation_id"`
	TicketID      string             `json:"ticket_id"`
	Status        reservation.Status `json:"status"`
}

// Execute books one seat. The seat class is derived from the price, never
// chosen by the caller, and there is no fallback to the other class when the
// derived one is sold out. A claim lost to a concurrent allocation is retried
// up to claimRetries times; after that the train is treated as full.
// Transient infrastructure failures are retried with backoff inside each
// attempt before surfacing.
func (uc *BookSeat) Execute(ctx context.Context, params BookSeatParams) (*BookSeatResult, error) {
	class := booking.ClassForPrice(params.Price, uc.threshold)
	occupant := booking.ParseOccupant(params.OccupantID)

	status := reservation.StatusConfirmed
	if !params.AmountPaid.Equal(params.Price) {
		status = reservation.StatusWaitlisted
	}

	var result *BookSeatResult
	var err error
	for attempt := 0; ; attempt++ {
		result, err = uc.bookOnce(ctx, params, class, occupant, status)
		if !errors.Is(err, booking.ErrConflict) {
			break
		}
		claimConflicts.Inc()
		if attempt >= uc.claimRetries {
			err = booking.ErrNoAvailability
			break
		}
	}

	switch {
	case err == nil:
		bookingsTotal.WithLabelValues(string(result.Status)).Inc()
	case errors.Is(err, booking.ErrNoAvailability):
		bookingsTotal.WithLabelValues("no_availability").Inc()
	default:
		bookingsTotal.WithLabelValues("error").Inc()
	}

	return result, err
}

func (uc *BookSeat) bookOnce(
	ctx context.Context,
	params BookSeatParams,
	class seat.Class,
	occupant booking.Occupant,
	status reservation.Status,
) (*BookSeatResult, error) {
	now := time.Now()

	res := &reservation.Reservation{
		ID:              uuid.New().String(),
		PassengerID:     occupant.PassengerID,
		DependentID:     occupant.DependentID,
		TrainID:         params.TrainID,
		Status:          status,
		ReservationDate: now,
	}
	tkt := &ticket.Ticket{
		ID:            uuid.New().String(),
		ReservationID: res.ID,
		TrainID:       params.TrainID,
		CreatedAt:     now,
	}

	err := withTxRetry(ctx, func() error {
		return uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
			seatID, err := uc.seats.ClaimFree(txCtx, params.TrainID, class)
			if err != nil {
				return err
			}
			tkt.SeatID = seatID

			if err := uc.reservations.Create(txCtx, res); err != nil {
				return err
			}
			if err := uc.tickets.Create(txCtx, tkt); err != nil {
				return err
			}
			if err := uc.seats.MarkBooked(txCtx, seatID, tkt.ID); err != nil {
				return err
			}

			if status == reservation.StatusConfirmed {
				p := &payment.Payment{
					ID:            uuid.New().String(),
					ReservationID: res.ID,
					Amount:        params.AmountPaid,
					PaymentDate:   now,
				}
				if err := uc.payments.Create(txCtx, p); err != nil {
					return err
				}
			}

			if err := uc.trains.RefreshAvailability(txCtx, params.TrainID); err != nil {
				return err
			}

			return uc.outboxRepo.Create(txCtx, bookingEvent(event.TypeBookingCreated, res, tkt.ID))
		})
	})
	if err != nil {
		if errors.Is(err, booking.ErrNoAvailability) || errors.Is(err, booking.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("book seat: %w", err)
	}

	return &BookSeatResult{ReservationID: res.ID, TicketID: tkt.ID, Status: status}, nil
}

func bookingEvent(eventType string, res *reservation.Reservation, ticketID string) *outbox.Event {
	payload, _ := json.Marshal(event.BookingPayload{
		ReservationID: res.ID,
		TicketID:      ticketID,
		TrainID:       res.TrainID,
		Status:        string(res.Status),
		PassengerID:   res.PassengerID,
		DependentID:   res.DependentID,
	})

	return &outbox.Event{
		ID:            uuid.New().String(),
		EventType:     eventType,
		Payload:       payload,
		Status:        "new",
		CorrelationID: res.ID,
		Producer:      "railbook-api",
		CreatedAt:     time.Now(),
	}
}
