package usecase

import (
	"context"

	"railbook/internal/domain/reservation"
)

// ListReservations serves the back-office reservation listing and the
// per-passenger booking history. Read-only.
type ListReservations struct {
	reservations ReservationStore
}

func NewListReservations(reservations ReservationStore) *ListReservations {
	return &ListReservations{reservations: reservations}
}

func (uc *ListReservations) Execute(ctx context.Context) ([]*reservation.Reservation, error) {
	return uc.reservations.List(ctx)
}

func (uc *ListReservations) ForPassenger(ctx context.Context, passengerID string) ([]*reservation.Reservation, error) {
	return uc.reservations.ListByPassenger(ctx, passengerID)
}
