package usecase

import (
	"context"
	"fmt"
	"time"
)

// Fixed traveler-facing alert messages, emitted in this order.
const (
	MsgImminentDeparture = "YOU HAVE A TRIP IN LESS THAN 3 HOURS"
	MsgUnpaidReservation = "YOU HAVE AN UNPAID RESERVATION"
)

const departureWindow = 3 * time.Hour

// GetAlerts derives traveler notifications from reservation state. Pure read,
// no side effects.
type GetAlerts struct {
	reservations ReservationStore
	now          func() time.Time
}

func NewGetAlerts(reservations ReservationStore) *GetAlerts {
	return &GetAlerts{reservations: reservations, now: time.Now}
}

// DepartureAlert is true when any of the passenger's trains departs strictly
// between now and three hours from now.
func (uc *GetAlerts) DepartureAlert(ctx context.Context, passengerID string) (bool, error) {
	departures, err := uc.reservations.DeparturesForPassenger(ctx, passengerID)
	if err != nil {
		return false, fmt.Errorf("departure alert: %w", err)
	}

	now := uc.now()
	for _, d := range departures {
		if d.After(now) && d.Before(now.Add(departureWindow)) {
			return true, nil
		}
	}
	return false, nil
}

// UnpaidAlert is true when the passenger holds any Waitlisted reservation.
func (uc *GetAlerts) UnpaidAlert(ctx context.Context, passengerID string) (bool, error) {
	waitlisted, err := uc.reservations.HasWaitlisted(ctx, passengerID)
	if err != nil {
		return false, fmt.Errorf("unpaid alert: %w", err)
	}
	return waitlisted, nil
}

// AllAlerts returns zero or more alert messages: departure first, unpaid second.
func (uc *GetAlerts) AllAlerts(ctx context.Context, passengerID string) ([]string, error) {
	alerts := []string{}

	departing, err := uc.DepartureAlert(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if departing {
		alerts = append(alerts, MsgImminentDeparture)
	}

	unpaid, err := uc.UnpaidAlert(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if unpaid {
		alerts = append(alerts, MsgUnpaidReservation)
	}

	return alerts, nil
}
