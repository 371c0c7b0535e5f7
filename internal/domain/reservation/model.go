package reservation

import "time"

type Status string

const (
	StatusConfirmed  Status = "Confirmed"
	StatusWaitlisted Status = "Waitlisted"
	StatusCancelled  Status = "Cancelled"
)

// Reservation is owned by exactly one passenger or one dependent; the unused
// owner field stays empty. Cancelled reservations are kept for history, only
// their ticket row is removed.
type Reservation struct {
	ID              string    `json:"reservation_id"`
	PassengerID     string    `json:"passenger_id,omitempty"`
	DependentID     string    `json:"dependent_id,omitempty"`
	TrainID         string    `json:"train_id"`
	Status          Status    `json:"status"`
	ReservationDate time.Time `json:"reservation_date"`
}
