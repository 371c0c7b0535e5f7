package ticket

import "time"

// Ticket binds a reservation to one seat on one train. It is created inside
// the same transaction that marks the seat Booked and deleted when the
// reservation is cancelled.
type Ticket struct {
	ID            string    `json:"ticket_id"`
	ReservationID string    `json:"reservation_id"`
	SeatID        string    `json:"seat_id"`
	TrainID       string    `json:"train_id"`
	CreatedAt     time.Time `json:"created_at"`
}
