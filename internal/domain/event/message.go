package event

import (
	"encoding/json"
	"time"
)

// Event types appended to the outbox by the allocation engine and the
// lifecycle manager, and consumed by the notifier.
const (
	TypeBookingCreated       = "BookingCreated"
	TypeReservationCancelled = "ReservationCancelled"
	TypeReservationConfirmed = "ReservationConfirmed"
)

// Message is the envelope published to Kafka. Payload is kept as raw JSON
// produced by the originating component.
type Message struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	Producer      string          `json:"producer"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// BookingPayload is the payload of every reservation lifecycle event. The
// correlation id of the envelope is always the reservation id.
type BookingPayload struct {
	ReservationID string `json:"reservation_id"`
	TicketID      string `json:"ticket_id,omitempty"`
	TrainID       string `json:"train_id"`
	Status        string `json:"status"`
	PassengerID   string `json:"passenger_id,omitempty"`
	DependentID   string `json:"dependent_id,omitempty"`
}
