package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records that the full price was tendered at booking time. Partial
// payments are never recorded; they leave the reservation Waitlisted.
type Payment struct {
	ID            string          `json:"payment_id"`
	ReservationID string          `json:"reservation_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
}
