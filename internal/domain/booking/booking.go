package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"railbook/internal/domain/seat"
)

// Sentinel errors returned by the allocation engine and lifecycle manager.
// Handlers map these to HTTP status codes; anything else is a 500.
var (
	// ErrNoAvailability: no free seat of the required class on the train.
	// Surfaced to the caller, never retried automatically.
	ErrNoAvailability = errors.New("no free seat of the requested class")

	// ErrConflict: a concurrent allocation claimed the seat first. Retried
	// internally a bounded number of times before becoming ErrNoAvailability.
	ErrConflict = errors.New("seat was claimed by a concurrent allocation")

	// ErrInvalidState: the reservation is not in a state that allows the
	// requested transition (e.g. cancelling a Cancelled reservation).
	ErrInvalidState = errors.New("reservation state does not allow this transition")

	ErrNotFound = errors.New("not found")
)

// ConsistencyError reports a broken invariant, e.g. a ticket referencing a
// seat that is not Booked. The enclosing transaction must roll back.
type ConsistencyError struct {
	Entity string
	ID     string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation on %s %s: %s", e.Entity, e.ID, e.Detail)
}

// Occupant identifies the owner of a reservation: exactly one of PassengerID
// or DependentID is set.
type Occupant struct {
	PassengerID string
	DependentID string
}

// ParseOccupant splits an occupant identifier into its owner fields.
// Dependents are tagged with a "D:" prefix; everything else is a passenger.
func ParseOccupant(id string) Occupant {
	if rest, ok := strings.CutPrefix(id, "D:"); ok {
		return Occupant{DependentID: rest}
	}
	return Occupant{PassengerID: strings.TrimPrefix(id, "P:")}
}

// ClassForPrice maps the ticket price to a seat class. This is a business
// rule, not a passenger choice: at or below the threshold rides Cabin,
// above it rides First Class.
func ClassForPrice(price, threshold decimal.Decimal) seat.Class {
	if price.LessThanOrEqual(threshold) {
		return seat.ClassCabin
	}
	return seat.ClassFirstClass
}
