package seat

// Class is the service class of a physical seat. The string values match the
// seat_class column so they can be scanned directly.
type Class string

const (
	ClassCabin      Class = "Cabin"
	ClassFirstClass Class = "First Class"
)

func (c Class) Valid() bool {
	return c == ClassCabin || c == ClassFirstClass
}

type Status string

const (
	StatusFree   Status = "Free"
	StatusBooked Status = "Booked"
)

// Seat is one physical seat on one train. A seat is Booked iff TicketID is
// set; the seats table is the source of truth for occupancy, the per-class
// availability counters on trains are derived from it.
type Seat struct {
	ID       string `json:"seat_id"`
	TrainID  string `json:"train_id"`
	Class    Class  `json:"seat_class"`
	Status   Status `json:"seat_status"`
	TicketID string `json:"ticket_id,omitempty"`
}
