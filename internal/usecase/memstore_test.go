package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/outbox"
	"railbook/internal/domain/payment"
	"railbook/internal/domain/reservation"
	"railbook/internal/domain/seat"
	"railbook/internal/domain/ticket"
	"railbook/internal/domain/train"
)

// memStore is an in-memory stand-in for the postgres schema. The per-port
// views below expose it through the usecase interfaces so the engine runs
// against a real seat ledger without a database.
type memStore struct {
	mu           sync.Mutex
	trains       map[string]*train.Train
	seats        map[string]*seat.Seat
	reservations map[string]*reservation.Reservation
	tickets      map[string]*ticket.Ticket   // by reservation id
	payments     map[string]*payment.Payment // by reservation id
	outbox       []*outbox.Event
}

func newMemStore() *memStore {
	return &memStore{
		trains:       map[string]*train.Train{},
		seats:        map[string]*seat.Seat{},
		reservations: map[string]*reservation.Reservation{},
		tickets:      map[string]*ticket.Ticket{},
		payments:     map[string]*payment.Payment{},
	}
}

type memSeats struct{ s *memStore }
type memTrains struct{ s *memStore }
type memReservations struct{ s *memStore }
type memTickets struct{ s *memStore }
type memPayments struct{ s *memStore }
type memOutbox struct{ s *memStore }

// memTransactor serializes transactions over the store and restores a
// snapshot on error, mirroring the all-or-nothing contract of the real
// transaction manager.
type memTransactor struct {
	txMu  sync.Mutex
	store *memStore
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	trains       map[string]*train.Train
	seats        map[string]*seat.Seat
	reservations map[string]*reservation.Reservation
	tickets      map[string]*ticket.Ticket
	payments     map[string]*payment.Payment
	outboxLen    int
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		trains:       map[string]*train.Train{},
		seats:        map[string]*seat.Seat{},
		reservations: map[string]*reservation.Reservation{},
		tickets:      map[string]*ticket.Ticket{},
		payments:     map[string]*payment.Payment{},
		outboxLen:    len(s.outbox),
	}
	for id, t := range s.trains {
		c := *t
		snap.trains[id] = &c
	}
	for id, st := range s.seats {
		c := *st
		snap.seats[id] = &c
	}
	for id, r := range s.reservations {
		c := *r
		snap.reservations[id] = &c
	}
	for id, tk := range s.tickets {
		c := *tk
		snap.tickets[id] = &c
	}
	for id, p := range s.payments {
		c := *p
		snap.payments[id] = &c
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trains = snap.trains
	s.seats = snap.seats
	s.reservations = snap.reservations
	s.tickets = snap.tickets
	s.payments = snap.payments
	s.outbox = s.outbox[:snap.outboxLen]
}

// --- SeatLedger ---

func (m memSeats) ClaimFree(_ context.Context, trainID string, class seat.Class) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id, st := range m.s.seats {
		if st.TrainID == trainID && st.Class == class && st.Status == seat.StatusFree {
			return id, nil
		}
	}
	return "", booking.ErrNoAvailability
}

func (m memSeats) MarkBooked(_ context.Context, seatID, ticketID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	st, ok := m.s.seats[seatID]
	if !ok || st.Status != seat.StatusFree {
		return &booking.ConsistencyError{Entity: "seat", ID: seatID, Detail: "not Free at booking time"}
	}
	st.Status = seat.StatusBooked
	st.TicketID = ticketID
	return nil
}

func (m memSeats) MarkFree(_ context.Context, seatID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	st, ok := m.s.seats[seatID]
	if !ok {
		return &booking.ConsistencyError{Entity: "seat", ID: seatID, Detail: "does not exist"}
	}
	st.Status = seat.StatusFree
	st.TicketID = ""
	return nil
}

func (m memSeats) Provision(_ context.Context, trainID string, class seat.Class, count int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for i := 0; i < count; i++ {
		id := uuid.New().String()
		m.s.seats[id] = &seat.Seat{ID: id, TrainID: trainID, Class: class, Status: seat.StatusFree}
	}
	return nil
}

func (m memSeats) ListByTrain(_ context.Context, trainID string) ([]*seat.Seat, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var out []*seat.Seat
	for _, st := range m.s.seats {
		if st.TrainID == trainID {
			c := *st
			out = append(out, &c)
		}
	}
	return out, nil
}

// --- TrainStore ---

func (m memTrains) GetByID(_ context.Context, id string) (*train.Train, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	t, ok := m.s.trains[id]
	if !ok {
		return nil, fmt.Errorf("train %s: %w", id, booking.ErrNotFound)
	}
	c := *t
	return &c, nil
}

func (m memTrains) List(_ context.Context) ([]*train.Train, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var out []*train.Train
	for _, t := range m.s.trains {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (m memTrains) RefreshAvailability(_ context.Context, trainID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.refreshLocked(trainID)
}

func (m memTrains) RefreshAllAvailability(_ context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id := range m.s.trains {
		if err := m.s.refreshLocked(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) refreshLocked(trainID string) error {
	t, ok := s.trains[trainID]
	if !ok {
		return fmt.Errorf("train %s: %w", trainID, booking.ErrNotFound)
	}

	bookedCabin, bookedFirst := 0, 0
	for _, st := range s.seats {
		if st.TrainID != trainID || st.Status != seat.StatusBooked {
			continue
		}
		if st.Class == seat.ClassCabin {
			bookedCabin++
		} else {
			bookedFirst++
		}
	}
	t.AvailableCabinSeats = t.TotalCabinSeats - bookedCabin
	t.AvailableFirstClassSeats = t.TotalFirstClassSeats - bookedFirst
	return nil
}

// --- ReservationStore ---

func (m memReservations) Create(_ context.Context, res *reservation.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c := *res
	m.s.reservations[res.ID] = &c
	return nil
}

func (m memReservations) GetByID(_ context.Context, id string) (*reservation.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	r, ok := m.s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, booking.ErrNotFound)
	}
	c := *r
	return &c, nil
}

func (m memReservations) UpdateStatus(_ context.Context, id string, to reservation.Status, from []reservation.Status) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	r, ok := m.s.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %s: %w", id, booking.ErrNotFound)
	}
	for _, f := range from {
		if r.Status == f {
			r.Status = to
			return nil
		}
	}
	return fmt.Errorf("reservation %s -> %s: %w", id, to, booking.ErrInvalidState)
}

func (m memReservations) List(_ context.Context) ([]*reservation.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var out []*reservation.Reservation
	for _, r := range m.s.reservations {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m memReservations) ListByPassenger(_ context.Context, passengerID string) ([]*reservation.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var out []*reservation.Reservation
	for _, r := range m.s.reservations {
		if r.PassengerID == passengerID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m memReservations) DeparturesForPassenger(_ context.Context, passengerID string) ([]time.Time, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var out []time.Time
	for _, r := range m.s.reservations {
		if r.PassengerID != passengerID || r.Status == reservation.StatusCancelled {
			continue
		}
		if t, ok := m.s.trains[r.TrainID]; ok {
			out = append(out, t.DepartureTime)
		}
	}
	return out, nil
}

func (m memReservations) HasWaitlisted(_ context.Context, passengerID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, r := range m.s.reservations {
		if r.PassengerID == passengerID && r.Status == reservation.StatusWaitlisted {
			return true, nil
		}
	}
	return false, nil
}

// --- TicketStore ---

func (m memTickets) Create(_ context.Context, t *ticket.Ticket) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, exists := m.s.tickets[t.ReservationID]; exists {
		return fmt.Errorf("ticket for reservation %s already exists", t.ReservationID)
	}
	c := *t
	m.s.tickets[t.ReservationID] = &c
	return nil
}

func (m memTickets) GetByReservationID(_ context.Context, reservationID string) (*ticket.Ticket, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	t, ok := m.s.tickets[reservationID]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (m memTickets) DeleteByReservationID(_ context.Context, reservationID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	delete(m.s.tickets, reservationID)
	return nil
}

// --- PaymentStore ---

func (m memPayments) Create(_ context.Context, p *payment.Payment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, exists := m.s.payments[p.ReservationID]; exists {
		return nil
	}
	c := *p
	m.s.payments[p.ReservationID] = &c
	return nil
}

func (m memPayments) GetByReservationID(_ context.Context, reservationID string) (*payment.Payment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	p, ok := m.s.payments[reservationID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// --- OutboxStore ---

func (m memOutbox) Create(_ context.Context, e *outbox.Event) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c := *e
	m.s.outbox = append(m.s.outbox, &c)
	return nil
}
