package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/seat"
	"railbook/internal/domain/train"
	"railbook/internal/usecase"
)

const testClaimRetries = 3

// fixture wires every usecase against one shared in-memory store, the same
// way cmd/api wires them against postgres.
type fixture struct {
	store *memStore
	tx    *memTransactor

	book      *usecase.BookSeat
	update    *usecase.UpdateReservation
	alerts    *usecase.GetAlerts
	provision *usecase.ProvisionSeats
	refresh   *usecase.RefreshAvailability
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	tx := &memTransactor{store: store}

	seats := memSeats{s: store}
	trains := memTrains{s: store}
	reservations := memReservations{s: store}
	tickets := memTickets{s: store}
	payments := memPayments{s: store}
	ob := memOutbox{s: store}

	threshold := decimal.NewFromInt(50)

	return &fixture{
		store:     store,
		tx:        tx,
		book:      usecase.NewBookSeat(tx, seats, trains, reservations, tickets, payments, ob, threshold, testClaimRetries),
		update:    usecase.NewUpdateReservation(tx, seats, trains, reservations, tickets, ob, testClaimRetries),
		alerts:    usecase.NewGetAlerts(reservations),
		provision: usecase.NewProvisionSeats(tx, seats, trains),
		refresh:   usecase.NewRefreshAvailability(trains),
	}
}

// seedTrain registers a train and provisions its seat inventory, leaving the
// availability counters in sync.
func (f *fixture) seedTrain(t *testing.T, id string, cabin, first int, departure time.Time) {
	t.Helper()

	f.store.mu.Lock()
	f.store.trains[id] = &train.Train{
		ID:                       id,
		Name:                     "Express " + id,
		DepartureTime:            departure,
		ArrivalTime:              departure.Add(4 * time.Hour),
		TotalCabinSeats:          cabin,
		TotalFirstClassSeats:     first,
		AvailableCabinSeats:      cabin,
		AvailableFirstClassSeats: first,
	}
	f.store.mu.Unlock()

	ctx := context.Background()
	seats := memSeats{s: f.store}
	if cabin > 0 {
		if err := seats.Provision(ctx, id, seat.ClassCabin, cabin); err != nil {
			t.Fatalf("provision cabin seats: %v", err)
		}
	}
	if first > 0 {
		if err := seats.Provision(ctx, id, seat.ClassFirstClass, first); err != nil {
			t.Fatalf("provision first class seats: %v", err)
		}
	}
}

func (f *fixture) train(t *testing.T, id string) *train.Train {
	t.Helper()

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	tr, ok := f.store.trains[id]
	if !ok {
		t.Fatalf("train %s not seeded", id)
	}
	c := *tr
	return &c
}

func (f *fixture) seatCount(id string, class seat.Class, status seat.Status) int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	n := 0
	for _, st := range f.store.seats {
		if st.TrainID == id && st.Class == class && st.Status == status {
			n++
		}
	}
	return n
}

func bookParams(trainID, occupantID string, price, paid int64) usecase.BookSeatParams {
	return usecase.BookSeatParams{
		TrainID:    trainID,
		OccupantID: occupantID,
		Price:      decimal.NewFromInt(price),
		AmountPaid: decimal.NewFromInt(paid),
	}
}

// conflictSeats wraps a SeatLedger and loses the first n claims to a
// simulated concurrent allocation.
type conflictSeats struct {
	usecase.SeatLedger
	remaining int
}

func (c *conflictSeats) ClaimFree(ctx context.Context, trainID string, class seat.Class) (string, error) {
	if c.remaining > 0 {
		c.remaining--
		return "", booking.ErrConflict
	}
	return c.SeatLedger.ClaimFree(ctx, trainID, class)
}
