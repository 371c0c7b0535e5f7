package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/reservation"
	"railbook/internal/domain/seat"
	"railbook/internal/usecase"
)

// flakyTransactor drops the first failures transactions with a transient
// postgres error before delegating to the real transactor.
type flakyTransactor struct {
	inner    *memTransactor
	failures int
	calls    int
}

func (t *flakyTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.failures > 0 {
		t.failures--
		return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	}
	return t.inner.WithinTransaction(ctx, fn)
}

func TestBookSeat_RetriesTransientFailures(t *testing.T) {
	store := newMemStore()
	f := &fixture{store: store, tx: &memTransactor{store: store}}
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(24*time.Hour))

	flaky := &flakyTransactor{inner: f.tx, failures: 2}
	book := usecase.NewBookSeat(flaky,
		memSeats{s: store}, memTrains{s: store}, memReservations{s: store},
		memTickets{s: store}, memPayments{s: store}, memOutbox{s: store},
		decimal.NewFromInt(50), testClaimRetries)

	res, err := book.Execute(context.Background(), bookParams("t1", "p1", 40, 40))
	require.NoError(t, err, "two connection losses are survivable")
	assert.Equal(t, reservation.StatusConfirmed, res.Status)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, 1, f.seatCount("t1", seat.ClassCabin, seat.StatusBooked))
}

func TestBookSeat_SurfacesPersistentFailure(t *testing.T) {
	store := newMemStore()
	f := &fixture{store: store, tx: &memTransactor{store: store}}
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(24*time.Hour))

	flaky := &flakyTransactor{inner: f.tx, failures: 100}
	book := usecase.NewBookSeat(flaky,
		memSeats{s: store}, memTrains{s: store}, memReservations{s: store},
		memTickets{s: store}, memPayments{s: store}, memOutbox{s: store},
		decimal.NewFromInt(50), testClaimRetries)

	_, err := book.Execute(context.Background(), bookParams("t1", "p1", 40, 40))
	require.Error(t, err)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr), "the underlying failure stays inspectable")
	assert.LessOrEqual(t, flaky.calls, 5, "retries are bounded")
	assert.Equal(t, 0, f.seatCount("t1", seat.ClassCabin, seat.StatusBooked))
}

func TestBookSeat_DomainErrorsAreNotRetried(t *testing.T) {
	store := newMemStore()
	f := &fixture{store: store, tx: &memTransactor{store: store}}
	// No cabin seats at all: the claim fails on the first attempt.
	f.seedTrain(t, "t1", 0, 1, time.Now().Add(24*time.Hour))

	flaky := &flakyTransactor{inner: f.tx, failures: 0}
	book := usecase.NewBookSeat(flaky,
		memSeats{s: store}, memTrains{s: store}, memReservations{s: store},
		memTickets{s: store}, memPayments{s: store}, memOutbox{s: store},
		decimal.NewFromInt(50), testClaimRetries)

	_, err := book.Execute(context.Background(), bookParams("t1", "p1", 40, 40))
	require.ErrorIs(t, err, booking.ErrNoAvailability)
	assert.Equal(t, 1, flaky.calls)
}

func TestUpdateReservation_CancelRetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(24*time.Hour))

	booked, err := f.book.Execute(context.Background(), bookParams("t1", "p1", 40, 40))
	require.NoError(t, err)

	flaky := &flakyTransactor{inner: f.tx, failures: 1}
	update := usecase.NewUpdateReservation(flaky,
		memSeats{s: f.store}, memTrains{s: f.store}, memReservations{s: f.store},
		memTickets{s: f.store}, memOutbox{s: f.store}, testClaimRetries)

	err = update.Execute(context.Background(), usecase.UpdateReservationParams{
		ReservationID: booked.ReservationID,
		Action:        usecase.ActionCancel,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, 1, f.train(t, "t1").AvailableCabinSeats)
}
