package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railbook/internal/domain/reservation"
	"railbook/internal/usecase"
)

func TestGetAlerts_ImminentDeparture(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(2*time.Hour))
	f.seedReservation(t, "r1", "t1", reservation.StatusConfirmed)

	alerts, err := f.alerts.AllAlerts(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{usecase.MsgImminentDeparture}, alerts)
}

func TestGetAlerts_UnpaidOnly(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(10*time.Hour))
	f.seedReservation(t, "r1", "t1", reservation.StatusWaitlisted)

	alerts, err := f.alerts.AllAlerts(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{usecase.MsgUnpaidReservation}, alerts)
}

func TestGetAlerts_BothInOrder(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(90*time.Minute))
	f.seedTrain(t, "t2", 1, 0, time.Now().Add(48*time.Hour))
	f.seedReservation(t, "r1", "t1", reservation.StatusConfirmed)
	f.seedReservation(t, "r2", "t2", reservation.StatusWaitlisted)

	alerts, err := f.alerts.AllAlerts(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{usecase.MsgImminentDeparture, usecase.MsgUnpaidReservation}, alerts)
}

func TestGetAlerts_NoneOutsideWindow(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(5*time.Hour))
	f.seedReservation(t, "r1", "t1", reservation.StatusConfirmed)

	alerts, err := f.alerts.AllAlerts(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestGetAlerts_IgnoresCancelledAndDeparted(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(1*time.Hour))
	f.seedTrain(t, "t2", 1, 0, time.Now().Add(-1*time.Hour))
	f.seedReservation(t, "r1", "t1", reservation.StatusCancelled)
	f.seedReservation(t, "r2", "t2", reservation.StatusConfirmed)

	alerts, err := f.alerts.AllAlerts(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, alerts, "cancelled reservations and departed trains raise no alert")
}

func TestGetAlerts_OtherPassengerUnaffected(t *testing.T) {
	f := newFixture(t)
	f.seedTrain(t, "t1", 1, 0, time.Now().Add(2*time.Hour))
	f.seedReservation(t, "r1", "t1", reservation.StatusWaitlisted)

	alerts, err := f.alerts.AllAlerts(context.Background(), "p-other")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
