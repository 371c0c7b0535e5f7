package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/seat"
	"railbook/internal/usecase"
)

type Handlers struct {
	bookSeatUC   *usecase.BookSeat
	updateResUC  *usecase.UpdateReservation
	provisionUC  *usecase.ProvisionSeats
	refreshUC    *usecase.RefreshAvailability
	getTrainUC   *usecase.GetTrain
	listTrainsUC *usecase.ListTrains
	listResUC    *usecase.ListReservations
	getAlertsUC  *usecase.GetAlerts
	reportsUC    *usecase.Reports
}

func NewHandlers(
	bookSeatUC *usecase.BookSeat,
	updateResUC *usecase.UpdateReservation,
	provisionUC *usecase.ProvisionSeats,
	refreshUC *usecase.RefreshAvailability,
	getTrainUC *usecase.GetTrain,
	listTrainsUC *usecase.ListTrains,
	listResUC *usecase.ListReservations,
	getAlertsUC *usecase.GetAlerts,
	reportsUC *usecase.Reports,
) *Handlers {
	return &Handlers{
		bookSeatUC:   bookSeatUC,
		updateResUC:  updateResUC,
		provisionUC:  provisionUC,
		refreshUC:    refreshUC,
		getTrainUC:   getTrainUC,
		listTrainsUC: listTrainsUC,
		listResUC:    listResUC,
		getAlertsUC:  getAlertsUC,
		reportsUC:    reportsUC,
	}
}

// writeError maps the engine's error kinds onto HTTP statuses. Everything the
// caller can act on keeps its message; unexpected failures stay opaque.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrNoAvailability):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrInvalidState):
		httpError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	default:
		httpError(w, http.StatusInternalServerError, "internal error")
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handlers) BookSeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrainID    string          `json:"train_id"`
		OccupantID string          `json:"occupant_id"`
		Price      decimal.Decimal `json:"price"`
		AmountPaid decimal.Decimal `json:"amount_paid"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TrainID == "" || req.OccupantID == "" {
		httpError(w, http.StatusBadRequest, "train_id and occupant_id are required")
		return
	}

	result, err := h.bookSeatUC.Execute(r.Context(), usecase.BookSeatParams{
		TrainID:    req.TrainID,
		OccupantID: req.OccupantID,
		Price:      req.Price,
		AmountPaid: req.AmountPaid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The caller must branch on status: a Waitlisted booking holds a seat but
	// is not a confirmed trip.
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpError(w, http.StatusBadRequest, "missing reservation id")
		return
	}

	var req struct {
		Action    string `json:"action"`
		SeatClass string `json:"seat_class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.updateResUC.Execute(r.Context(), usecase.UpdateReservationParams{
		ReservationID: id,
		Action:        req.Action,
		SeatClass:     seat.Class(req.SeatClass),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) ProvisionSeats(w http.ResponseWriter, r *http.Request) {
	trainID := chi.URLParam(r, "id")

	var req struct {
		SeatClass string `json:"seat_class"`
		Count     int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.provisionUC.Execute(r.Context(), usecase.ProvisionSeatsParams{
		TrainID: trainID,
		Class:   seat.Class(req.SeatClass),
		Count:   req.Count,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "provisioned"})
}

func (h *Handlers) RefreshAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrainID string `json:"train_id"`
	}
	// Body is optional: no body means refresh every train.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.refreshUC.Execute(r.Context(), req.TrainID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handlers) GetTrain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.getTrainUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handlers) ListTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.listTrainsUC.Execute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.listResUC.Execute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handlers) ListBookingsForPassenger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	reservations, err := h.listResUC.ForPassenger(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alerts, err := h.getAlertsUC.AllAlerts(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	filter := chi.URLParam(r, "filter")

	report, err := h.reportsUC.Execute(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
