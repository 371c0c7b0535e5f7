package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"railbook/internal/api/middleware"
)

func NewRouter(h *Handlers, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)
	r.Use(ChiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Booking creation is guarded by the idempotency middleware so a
		// retried request cannot allocate a second seat.
		r.With(middleware.Idempotency(redisClient)).Post("/bookings", h.BookSeat)

		r.Put("/reservations/{id}", h.UpdateReservation)
		r.Get("/reservations", h.ListReservations)

		r.Get("/trains", h.ListTrains)
		r.Get("/trains/{id}", h.GetTrain)
		r.Post("/trains/{id}/seats", h.ProvisionSeats)
		r.Post("/trains/refresh", h.RefreshAvailability)

		r.Get("/passengers/{id}/alerts", h.GetAlerts)
		r.Get("/passengers/{id}/bookings", h.ListBookingsForPassenger)

		r.Get("/reports/{filter}", h.Reports)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
