package train

import "time"

type Train struct {
	ID                       string    `json:"train_id"`
	Name                     string    `json:"train_name"`
	DepartureTime            time.Time `json:"departure_time"`
	ArrivalTime              time.Time `json:"arrival_time"`
	TotalCabinSeats          int       `json:"total_cabin_seats"`
	TotalFirstClassSeats     int       `json:"total_firstclass_seats"`
	AvailableCabinSeats      int       `json:"available_cabin_seats"`
	AvailableFirstClassSeats int       `json:"available_firstclass_seats"`
}
