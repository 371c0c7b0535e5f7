package booking_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"railbook/internal/domain/booking"
	"railbook/internal/domain/seat"
)

func TestParseOccupant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want booking.Occupant
	}{
		{"plain id is a passenger", "abc-123", booking.Occupant{PassengerID: "abc-123"}},
		{"explicit passenger prefix", "P:abc-123", booking.Occupant{PassengerID: "abc-123"}},
		{"dependent prefix", "D:child-7", booking.Occupant{DependentID: "child-7"}},
		{"prefix is case sensitive", "d:child-7", booking.Occupant{PassengerID: "d:child-7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.ParseOccupant(tt.in))
		})
	}
}

func TestClassForPrice(t *testing.T) {
	threshold := decimal.NewFromInt(50)

	tests := []struct {
		price string
		want  seat.Class
	}{
		{"10", seat.ClassCabin},
		{"50", seat.ClassCabin},
		{"50.01", seat.ClassFirstClass},
		{"51", seat.ClassFirstClass},
		{"0", seat.ClassCabin},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			assert.Equal(t, tt.want, booking.ClassForPrice(price, threshold))
		})
	}
}
