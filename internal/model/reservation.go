package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus values stored in reservations.status.
type ReservationStatus string

const (
	ReservationActive         ReservationStatus = "active"
	ReservationCompleted      ReservationStatus = "completed"
	ReservationPendingPayment ReservationStatus = "pending_payment"
	ReservationCancelled      ReservationStatus = "cancelled"
)

// Reservation records one parking session.  EndTime is nil while the
// session is open; Cost is set when it is closed.  LotID and SpotID are
// zero when the referenced lot or spot has since been removed.
type Reservation struct {
	ID            uint64              `json:"id"`
	UserID        uint64              `json:"user_id"`
	LotID         uint64              `json:"lot_id,omitempty"`
	SpotID        uint64              `json:"spot_id,omitempty"`
	StartTime     time.Time           `json:"start_time"`
	EndTime       *time.Time          `json:"end_time"`
	Cost          decimal.NullDecimal `json:"cost"`
	Status        ReservationStatus   `json:"status"`
	VehicleNumber string              `json:"vehicle_number"`

	// filled by listing queries only
	LotName    string `json:"lot_name,omitempty"`
	SpotNumber string `json:"spot_number,omitempty"`
}

// Open reports whether the reservation still holds its spot.
func (r *Reservation) Open() bool { return r.EndTime == nil }

// DurationHours returns the elapsed hours between start and end (or now
// for an open reservation).
func (r *Reservation) DurationHours(now time.Time) float64 {
	end := now
	if r.EndTime != nil {
		end = *r.EndTime
	}
	return end.Sub(r.StartTime).Hours()
}
