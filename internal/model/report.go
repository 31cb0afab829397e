package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemStats is one row of the daily rollup table.
type SystemStats struct {
	Date                 time.Time       `json:"date"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalReservations    int             `json:"total_reservations"`
	AverageOccupancyRate float64         `json:"average_occupancy_rate"`
}

// DailyRevenue is revenue collected on one calendar day (UTC).
type DailyRevenue struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Revenue decimal.Decimal `json:"revenue"`
}

// Occupant describes who holds an occupied spot.
type Occupant struct {
	ReservationID uint64    `json:"reservation_id"`
	SpotID        uint64    `json:"spot_id"`
	UserID        uint64    `json:"user_id"`
	Username      string    `json:"username"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleType   string    `json:"vehicle_type"`
	StartTime     time.Time `json:"start_time"`
}
