package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot defaults applied when an administrator omits them.
const (
	DefaultLayoutRows      = 4
	DefaultLayoutCols      = 5
	DefaultMaxParkingLimit = 100
)

// ParkingLot represents a row of the `parking_lots` table.  A lot owns a
// LayoutRows x LayoutCols grid of spots; MaxSpots always equals
// LayoutRows*LayoutCols and never exceeds MaxParkingLimit.
type ParkingLot struct {
	ID                uint64          `json:"id"`
	PrimeLocationName string          `json:"prime_location_name"`
	Address           string          `json:"address"`
	PinCode           string          `json:"pin_code"`
	PricePerHour      decimal.Decimal `json:"price_per_hour"`
	LayoutRows        int             `json:"layout_rows"`
	LayoutCols        int             `json:"layout_cols"`
	MaxSpots          int             `json:"max_spots"`
	MaxParkingLimit   int             `json:"max_parking_limit"`
	HasSecurity       bool            `json:"has_security"`
	HasLighting       bool            `json:"has_lighting"`
	IsCovered         bool            `json:"is_covered"`
	CreatedAt         time.Time       `json:"created_at"`
}

// SpotStatus is the single-letter status stored in parking_spots.status.
type SpotStatus string

const (
	SpotAvailable   SpotStatus = "A"
	SpotOccupied    SpotStatus = "O"
	SpotMaintenance SpotStatus = "M"
)

// Valid reports whether s is one of the known statuses.
func (s SpotStatus) Valid() bool {
	switch s {
	case SpotAvailable, SpotOccupied, SpotMaintenance:
		return true
	}
	return false
}

// ParkingSpot is a single cell of a lot's grid.  (LotID, Row, Col) is unique.
type ParkingSpot struct {
	ID          uint64     `json:"id"`
	LotID       uint64     `json:"lot_id"`
	SpotNumber  string     `json:"spot_number"` // label such as "A1" or "AA3"
	RowPosition int        `json:"row_position"`
	ColPosition int        `json:"col_position"`
	Status      SpotStatus `json:"status"`
}
