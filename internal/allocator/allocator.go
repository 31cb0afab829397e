// Package allocator holds the pure grid logic of a parking lot: spot
// labels, the initial spot set of a new lot and resize plans.  Nothing in
// here touches the database.
package allocator

import (
	"errors"
	"sort"

	"github.com/iliyamo/parking-reservation/internal/model"
)

var (
	ErrLimitExceeded = errors.New("layout exceeds the lot's maximum parking limit")
	ErrSpotsInUse    = errors.New("cannot remove spots that are currently occupied")
	ErrInvalidLayout = errors.New("layout rows and columns must not be negative")
)

// Cell is a zero-based grid coordinate.
type Cell struct {
	Row int
	Col int
}

// Move relocates an existing spot to a new cell.
type Move struct {
	SpotID uint64
	Row    int
	Col    int
	Label  string
}

// Plan is the set of changes that turns the current spots of a lot into a
// rows x cols grid.  Apply Remove first, then Move, then Add.
type Plan struct {
	Remove []uint64
	Move   []Move
	Add    []model.ParkingSpot
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Remove) == 0 && len(p.Move) == 0 && len(p.Add) == 0
}

func checkLayout(rows, cols, limit int) error {
	if rows < 0 || cols < 0 {
		return ErrInvalidLayout
	}
	if rows*cols > limit {
		return ErrLimitExceeded
	}
	return nil
}

// InitialSpots returns rows*cols Available spots for lotID in row-major
// order.
func InitialSpots(lotID uint64, rows, cols, limit int) ([]model.ParkingSpot, error) {
	if err := checkLayout(rows, cols, limit); err != nil {
		return nil, err
	}
	spots := make([]model.ParkingSpot, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			spots = append(spots, newSpot(lotID, r, c))
		}
	}
	return spots, nil
}

// PlanResize computes how existing spots change when the lot becomes a
// rows x cols grid.  Shrinking drops the highest-id spots and fails with
// ErrSpotsInUse if any of them is occupied.  Spots still inside the grid
// keep their cell and label; spots that fall outside are moved to free
// cells, and new spots fill the remaining free cells, both in row-major
// order.
func PlanResize(lotID uint64, existing []model.ParkingSpot, rows, cols, limit int) (Plan, error) {
	if err := checkLayout(rows, cols, limit); err != nil {
		return Plan{}, err
	}
	newMax := rows * cols

	spots := make([]model.ParkingSpot, len(existing))
	copy(spots, existing)
	sort.Slice(spots, func(i, j int) bool { return spots[i].ID < spots[j].ID })

	var plan Plan
	survivors := spots
	if newMax < len(spots) {
		removed := spots[newMax:]
		for _, s := range removed {
			if s.Status == model.SpotOccupied {
				return Plan{}, ErrSpotsInUse
			}
		}
		for _, s := range removed {
			plan.Remove = append(plan.Remove, s.ID)
		}
		survivors = spots[:newMax]
	}

	taken := make(map[Cell]bool, len(survivors))
	var outside []model.ParkingSpot
	for _, s := range survivors {
		if s.RowPosition < rows && s.ColPosition < cols {
			taken[Cell{s.RowPosition, s.ColPosition}] = true
			continue
		}
		outside = append(outside, s)
	}

	free := freeCells(rows, cols, taken)
	for i, s := range outside {
		c := free[i]
		plan.Move = append(plan.Move, Move{SpotID: s.ID, Row: c.Row, Col: c.Col, Label: Label(c.Row, c.Col)})
	}
	for _, c := range free[len(outside):] {
		plan.Add = append(plan.Add, newSpot(lotID, c.Row, c.Col))
	}
	return plan, nil
}

func freeCells(rows, cols int, taken map[Cell]bool) []Cell {
	var out []Cell
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !taken[Cell{r, c}] {
				out = append(out, Cell{r, c})
			}
		}
	}
	return out
}

func newSpot(lotID uint64, row, col int) model.ParkingSpot {
	return model.ParkingSpot{
		LotID:       lotID,
		SpotNumber:  Label(row, col),
		RowPosition: row,
		ColPosition: col,
		Status:      model.SpotAvailable,
	}
}
