package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-reservation/internal/model"
)

func TestLabel(t *testing.T) {
	cases := []struct {
		row, col int
		want     string
	}{
		{0, 0, "A1"},
		{1, 1, "B2"},
		{25, 4, "Z5"},
		{26, 0, "AA1"},
		{27, 9, "AB10"},
		{701, 0, "ZZ1"},
		{702, 0, "AAA1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Label(tc.row, tc.col))
	}
	assert.Equal(t, "", RowLabel(-1))
}

func TestLabelIsInjective(t *testing.T) {
	seen := map[string]Cell{}
	for r := 0; r < 60; r++ {
		for c := 0; c < 30; c++ {
			l := Label(r, c)
			prev, dup := seen[l]
			require.Falsef(t, dup, "label %s produced by %v and %v", l, prev, Cell{r, c})
			seen[l] = Cell{r, c}
		}
	}
}

func TestInitialSpots(t *testing.T) {
	spots, err := InitialSpots(7, 2, 2, 10)
	require.NoError(t, err)
	require.Len(t, spots, 4)

	labels := make([]string, 0, len(spots))
	for _, s := range spots {
		assert.Equal(t, uint64(7), s.LotID)
		assert.Equal(t, model.SpotAvailable, s.Status)
		labels = append(labels, s.SpotNumber)
	}
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, labels)
}

func TestInitialSpotsLimits(t *testing.T) {
	_, err := InitialSpots(1, 3, 4, 10)
	assert.ErrorIs(t, err, ErrLimitExceeded)

	_, err = InitialSpots(1, -1, 4, 10)
	assert.ErrorIs(t, err, ErrInvalidLayout)

	spots, err := InitialSpots(1, 0, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, spots)
}

// grid builds persisted-looking spots with ids 1..rows*cols.
func grid(rows, cols int) []model.ParkingSpot {
	spots, _ := InitialSpots(1, rows, cols, rows*cols)
	for i := range spots {
		spots[i].ID = uint64(i + 1)
	}
	return spots
}

func TestPlanResizeGrowKeepsExistingCells(t *testing.T) {
	plan, err := PlanResize(1, grid(2, 2), 2, 3, 10)
	require.NoError(t, err)

	assert.Empty(t, plan.Remove)
	assert.Empty(t, plan.Move)
	require.Len(t, plan.Add, 2)
	assert.Equal(t, "A3", plan.Add[0].SpotNumber)
	assert.Equal(t, "B3", plan.Add[1].SpotNumber)
}

func TestPlanResizeGrowRows(t *testing.T) {
	plan, err := PlanResize(1, grid(2, 2), 3, 2, 10)
	require.NoError(t, err)
	require.Len(t, plan.Add, 2)
	assert.Equal(t, "C1", plan.Add[0].SpotNumber)
	assert.Equal(t, "C2", plan.Add[1].SpotNumber)
}

func TestPlanResizeShrinkRemovesHighestIDs(t *testing.T) {
	plan, err := PlanResize(1, grid(2, 3), 2, 2, 10)
	require.NoError(t, err)

	// ids 5,6 are B2,B3; survivors 1..4 are A1,A2,A3,B1
	assert.Equal(t, []uint64{5, 6}, plan.Remove)
	require.Len(t, plan.Move, 1)
	assert.Equal(t, Move{SpotID: 3, Row: 1, Col: 1, Label: "B2"}, plan.Move[0])
	assert.Empty(t, plan.Add)
}

func TestPlanResizeShrinkFailsWhenOccupied(t *testing.T) {
	spots := grid(2, 2)
	spots[3].Status = model.SpotOccupied

	plan, err := PlanResize(1, spots, 1, 2, 10)
	assert.ErrorIs(t, err, ErrSpotsInUse)
	assert.True(t, plan.Empty())
}

func TestPlanResizeIgnoresOccupiedSurvivors(t *testing.T) {
	spots := grid(2, 2)
	spots[0].Status = model.SpotOccupied

	plan, err := PlanResize(1, spots, 1, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, plan.Remove)
	assert.Empty(t, plan.Move)
}

func TestPlanResizeLimit(t *testing.T) {
	_, err := PlanResize(1, grid(2, 2), 4, 4, 10)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestPlanResizeSameShapeIsEmpty(t *testing.T) {
	plan, err := PlanResize(1, grid(3, 3), 3, 3, 9)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestPlanResizeCellsStayUnique(t *testing.T) {
	plan, err := PlanResize(1, grid(3, 4), 4, 3, 20)
	require.NoError(t, err)

	cells := map[Cell]bool{}
	for _, s := range grid(3, 4) {
		moved := false
		for _, m := range plan.Move {
			if m.SpotID == s.ID {
				moved = true
			}
		}
		if !moved {
			cells[Cell{s.RowPosition, s.ColPosition}] = true
		}
	}
	for _, m := range plan.Move {
		require.False(t, cells[Cell{m.Row, m.Col}])
		cells[Cell{m.Row, m.Col}] = true
	}
	for _, a := range plan.Add {
		require.False(t, cells[Cell{a.RowPosition, a.ColPosition}])
		cells[Cell{a.RowPosition, a.ColPosition}] = true
	}
	assert.Len(t, cells, 12)
	for c := range cells {
		assert.Less(t, c.Row, 4)
		assert.Less(t, c.Col, 3)
	}
}
