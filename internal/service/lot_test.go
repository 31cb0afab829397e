package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-reservation/internal/model"
)

func lotInput(rows, cols, limit *int) LotInput {
	return LotInput{
		PrimeLocationName: "Harbour",
		Address:           "2 Dock Rd",
		PinCode:           "400001",
		PricePerHour:      dec("15"),
		LayoutRows:        rows,
		LayoutCols:        cols,
		MaxParkingLimit:   limit,
		HasLighting:       true,
	}
}

func TestCreateLotDefaults(t *testing.T) {
	fx := newFixture()
	lot, err := NewLotService(fx.deps()).CreateLot(context.Background(), lotInput(nil, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLayoutRows, lot.LayoutRows)
	assert.Equal(t, model.DefaultLayoutCols, lot.LayoutCols)
	assert.Equal(t, model.DefaultMaxParkingLimit, lot.MaxParkingLimit)
	assert.Equal(t, 20, lot.MaxSpots)
	assert.Len(t, fx.spotStatuses(t, lot.ID), 20)
}

func TestCreateLotValidation(t *testing.T) {
	fx := newFixture()
	svc := NewLotService(fx.deps())
	ctx := context.Background()

	_, err := svc.CreateLot(ctx, lotInput(intp(5), intp(5), intp(20)))
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.EqualError(t, err, "layout exceeds the lot's maximum parking limit: Current layout (25 spots) exceeds maximum parking limit (20)!")

	in := lotInput(nil, nil, nil)
	in.Address = " "
	_, err = svc.CreateLot(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = lotInput(nil, nil, nil)
	in.PricePerHour = dec("0")
	_, err = svc.CreateLot(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateLot(ctx, lotInput(intp(-1), nil, nil))
	assert.ErrorIs(t, err, ErrInvalidLayout)
	assert.Empty(t, fx.store.data.lots)
}

func TestUpdateLotResize(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	svc := NewLotService(fx.deps())
	lot := fx.addLot(t, 2, 2, "20", 10)

	grown, err := svc.UpdateLot(ctx, lot.ID, lotInput(intp(2), intp(3), nil))
	require.NoError(t, err)
	assert.Equal(t, 6, grown.MaxSpots)
	assert.Equal(t, "Harbour", grown.PrimeLocationName)
	assert.True(t, grown.HasLighting)
	assert.Len(t, fx.spotStatuses(t, lot.ID), 6)
	assert.Contains(t, fx.spotStatuses(t, lot.ID), "B3")

	shrunk, err := svc.UpdateLot(ctx, lot.ID, lotInput(intp(1), intp(3), nil))
	require.NoError(t, err)
	assert.Equal(t, 3, shrunk.MaxSpots)
	spots, err := fx.store.ListSpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 3)
	cells := map[[2]int]bool{}
	for _, s := range spots {
		assert.Less(t, s.RowPosition, 1)
		assert.Less(t, s.ColPosition, 3)
		cells[[2]int{s.RowPosition, s.ColPosition}] = true
	}
	assert.Len(t, cells, 3)

	_, err = svc.UpdateLot(ctx, lot.ID, lotInput(intp(4), intp(4), nil))
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Contains(t, err.Error(), "Cannot set 16 spots as it exceeds maximum parking limit (10)!")
}

func TestUpdateLotShrinkBlockedByOccupiedSpot(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	lot := fx.addLot(t, 2, 2, "20", 10)
	user := fx.addUser(t, "max", "100")
	booking := NewBookingService(fx.deps())
	svc := NewLotService(fx.deps())

	spots, err := fx.store.ListSpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	for _, s := range spots[:3] {
		require.NoError(t, fx.store.SetSpotStatus(ctx, s.ID, model.SpotMaintenance))
	}
	_, err = booking.Book(ctx, user.ID, lot.ID)
	require.NoError(t, err)
	before := fx.store.data.clone()

	_, err = svc.UpdateLot(ctx, lot.ID, lotInput(intp(1), intp(2), nil))
	assert.ErrorIs(t, err, ErrSpotsInUse)
	assert.Equal(t, before.spots, fx.store.data.spots)
	assert.Equal(t, before.lots, fx.store.data.lots)
}

func TestDeleteLot(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	lot := fx.addLot(t, 1, 2, "20", 10)
	user := fx.addUser(t, "ned", "100")
	svc := NewLotService(fx.deps())
	booking := NewBookingService(fx.deps())

	booked, err := booking.Book(ctx, user.ID, lot.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteLot(ctx, lot.ID), ErrSpotsInUse)

	_, err = booking.Release(ctx, user.ID, booked.Reservation.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteLot(ctx, lot.ID))
	assert.Empty(t, fx.spotStatuses(t, lot.ID))

	resv, err := fx.store.GetReservation(ctx, booked.Reservation.ID)
	require.NoError(t, err)
	assert.Zero(t, resv.LotID)
	assert.Zero(t, resv.SpotID)

	assert.ErrorIs(t, svc.DeleteLot(ctx, lot.ID), ErrLotNotFound)
}

func TestSetSpotStatus(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	lot := fx.addLot(t, 1, 1, "20", 10)
	user := fx.addUser(t, "olga", "100")
	svc := NewLotService(fx.deps())

	spots, err := fx.store.ListSpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	id := spots[0].ID

	_, err = svc.SetSpotStatus(ctx, id, model.SpotOccupied)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetSpotStatus(ctx, id+100, model.SpotMaintenance)
	assert.ErrorIs(t, err, ErrSpotNotFound)

	spot, err := svc.SetSpotStatus(ctx, id, model.SpotMaintenance)
	require.NoError(t, err)
	assert.Equal(t, model.SpotMaintenance, spot.Status)

	_, err = NewBookingService(fx.deps()).Book(ctx, user.ID, lot.ID)
	assert.ErrorIs(t, err, ErrNoAvailableSpot)

	_, err = svc.SetSpotStatus(ctx, id, model.SpotAvailable)
	require.NoError(t, err)
	_, err = NewBookingService(fx.deps()).Book(ctx, user.ID, lot.ID)
	require.NoError(t, err)
	_, err = svc.SetSpotStatus(ctx, id, model.SpotMaintenance)
	assert.ErrorIs(t, err, ErrSpotsInUse)
}
