package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-reservation/internal/model"
)

func TestOccupancyRate(t *testing.T) {
	assert.Equal(t, 0.0, OccupancyRate(0, 0))
	assert.Equal(t, 0.0, OccupancyRate(3, 0))
	assert.Equal(t, 50.0, OccupancyRate(2, 4))
	assert.Equal(t, 100.0, OccupancyRate(5, 4))
	assert.Equal(t, 0.0, OccupancyRate(-1, 4))
}

func TestLayout(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	lot := fx.addLot(t, 2, 3, "10", 10)
	user := fx.addUser(t, "uma", "100")
	_, err := NewBookingService(fx.deps()).Book(ctx, user.ID, lot.ID)
	require.NoError(t, err)

	layout, err := NewReportService(fx.deps()).Layout(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, layout.Grid, 2)
	require.Len(t, layout.Grid[1], 3)
	assert.Equal(t, "A1", layout.Grid[0][0].Number)
	assert.Equal(t, model.SpotOccupied, layout.Grid[0][0].Status)
	assert.Equal(t, "B3", layout.Grid[1][2].Number)
	assert.InDelta(t, 100.0/6, layout.OccupancyRate, 1e-9)

	_, err = NewReportService(fx.deps()).Layout(ctx, 999)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestAdminDashboardAndAnalytics(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	lot := fx.addLot(t, 1, 2, "20", 10)
	a := fx.addUser(t, "vic", "100")
	b := fx.addUser(t, "wes", "100")
	booking := NewBookingService(fx.deps())

	first, err := booking.Book(ctx, a.ID, lot.ID)
	require.NoError(t, err)
	fx.advance(2 * time.Hour)
	_, err = booking.Release(ctx, a.ID, first.Reservation.ID)
	require.NoError(t, err)
	_, err = booking.Book(ctx, b.ID, lot.ID)
	require.NoError(t, err)
	fx.advance(30 * time.Minute)

	reports := NewReportService(fx.deps())
	dash, err := reports.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Len(t, dash.Lots, 1)
	assert.Equal(t, 1, dash.Lots[0].Available)
	assert.Equal(t, 1, dash.Lots[0].Occupied)
	cell := dash.Lots[0].Grid[0][0]
	require.NotNil(t, cell)
	assert.Equal(t, "wes", cell.Username)
	assert.InDelta(t, 0.5, cell.DurationHours, 1e-9)
	assert.Len(t, dash.Users, 2)
	assert.Equal(t, "40.00", dash.TotalRevenue.StringFixed(2))
	assert.Equal(t, 2, dash.TotalBookings)

	an, err := reports.Analytics(ctx)
	require.NoError(t, err)
	require.Len(t, an.PeakHours, 24)
	assert.Equal(t, 1, an.PeakHours[9].Bookings)
	assert.Equal(t, 1, an.PeakHours[11].Bookings)
	assert.Equal(t, 0, an.PeakHours[0].Bookings)
	require.Len(t, an.DailyRevenue, 1)
	assert.Equal(t, "2026-01-05", an.DailyRevenue[0].Date)
	require.Len(t, an.Occupancy, 1)
	assert.Equal(t, 50.0, an.Occupancy[0].OccupancyRate)
	assert.NotNil(t, an.RecentStats)
}

func TestUserDashboard(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	lot := fx.addLot(t, 1, 3, "10", 10)
	user := fx.addUser(t, "xena", "1000")
	booking := NewBookingService(fx.deps())

	for i := 0; i < 12; i++ {
		res, err := booking.Book(ctx, user.ID, lot.ID)
		require.NoError(t, err)
		fx.advance(time.Hour)
		_, err = booking.Release(ctx, user.ID, res.Reservation.ID)
		require.NoError(t, err)
	}
	_, err := booking.Book(ctx, user.ID, lot.ID)
	require.NoError(t, err)

	dash, err := NewReportService(fx.deps()).UserDashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, dash.Active, 1)
	assert.Len(t, dash.Past, 10)
	assert.Equal(t, "100.00", dash.TotalSpent.StringFixed(2))
	assert.InDelta(t, 10.0, dash.TotalHours, 1e-9)
	require.Len(t, dash.Lots, 1)
	assert.Equal(t, 2, dash.Lots[0].Available)
}
