package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store  *fakeStore
	events *recordingPublisher
	now    time.Time
}

func newFixture() *fixture {
	return &fixture{
		store:  newFakeStore(),
		events: &recordingPublisher{},
		now:    time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}
}

func (fx *fixture) deps() Deps {
	return Deps{Store: fx.store, Events: fx.events, Now: func() time.Time { return fx.now }}
}

func (fx *fixture) advance(d time.Duration) { fx.now = fx.now.Add(d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intp(v int) *int { return &v }

func (fx *fixture) addUser(t *testing.T, name, balance string) *model.User {
	t.Helper()
	u := &model.User{
		Username:      name,
		Email:         name + "@example.com",
		Role:          model.RoleUser,
		Balance:       dec(balance),
		VehicleNumber: "KA01" + name,
		VehicleType:   model.DefaultVehicleType,
	}
	require.NoError(t, fx.store.CreateUser(context.Background(), u))
	return u
}

func (fx *fixture) addLot(t *testing.T, rows, cols int, price string, limit int) *model.ParkingLot {
	t.Helper()
	lot, err := NewLotService(fx.deps()).CreateLot(context.Background(), LotInput{
		PrimeLocationName: "Central",
		Address:           "1 Main St",
		PinCode:           "560001",
		PricePerHour:      dec(price),
		LayoutRows:        intp(rows),
		LayoutCols:        intp(cols),
		MaxParkingLimit:   intp(limit),
	})
	require.NoError(t, err)
	return lot
}

func (fx *fixture) balance(t *testing.T, userID uint64) decimal.Decimal {
	t.Helper()
	u, err := fx.store.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	return u.Balance
}

func (fx *fixture) spotStatuses(t *testing.T, lotID uint64) map[string]model.SpotStatus {
	t.Helper()
	spots, err := fx.store.ListSpotsByLot(context.Background(), lotID)
	require.NoError(t, err)
	out := map[string]model.SpotStatus{}
	for _, s := range spots {
		out[s.SpotNumber] = s.Status
	}
	return out
}
