package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

// fakeStore is an in-memory Store.  InTx snapshots every table and
// restores the snapshot when fn fails.
type fakeStore struct {
	data fakeData
}

type fakeData struct {
	nextID   uint64
	users    map[uint64]model.User
	tokens   map[string]model.RefreshToken
	lots     map[uint64]model.ParkingLot
	spots    map[uint64]model.ParkingSpot
	resvs    map[uint64]model.Reservation
	payments map[uint64]model.Payment
	txs      map[uint64]model.Transaction
	stats    []model.SystemStats
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: fakeData{
		users:    map[uint64]model.User{},
		tokens:   map[string]model.RefreshToken{},
		lots:     map[uint64]model.ParkingLot{},
		spots:    map[uint64]model.ParkingSpot{},
		resvs:    map[uint64]model.Reservation{},
		payments: map[uint64]model.Payment{},
		txs:      map[uint64]model.Transaction{},
	}}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d fakeData) clone() fakeData {
	return fakeData{
		nextID:   d.nextID,
		users:    cloneMap(d.users),
		tokens:   cloneMap(d.tokens),
		lots:     cloneMap(d.lots),
		spots:    cloneMap(d.spots),
		resvs:    cloneMap(d.resvs),
		payments: cloneMap(d.payments),
		txs:      cloneMap(d.txs),
		stats:    append([]model.SystemStats(nil), d.stats...),
	}
}

func (f *fakeStore) InTx(ctx context.Context, fn func(Repo) error) error {
	snap := f.data.clone()
	if err := fn(f); err != nil {
		f.data = snap
		return err
	}
	return nil
}

func (f *fakeStore) id() uint64 {
	f.data.nextID++
	return f.data.nextID
}

// ----- users -----

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	for _, x := range f.data.users {
		if x.Username == u.Username {
			return repository.ErrUsernameExists
		}
		if x.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = f.id()
	f.data.users[u.ID] = *u
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := f.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	return f.GetUserByID(ctx, id)
}

func (f *fakeStore) UpdateUserBalance(_ context.Context, id uint64, balance decimal.Decimal) error {
	u := f.data.users[id]
	u.Balance = balance
	f.data.users[id] = u
	return nil
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, u *model.User) error {
	for _, x := range f.data.users {
		if x.ID == u.ID {
			continue
		}
		if x.Username == u.Username {
			return repository.ErrUsernameExists
		}
		if x.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	f.data.users[u.ID] = *u
	return nil
}

func (f *fakeStore) UpdateUserPassword(_ context.Context, id uint64, hash string) error {
	u := f.data.users[id]
	u.PasswordHash = hash
	f.data.users[id] = u
	return nil
}

func (f *fakeStore) ListUsersByRole(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range f.data.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- tokens -----

func (f *fakeStore) StoreRefreshToken(_ context.Context, userID uint64, hash string, exp time.Time) error {
	f.data.tokens[hash] = model.RefreshToken{ID: f.id(), UserID: userID, TokenHash: hash, ExpiresAt: exp}
	return nil
}

func (f *fakeStore) GetRefreshToken(_ context.Context, hash string) (*model.RefreshToken, error) {
	t, ok := f.data.tokens[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) RevokeRefreshToken(_ context.Context, hash string) error {
	if t, ok := f.data.tokens[hash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
		f.data.tokens[hash] = t
	}
	return nil
}

func (f *fakeStore) RevokeAllRefreshTokens(ctx context.Context, userID uint64) error {
	for h, t := range f.data.tokens {
		if t.UserID == userID {
			_ = f.RevokeRefreshToken(ctx, h)
		}
	}
	return nil
}

// ----- lots and spots -----

func (f *fakeStore) CreateLot(_ context.Context, l *model.ParkingLot) error {
	l.ID = f.id()
	f.data.lots[l.ID] = *l
	return nil
}

func (f *fakeStore) GetLot(_ context.Context, id uint64) (*model.ParkingLot, error) {
	l, ok := f.data.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (f *fakeStore) LockLot(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return f.GetLot(ctx, id)
}

func (f *fakeStore) ListLots(_ context.Context) ([]model.ParkingLot, error) {
	var out []model.ParkingLot
	for _, l := range f.data.lots {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateLot(_ context.Context, l *model.ParkingLot) error {
	f.data.lots[l.ID] = *l
	return nil
}

func (f *fakeStore) DeleteLot(_ context.Context, id uint64) error {
	if _, ok := f.data.lots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.data.lots, id)
	for sid, s := range f.data.spots {
		if s.LotID == id {
			delete(f.data.spots, sid)
		}
	}
	for rid, r := range f.data.resvs {
		if r.LotID == id {
			r.LotID, r.SpotID = 0, 0
			f.data.resvs[rid] = r
		}
	}
	return nil
}

func (f *fakeStore) CreateSpots(_ context.Context, spots []model.ParkingSpot) error {
	for _, s := range spots {
		for _, x := range f.data.spots {
			if x.LotID == s.LotID && x.RowPosition == s.RowPosition && x.ColPosition == s.ColPosition {
				return repository.ErrConflict
			}
		}
		s.ID = f.id()
		f.data.spots[s.ID] = s
	}
	return nil
}

func (f *fakeStore) GetSpot(_ context.Context, id uint64) (*model.ParkingSpot, error) {
	s, ok := f.data.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *fakeStore) LockSpot(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	return f.GetSpot(ctx, id)
}

func (f *fakeStore) ListSpotsByLot(_ context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	var out []model.ParkingSpot
	for _, s := range f.data.spots {
		if s.LotID == lotID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindAvailableSpot(ctx context.Context, lotID uint64) (*model.ParkingSpot, error) {
	spots, _ := f.ListSpotsByLot(ctx, lotID)
	for _, s := range spots {
		if s.Status == model.SpotAvailable {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) TransitionSpot(_ context.Context, id uint64, from, to model.SpotStatus) error {
	s, ok := f.data.spots[id]
	if !ok || s.Status != from {
		return repository.ErrConflict
	}
	s.Status = to
	f.data.spots[id] = s
	return nil
}

func (f *fakeStore) SetSpotStatus(_ context.Context, id uint64, status model.SpotStatus) error {
	s := f.data.spots[id]
	s.Status = status
	f.data.spots[id] = s
	return nil
}

func (f *fakeStore) MoveSpot(_ context.Context, id uint64, row, col int, label string) error {
	s := f.data.spots[id]
	s.RowPosition, s.ColPosition, s.SpotNumber = row, col, label
	f.data.spots[id] = s
	return nil
}

func (f *fakeStore) DeleteSpots(_ context.Context, ids []uint64) error {
	for _, id := range ids {
		delete(f.data.spots, id)
		for rid, r := range f.data.resvs {
			if r.SpotID == id {
				r.SpotID = 0
				f.data.resvs[rid] = r
			}
		}
	}
	return nil
}

// ----- reservations -----

func (f *fakeStore) CreateReservation(_ context.Context, r *model.Reservation) error {
	for _, x := range f.data.resvs {
		if !x.Open() {
			continue
		}
		if x.UserID == r.UserID {
			return repository.ErrOpenReservationExists
		}
		if x.SpotID == r.SpotID {
			return repository.ErrSpotTaken
		}
	}
	r.ID = f.id()
	f.data.resvs[r.ID] = *r
	return nil
}

func (f *fakeStore) GetReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := f.data.resvs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *fakeStore) LockReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return f.GetReservation(ctx, id)
}

func (f *fakeStore) GetOpenReservation(_ context.Context, userID uint64) (*model.Reservation, error) {
	for _, r := range f.data.resvs {
		if r.UserID == userID && r.Open() {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CountPendingPayments(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, r := range f.data.resvs {
		if r.UserID == userID && r.Status == model.ReservationPendingPayment {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CloseReservation(_ context.Context, r *model.Reservation) error {
	cur, ok := f.data.resvs[r.ID]
	if !ok || !cur.Open() {
		return repository.ErrConflict
	}
	cur.EndTime, cur.Cost, cur.Status = r.EndTime, r.Cost, r.Status
	f.data.resvs[r.ID] = cur
	return nil
}

func (f *fakeStore) SetReservationStatus(_ context.Context, id uint64, status model.ReservationStatus) error {
	r := f.data.resvs[id]
	r.Status = status
	f.data.resvs[id] = r
	return nil
}

func (f *fakeStore) ListReservationsByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.data.resvs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) CountReservations(_ context.Context) (int, error) {
	return len(f.data.resvs), nil
}

// ----- ledger -----

func (f *fakeStore) CreatePayment(_ context.Context, p *model.Payment) error {
	p.ID = f.id()
	f.data.payments[p.ID] = *p
	return nil
}

func (f *fakeStore) GetPendingPayment(_ context.Context, reservationID uint64) (*model.Payment, error) {
	for _, p := range f.data.payments {
		if p.ReservationID == reservationID && p.Status == model.PaymentPending {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CompletePayment(_ context.Context, id uint64, at time.Time) error {
	p, ok := f.data.payments[id]
	if !ok || p.Status != model.PaymentPending {
		return repository.ErrNotFound
	}
	p.Status = model.PaymentCompleted
	p.CompletedAt = &at
	f.data.payments[id] = p
	return nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t *model.Transaction) error {
	for _, x := range f.data.txs {
		if x.ReferenceID == t.ReferenceID {
			return repository.ErrDuplicateReference
		}
	}
	t.ID = f.id()
	f.data.txs[t.ID] = *t
	return nil
}

func (f *fakeStore) ListTransactionsByUser(_ context.Context, userID uint64) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, t := range f.data.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ----- reports -----

func (f *fakeStore) completedPayments() []model.Payment {
	var out []model.Payment
	for _, p := range f.data.payments {
		if p.Status == model.PaymentCompleted {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeStore) TotalRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range f.completedPayments() {
		total = total.Add(p.Amount)
	}
	return total, nil
}

func (f *fakeStore) DailyRevenue(_ context.Context, since time.Time) ([]model.DailyRevenue, error) {
	byDay := map[string]decimal.Decimal{}
	for _, p := range f.completedPayments() {
		if p.CompletedAt == nil || p.CompletedAt.Before(since) {
			continue
		}
		day := p.CompletedAt.UTC().Format(time.DateOnly)
		byDay[day] = byDay[day].Add(p.Amount)
	}
	var out []model.DailyRevenue
	for day, rev := range byDay {
		out = append(out, model.DailyRevenue{Date: day, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeStore) BookingsByHour(_ context.Context) (map[int]int, error) {
	out := map[int]int{}
	for _, r := range f.data.resvs {
		out[r.StartTime.UTC().Hour()]++
	}
	return out, nil
}

func (f *fakeStore) OccupiedCounts(_ context.Context) (map[uint64]int, error) {
	out := map[uint64]int{}
	for _, s := range f.data.spots {
		if s.Status == model.SpotOccupied {
			out[s.LotID]++
		}
	}
	return out, nil
}

func (f *fakeStore) OpenOccupants(_ context.Context, lotID uint64) ([]model.Occupant, error) {
	var out []model.Occupant
	for _, r := range f.data.resvs {
		if r.LotID != lotID || !r.Open() || r.SpotID == 0 {
			continue
		}
		u := f.data.users[r.UserID]
		out = append(out, model.Occupant{
			ReservationID: r.ID,
			SpotID:        r.SpotID,
			UserID:        r.UserID,
			Username:      u.Username,
			VehicleNumber: r.VehicleNumber,
			VehicleType:   u.VehicleType,
			StartTime:     r.StartTime,
		})
	}
	return out, nil
}

func (f *fakeStore) RecentSystemStats(_ context.Context, limit int) ([]model.SystemStats, error) {
	out := append([]model.SystemStats(nil), f.data.stats...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
