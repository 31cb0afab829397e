package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

// UserRepo covers the users table.
type UserRepo interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id uint64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	LockUser(ctx context.Context, id uint64) (*model.User, error)
	UpdateUserBalance(ctx context.Context, id uint64, balance decimal.Decimal) error
	UpdateUserProfile(ctx context.Context, u *model.User) error
	UpdateUserPassword(ctx context.Context, id uint64, hash string) error
	ListUsersByRole(ctx context.Context, role string) ([]model.User, error)
}

// TokenRepo covers refresh tokens.
type TokenRepo interface {
	StoreRefreshToken(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uint64) error
}

// LotRepo covers parking lots and their spots.
type LotRepo interface {
	CreateLot(ctx context.Context, l *model.ParkingLot) error
	GetLot(ctx context.Context, id uint64) (*model.ParkingLot, error)
	LockLot(ctx context.Context, id uint64) (*model.ParkingLot, error)
	ListLots(ctx context.Context) ([]model.ParkingLot, error)
	UpdateLot(ctx context.Context, l *model.ParkingLot) error
	DeleteLot(ctx context.Context, id uint64) error

	CreateSpots(ctx context.Context, spots []model.ParkingSpot) error
	GetSpot(ctx context.Context, id uint64) (*model.ParkingSpot, error)
	LockSpot(ctx context.Context, id uint64) (*model.ParkingSpot, error)
	ListSpotsByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error)
	FindAvailableSpot(ctx context.Context, lotID uint64) (*model.ParkingSpot, error)
	TransitionSpot(ctx context.Context, id uint64, from, to model.SpotStatus) error
	SetSpotStatus(ctx context.Context, id uint64, status model.SpotStatus) error
	MoveSpot(ctx context.Context, id uint64, row, col int, label string) error
	DeleteSpots(ctx context.Context, ids []uint64) error
}

// ReservationRepo covers reservations.
type ReservationRepo interface {
	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	LockReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	GetOpenReservation(ctx context.Context, userID uint64) (*model.Reservation, error)
	CountPendingPayments(ctx context.Context, userID uint64) (int, error)
	CloseReservation(ctx context.Context, r *model.Reservation) error
	SetReservationStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
	ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	CountReservations(ctx context.Context) (int, error)
}

// LedgerRepo covers payments and wallet transactions.
type LedgerRepo interface {
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPendingPayment(ctx context.Context, reservationID uint64) (*model.Payment, error)
	CompletePayment(ctx context.Context, id uint64, at time.Time) error
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	ListTransactionsByUser(ctx context.Context, userID uint64) ([]model.Transaction, error)
}

// ReportRepo covers the aggregate queries behind dashboards and analytics.
type ReportRepo interface {
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	DailyRevenue(ctx context.Context, since time.Time) ([]model.DailyRevenue, error)
	BookingsByHour(ctx context.Context) (map[int]int, error)
	OccupiedCounts(ctx context.Context) (map[uint64]int, error)
	OpenOccupants(ctx context.Context, lotID uint64) ([]model.Occupant, error)
	RecentSystemStats(ctx context.Context, limit int) ([]model.SystemStats, error)
}

// Repo is everything the services read and write.
type Repo interface {
	UserRepo
	TokenRepo
	LotRepo
	ReservationRepo
	LedgerRepo
	ReportRepo
}

// Store gives access to a Repo outside of a transaction and runs units of
// work inside one.  The transaction is rolled back when fn returns an
// error.
type Store interface {
	Repo
	InTx(ctx context.Context, fn func(Repo) error) error
}

type sqlStore struct {
	*repository.Store
}

// NewSQLStore adapts the MySQL repository to Store.
func NewSQLStore(s *repository.Store) Store {
	return sqlStore{Store: s}
}

func (s sqlStore) InTx(ctx context.Context, fn func(Repo) error) error {
	return s.Store.InTx(ctx, func(q *repository.Queries) error { return fn(q) })
}
