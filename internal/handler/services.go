package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// The handlers depend on these narrow views of the service layer.

type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Refresh(ctx context.Context, raw string) (*service.Session, error)
	Logout(ctx context.Context, userID uint64) error
	Profile(ctx context.Context, userID uint64) (*model.User, error)
	EditProfile(ctx context.Context, userID uint64, in service.ProfileInput) (*model.User, error)
	ChangePassword(ctx context.Context, userID uint64, oldPw, newPw, confirm string) error
}

type Lots interface {
	CreateLot(ctx context.Context, in service.LotInput) (*model.ParkingLot, error)
	UpdateLot(ctx context.Context, lotID uint64, in service.LotInput) (*model.ParkingLot, error)
	DeleteLot(ctx context.Context, lotID uint64) error
	SetSpotStatus(ctx context.Context, spotID uint64, status model.SpotStatus) (*model.ParkingSpot, error)
}

type Bookings interface {
	Book(ctx context.Context, userID, lotID uint64) (*service.BookResult, error)
	Release(ctx context.Context, userID, reservationID uint64) (*service.ReleaseResult, error)
	SettlePending(ctx context.Context, userID, reservationID uint64) (*service.ReleaseResult, error)
}

type Wallet interface {
	Credit(ctx context.Context, userID uint64, amount decimal.Decimal, method string) (*model.Transaction, decimal.Decimal, error)
	Withdraw(ctx context.Context, userID uint64, amount decimal.Decimal, bankAccount string) (*model.Transaction, decimal.Decimal, error)
	Balance(ctx context.Context, userID uint64) (decimal.Decimal, error)
	Summary(ctx context.Context, userID uint64) (*service.WalletSummary, error)
}

type Reports interface {
	Layout(ctx context.Context, lotID uint64) (*service.LotLayout, error)
	AdminDashboard(ctx context.Context) (*service.AdminDashboard, error)
	Analytics(ctx context.Context) (*service.Analytics, error)
	UserDashboard(ctx context.Context, userID uint64) (*service.UserDashboard, error)
}
