package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// The fakes record their inputs and return whatever the test set up.

type fakeAccounts struct {
	registered service.RegisterInput
	profileIn  service.ProfileInput
	passwords  [3]string
	loggedOut  uint64
	user       *model.User
	session    *service.Session
	err        error
}

func (f *fakeAccounts) Register(_ context.Context, in service.RegisterInput) (*model.User, error) {
	f.registered = in
	return f.user, f.err
}

func (f *fakeAccounts) Login(context.Context, string, string) (*service.Session, error) {
	return f.session, f.err
}

func (f *fakeAccounts) Refresh(context.Context, string) (*service.Session, error) {
	return f.session, f.err
}

func (f *fakeAccounts) Logout(_ context.Context, userID uint64) error {
	f.loggedOut = userID
	return f.err
}

func (f *fakeAccounts) Profile(context.Context, uint64) (*model.User, error) { return f.user, f.err }

func (f *fakeAccounts) EditProfile(_ context.Context, _ uint64, in service.ProfileInput) (*model.User, error) {
	f.profileIn = in
	return f.user, f.err
}

func (f *fakeAccounts) ChangePassword(_ context.Context, _ uint64, oldPw, newPw, confirm string) error {
	f.passwords = [3]string{oldPw, newPw, confirm}
	return f.err
}

type fakeLots struct {
	in     service.LotInput
	lotID  uint64
	status model.SpotStatus
	lot    *model.ParkingLot
	spot   *model.ParkingSpot
	err    error
}

func (f *fakeLots) CreateLot(_ context.Context, in service.LotInput) (*model.ParkingLot, error) {
	f.in = in
	return f.lot, f.err
}

func (f *fakeLots) UpdateLot(_ context.Context, lotID uint64, in service.LotInput) (*model.ParkingLot, error) {
	f.lotID, f.in = lotID, in
	return f.lot, f.err
}

func (f *fakeLots) DeleteLot(_ context.Context, lotID uint64) error {
	f.lotID = lotID
	return f.err
}

func (f *fakeLots) SetSpotStatus(_ context.Context, _ uint64, status model.SpotStatus) (*model.ParkingSpot, error) {
	f.status = status
	return f.spot, f.err
}

type fakeBookings struct {
	userID, targetID uint64
	book             *service.BookResult
	release          *service.ReleaseResult
	err              error
}

func (f *fakeBookings) Book(_ context.Context, userID, lotID uint64) (*service.BookResult, error) {
	f.userID, f.targetID = userID, lotID
	return f.book, f.err
}

func (f *fakeBookings) Release(_ context.Context, userID, reservationID uint64) (*service.ReleaseResult, error) {
	f.userID, f.targetID = userID, reservationID
	return f.release, f.err
}

func (f *fakeBookings) SettlePending(_ context.Context, userID, reservationID uint64) (*service.ReleaseResult, error) {
	f.userID, f.targetID = userID, reservationID
	return f.release, f.err
}

type fakeWallet struct {
	amount  decimal.Decimal
	method  string
	balance decimal.Decimal
	err     error
}

func (f *fakeWallet) Credit(_ context.Context, _ uint64, amount decimal.Decimal, method string) (*model.Transaction, decimal.Decimal, error) {
	f.amount, f.method = amount, method
	if f.err != nil {
		return nil, decimal.Zero, f.err
	}
	return &model.Transaction{Amount: amount, Type: model.TransactionCredit}, f.balance.Add(amount), nil
}

func (f *fakeWallet) Withdraw(_ context.Context, _ uint64, amount decimal.Decimal, bank string) (*model.Transaction, decimal.Decimal, error) {
	f.amount, f.method = amount, bank
	if f.err != nil {
		return nil, decimal.Zero, f.err
	}
	return &model.Transaction{Amount: amount, Type: model.TransactionDebit}, f.balance.Sub(amount), nil
}

func (f *fakeWallet) Balance(context.Context, uint64) (decimal.Decimal, error) { return f.balance, f.err }

func (f *fakeWallet) Summary(context.Context, uint64) (*service.WalletSummary, error) {
	return &service.WalletSummary{Balance: f.balance}, f.err
}

type fakeReports struct {
	layout *service.LotLayout
	err    error
}

func (f *fakeReports) Layout(context.Context, uint64) (*service.LotLayout, error) { return f.layout, f.err }

func (f *fakeReports) AdminDashboard(context.Context) (*service.AdminDashboard, error) {
	return &service.AdminDashboard{}, f.err
}

func (f *fakeReports) Analytics(context.Context) (*service.Analytics, error) {
	return &service.Analytics{}, f.err
}

func (f *fakeReports) UserDashboard(context.Context, uint64) (*service.UserDashboard, error) {
	return &service.UserDashboard{}, f.err
}
