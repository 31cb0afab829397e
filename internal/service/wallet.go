package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/utils"
)

// Wallet limits.
var (
	MinCredit   = decimal.NewFromInt(10)
	MaxCredit   = decimal.NewFromInt(10000)
	MinWithdraw = decimal.NewFromInt(50)
)

// ParseAmount parses a positive money amount with at most two decimal
// places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() || !d.Equal(d.Round(2)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// WalletSummary is the wallet page: balance plus ledger totals.
type WalletSummary struct {
	Balance      decimal.Decimal     `json:"balance"`
	Transactions []model.Transaction `json:"transactions"`
	TotalAdded   decimal.Decimal     `json:"total_added"`
	TotalSpent   decimal.Decimal     `json:"total_spent"`
}

// WalletService moves money in and out of user wallets.
type WalletService struct {
	base
}

func NewWalletService(d Deps) *WalletService {
	return &WalletService{base: newBase(d)}
}

// Credit adds amount to the wallet through an external payment method.
func (s *WalletService) Credit(ctx context.Context, userID uint64, amount decimal.Decimal, method string) (*model.Transaction, decimal.Decimal, error) {
	method = strings.TrimSpace(method)
	switch {
	case amount.LessThan(MinCredit):
		return s.rejected("credit", fmt.Errorf("%w: Minimum amount to add is ₹10", ErrBelowMinimum))
	case amount.GreaterThan(MaxCredit):
		return s.rejected("credit", fmt.Errorf("%w: Maximum amount to add is ₹10,000", ErrAboveMaximum))
	case method == "":
		return s.rejected("credit", ErrMissingMethod)
	}

	var (
		tx      *model.Transaction
		balance decimal.Decimal
	)
	err := s.store.InTx(ctx, func(r Repo) error {
		u, err := r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		balance = u.Balance.Add(amount)
		if err := r.UpdateUserBalance(ctx, userID, balance); err != nil {
			return err
		}
		now := s.now()
		tx = &model.Transaction{
			UserID:        userID,
			Amount:        amount,
			Type:          model.TransactionCredit,
			Description:   "Money added via " + titleWords(method),
			ReferenceID:   utils.NewReferenceID(string(model.TransactionCredit), now),
			PaymentMethod: method,
			Status:        model.PaymentCompleted,
			CreatedAt:     now,
		}
		return r.CreateTransaction(ctx, tx)
	})
	record("credit", err)
	if err != nil {
		return nil, decimal.Zero, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "amount": amount.StringFixed(2), "reference_id": tx.ReferenceID}).Info("wallet credited")
	s.publish(ctx, queue.Event{
		Type:        queue.EventWalletCredited,
		UserID:      userID,
		Amount:      amount.StringFixed(2),
		ReferenceID: tx.ReferenceID,
	})
	return tx, balance, nil
}

// Withdraw takes amount out of the wallet immediately and records a
// pending bank transfer.
func (s *WalletService) Withdraw(ctx context.Context, userID uint64, amount decimal.Decimal, bankAccount string) (*model.Transaction, decimal.Decimal, error) {
	bankAccount = strings.TrimSpace(bankAccount)
	if amount.LessThan(MinWithdraw) {
		return s.rejected("withdraw", fmt.Errorf("%w: Minimum withdrawal amount is ₹50", ErrBelowMinimum))
	}

	var (
		tx      *model.Transaction
		balance decimal.Decimal
	)
	err := s.store.InTx(ctx, func(r Repo) error {
		u, err := r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if amount.GreaterThan(u.Balance) {
			return fmt.Errorf("%w: Insufficient balance for withdrawal", ErrInsufficientFunds)
		}
		if bankAccount == "" {
			return ErrMissingDestination
		}
		balance = u.Balance.Sub(amount)
		if err := r.UpdateUserBalance(ctx, userID, balance); err != nil {
			return err
		}
		now := s.now()
		tx = &model.Transaction{
			UserID:        userID,
			Amount:        amount,
			Type:          model.TransactionDebit,
			Description:   fmt.Sprintf("Money withdrawn to %s account", bankAccount),
			ReferenceID:   utils.NewReferenceID(string(model.TransactionDebit), now),
			PaymentMethod: model.MethodBankTransfer,
			Status:        model.PaymentPending,
			CreatedAt:     now,
		}
		return r.CreateTransaction(ctx, tx)
	})
	record("withdraw", err)
	if err != nil {
		return nil, decimal.Zero, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "amount": amount.StringFixed(2), "reference_id": tx.ReferenceID}).Info("withdrawal requested")
	s.publish(ctx, queue.Event{
		Type:        queue.EventWithdrawalRequested,
		UserID:      userID,
		Amount:      amount.StringFixed(2),
		ReferenceID: tx.ReferenceID,
	})
	return tx, balance, nil
}

func (s *WalletService) rejected(op string, err error) (*model.Transaction, decimal.Decimal, error) {
	record(op, err)
	return nil, decimal.Zero, err
}

// Balance returns the current wallet balance.
func (s *WalletService) Balance(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return decimal.Zero, notFound(err, ErrUserNotFound)
	}
	return u.Balance, nil
}

// Summary returns the balance, the ledger newest first and the credit and
// debit totals.
func (s *WalletService) Summary(ctx context.Context, userID uint64) (*WalletSummary, error) {
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &WalletSummary{Balance: balance, Transactions: txs, TotalAdded: decimal.Zero, TotalSpent: decimal.Zero}
	if sum.Transactions == nil {
		sum.Transactions = []model.Transaction{}
	}
	for _, t := range txs {
		switch t.Type {
		case model.TransactionCredit:
			sum.TotalAdded = sum.TotalAdded.Add(t.Amount)
		case model.TransactionDebit:
			sum.TotalSpent = sum.TotalSpent.Add(t.Amount)
		}
	}
	return sum, nil
}

// titleWords upper-cases the first letter of every word: "upi card" ->
// "Upi Card".
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
