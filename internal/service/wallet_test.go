package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-reservation/internal/model"
)

func TestParseAmount(t *testing.T) {
	for _, raw := range []string{"10", "10.5", " 99.99 ", "10.500"} {
		_, err := ParseAmount(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"", "abc", "-5", "10.001", "1e"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, raw)
	}
}

func TestCreditLimits(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	user := fx.addUser(t, "jo", "0")
	svc := NewWalletService(fx.deps())

	_, _, err := svc.Credit(ctx, user.ID, dec("5"), "card")
	assert.ErrorIs(t, err, ErrBelowMinimum)
	_, _, err = svc.Credit(ctx, user.ID, dec("10000.01"), "card")
	assert.ErrorIs(t, err, ErrAboveMaximum)
	_, _, err = svc.Credit(ctx, user.ID, dec("100"), "  ")
	assert.ErrorIs(t, err, ErrMissingMethod)
	assert.Empty(t, fx.store.data.txs)

	tx, balance, err := svc.Credit(ctx, user.ID, dec("10000"), "net banking")
	require.NoError(t, err)
	assert.Equal(t, "10000.00", balance.StringFixed(2))
	assert.Equal(t, model.TransactionCredit, tx.Type)
	assert.Equal(t, model.PaymentCompleted, tx.Status)
	assert.Equal(t, "Money added via Net Banking", tx.Description)
	assert.Regexp(t, `^CREDIT_\d+_[0-9A-F]{8}$`, tx.ReferenceID)
	assert.Len(t, fx.store.data.txs, 1)
}

func TestWithdraw(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	user := fx.addUser(t, "kim", "120")
	svc := NewWalletService(fx.deps())

	_, _, err := svc.Withdraw(ctx, user.ID, dec("49.99"), "HDFC-1")
	assert.ErrorIs(t, err, ErrBelowMinimum)
	_, _, err = svc.Withdraw(ctx, user.ID, dec("120.01"), "HDFC-1")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, _, err = svc.Withdraw(ctx, user.ID, dec("60"), "")
	assert.ErrorIs(t, err, ErrMissingDestination)
	assert.Equal(t, "120", fx.balance(t, user.ID).String())

	tx, balance, err := svc.Withdraw(ctx, user.ID, dec("60"), "HDFC-1")
	require.NoError(t, err)
	assert.Equal(t, "60.00", balance.StringFixed(2))
	assert.Equal(t, model.TransactionDebit, tx.Type)
	assert.Equal(t, model.PaymentPending, tx.Status)
	assert.Equal(t, model.MethodBankTransfer, tx.PaymentMethod)
	assert.Equal(t, "Money withdrawn to HDFC-1 account", tx.Description)
}

func TestSummaryTotalsAndUniqueReferences(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	user := fx.addUser(t, "lee", "0")
	svc := NewWalletService(fx.deps())

	for i := 0; i < 3; i++ {
		_, _, err := svc.Credit(ctx, user.ID, dec("100"), "card")
		require.NoError(t, err)
	}
	_, _, err := svc.Withdraw(ctx, user.ID, dec("75.50"), "ACC-9")
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "224.50", sum.Balance.StringFixed(2))
	assert.Equal(t, "300.00", sum.TotalAdded.StringFixed(2))
	assert.Equal(t, "75.50", sum.TotalSpent.StringFixed(2))
	require.Len(t, sum.Transactions, 4)
	assert.Equal(t, model.TransactionDebit, sum.Transactions[0].Type, "newest first")

	refs := map[string]bool{}
	for _, tx := range sum.Transactions {
		assert.False(t, refs[tx.ReferenceID], "duplicate reference %s", tx.ReferenceID)
		refs[tx.ReferenceID] = true
	}
}

func TestBalanceUnknownUser(t *testing.T) {
	fx := newFixture()
	_, err := NewWalletService(fx.deps()).Balance(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
