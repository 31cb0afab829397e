package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus values shared by payments and transactions.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment methods.
const (
	MethodWallet       = "wallet"
	MethodBankTransfer = "bank_transfer"
)

// Payment settles the cost of one reservation.  A pending payment records
// a debt that is collected later.
type Payment struct {
	ID            uint64          `json:"id"`
	UserID        uint64          `json:"user_id"`
	ReservationID uint64          `json:"reservation_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        PaymentStatus   `json:"payment_status"`
	PaymentDate   time.Time       `json:"payment_date"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

// TransactionType is the direction of a ledger row.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transaction is an append-only wallet ledger row.
type Transaction struct {
	ID            uint64          `json:"id"`
	UserID        uint64          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"transaction_type"`
	Description   string          `json:"description"`
	ReferenceID   string          `json:"reference_id"`
	PaymentMethod string          `json:"payment_method"`
	Status        PaymentStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
