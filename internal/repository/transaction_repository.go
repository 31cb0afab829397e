package repository

import (
	"context"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// CreateTransaction appends a ledger row and sets its ID.
func (q *Queries) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	const qInsert = `INSERT INTO transactions (user_id, amount, transaction_type, description, reference_id, payment_method, status, created_at)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, qInsert, t.UserID, t.Amount, t.Type, t.Description,
		t.ReferenceID, t.PaymentMethod, t.Status, t.CreatedAt)
	if err != nil {
		if duplicateKey(err) == "uq_transactions_reference" {
			return ErrDuplicateReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListTransactionsByUser returns a user's ledger, newest first.
func (q *Queries) ListTransactionsByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	const qSelect = `SELECT id, user_id, amount, transaction_type, description, reference_id, payment_method, status, created_at
	                 FROM transactions
	                 WHERE user_id = ?
	                 ORDER BY created_at DESC, id DESC`
	rows, err := q.db.QueryContext(ctx, qSelect, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.ReferenceID,
			&t.PaymentMethod, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
