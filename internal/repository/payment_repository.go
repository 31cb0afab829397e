package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// CreatePayment inserts p and sets its ID.
func (q *Queries) CreatePayment(ctx context.Context, p *model.Payment) error {
	const qInsert = `INSERT INTO payments (user_id, reservation_id, amount, payment_method, payment_status, payment_date, completed_at)
	                 VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, qInsert, p.UserID, nullID(p.ReservationID), p.Amount,
		p.PaymentMethod, p.Status, p.PaymentDate, p.CompletedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetPendingPayment locks the pending payment of a reservation.
func (q *Queries) GetPendingPayment(ctx context.Context, reservationID uint64) (*model.Payment, error) {
	const qSelect = `SELECT id, user_id, reservation_id, amount, payment_method, payment_status, payment_date, completed_at
	                 FROM payments
	                 WHERE reservation_id = ? AND payment_status = 'pending'
	                 ORDER BY id LIMIT 1 FOR UPDATE`
	var (
		p           model.Payment
		resID       sql.NullInt64
		completedAt sql.NullTime
	)
	err := q.db.QueryRowContext(ctx, qSelect, reservationID).Scan(&p.ID, &p.UserID, &resID, &p.Amount,
		&p.PaymentMethod, &p.Status, &p.PaymentDate, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.ReservationID = fromNullID(resID)
	p.CompletedAt = fromNullTime(completedAt)
	return &p, nil
}

// CompletePayment marks a pending payment completed at the given time.
func (q *Queries) CompletePayment(ctx context.Context, id uint64, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE payments SET payment_status = 'completed', completed_at = ? WHERE id = ? AND payment_status = 'pending'",
		at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}
