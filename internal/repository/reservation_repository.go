package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const reservationColumns = `r.id, r.user_id, r.lot_id, r.spot_id, r.start_time, r.end_time, r.cost, r.status, r.vehicle_number`

func scanReservation(row scanner, extra ...any) (*model.Reservation, error) {
	var (
		r       model.Reservation
		lotID   sql.NullInt64
		spotID  sql.NullInt64
		endTime sql.NullTime
	)
	dest := []any{&r.ID, &r.UserID, &lotID, &spotID, &r.StartTime, &endTime, &r.Cost, &r.Status, &r.VehicleNumber}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.LotID = fromNullID(lotID)
	r.SpotID = fromNullID(spotID)
	r.EndTime = fromNullTime(endTime)
	return &r, nil
}

// CreateReservation inserts r and sets its ID.  The unique keys on open
// reservations surface as ErrOpenReservationExists and ErrSpotTaken.
func (q *Queries) CreateReservation(ctx context.Context, r *model.Reservation) error {
	const qInsert = `INSERT INTO reservations (user_id, lot_id, spot_id, start_time, status, vehicle_number)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, qInsert, r.UserID, nullID(r.LotID), nullID(r.SpotID),
		r.StartTime, r.Status, r.VehicleNumber)
	if err != nil {
		switch duplicateKey(err) {
		case "":
			return err
		case "uq_reservations_open_user":
			return ErrOpenReservationExists
		case "uq_reservations_open_spot":
			return ErrSpotTaken
		}
		return ErrConflict
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

// GetReservation retrieves a reservation by id.
func (q *Queries) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return scanReservation(q.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.id = ?", id))
}

// LockReservation retrieves a reservation with SELECT ... FOR UPDATE.
func (q *Queries) LockReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return scanReservation(q.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.id = ? FOR UPDATE", id))
}

// GetOpenReservation returns the reservation a user currently holds, or
// ErrNotFound.
func (q *Queries) GetOpenReservation(ctx context.Context, userID uint64) (*model.Reservation, error) {
	return scanReservation(q.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.user_id = ? AND r.end_time IS NULL LIMIT 1", userID))
}

// CountPendingPayments counts a user's reservations awaiting settlement.
func (q *Queries) CountPendingPayments(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE user_id = ? AND status = 'pending_payment'", userID).Scan(&n)
	return n, err
}

// CloseReservation stores end time, cost and status of r.
func (q *Queries) CloseReservation(ctx context.Context, r *model.Reservation) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE reservations SET end_time = ?, cost = ?, status = ? WHERE id = ? AND end_time IS NULL",
		r.EndTime, r.Cost, r.Status, r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// SetReservationStatus updates only the status column.
func (q *Queries) SetReservationStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	_, err := q.db.ExecContext(ctx, "UPDATE reservations SET status = ? WHERE id = ?", status, id)
	return err
}

// ListReservationsByUser returns a user's reservations, newest first, with
// lot name and spot label when they still exist.
func (q *Queries) ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const qSelect = `SELECT ` + reservationColumns + `, COALESCE(l.prime_location_name, ''), COALESCE(s.spot_number, '')
	                 FROM reservations r
	                 LEFT JOIN parking_lots l ON l.id = r.lot_id
	                 LEFT JOIN parking_spots s ON s.id = r.spot_id
	                 WHERE r.user_id = ?
	                 ORDER BY r.start_time DESC, r.id DESC`
	rows, err := q.db.QueryContext(ctx, qSelect, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var lotName, spotNumber string
		r, err := scanReservation(rows, &lotName, &spotNumber)
		if err != nil {
			return nil, err
		}
		r.LotName, r.SpotNumber = lotName, spotNumber
		out = append(out, *r)
	}
	return out, rows.Err()
}

// CountReservations counts every reservation ever made.
func (q *Queries) CountReservations(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations").Scan(&n)
	return n, err
}
