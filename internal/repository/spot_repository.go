package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const spotColumns = `id, lot_id, spot_number, row_position, col_position, status`

func scanSpot(row scanner) (*model.ParkingSpot, error) {
	var s model.ParkingSpot
	if err := row.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.RowPosition, &s.ColPosition, &s.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateSpots bulk inserts spots in a single statement.
func (q *Queries) CreateSpots(ctx context.Context, spots []model.ParkingSpot) error {
	if len(spots) == 0 {
		return nil
	}
	query := "INSERT INTO parking_spots (lot_id, spot_number, row_position, col_position, status) VALUES "
	args := make([]any, 0, len(spots)*5)
	for i, s := range spots {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?)"
		args = append(args, s.LotID, s.SpotNumber, s.RowPosition, s.ColPosition, s.Status)
	}
	_, err := q.db.ExecContext(ctx, query, args...)
	return err
}

// GetSpot retrieves a spot by id.
func (q *Queries) GetSpot(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	return scanSpot(q.db.QueryRowContext(ctx, "SELECT "+spotColumns+" FROM parking_spots WHERE id = ?", id))
}

// LockSpot retrieves a spot with SELECT ... FOR UPDATE.
func (q *Queries) LockSpot(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	return scanSpot(q.db.QueryRowContext(ctx, "SELECT "+spotColumns+" FROM parking_spots WHERE id = ? FOR UPDATE", id))
}

// ListSpotsByLot returns the spots of a lot ordered by id.
func (q *Queries) ListSpotsByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+spotColumns+" FROM parking_spots WHERE lot_id = ? ORDER BY id", lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ParkingSpot
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// FindAvailableSpot locks the lowest-id Available spot of a lot.  It
// returns ErrNotFound when the lot is full.
func (q *Queries) FindAvailableSpot(ctx context.Context, lotID uint64) (*model.ParkingSpot, error) {
	const qSelect = `SELECT ` + spotColumns + ` FROM parking_spots
	                 WHERE lot_id = ? AND status = 'A'
	                 ORDER BY id LIMIT 1 FOR UPDATE`
	return scanSpot(q.db.QueryRowContext(ctx, qSelect, lotID))
}

// TransitionSpot moves a spot from one status to another.  It returns
// ErrConflict when the spot is no longer in the expected status.
func (q *Queries) TransitionSpot(ctx context.Context, id uint64, from, to model.SpotStatus) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE parking_spots SET status = ? WHERE id = ? AND status = ?", to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// SetSpotStatus sets a spot's status unconditionally.
func (q *Queries) SetSpotStatus(ctx context.Context, id uint64, status model.SpotStatus) error {
	_, err := q.db.ExecContext(ctx, "UPDATE parking_spots SET status = ? WHERE id = ?", status, id)
	return err
}

// MoveSpot relocates a spot to another cell and relabels it.
func (q *Queries) MoveSpot(ctx context.Context, id uint64, row, col int, label string) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE parking_spots SET row_position = ?, col_position = ?, spot_number = ? WHERE id = ?",
		row, col, label, id)
	return err
}

// DeleteSpots removes spots by id.  Reservations that referenced them keep
// their history with spot_id cleared.
func (q *Queries) DeleteSpots(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	in := placeholders(len(ids))
	if _, err := q.db.ExecContext(ctx,
		"UPDATE reservations SET spot_id = NULL WHERE spot_id IN ("+in+")", idArgs(ids)...); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, "DELETE FROM parking_spots WHERE id IN ("+in+")", idArgs(ids)...)
	return err
}
