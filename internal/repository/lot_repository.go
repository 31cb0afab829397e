package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const lotColumns = `id, prime_location_name, address, pin_code, price_per_hour, layout_rows, layout_cols,
	max_spots, max_parking_limit, has_security, has_lighting, is_covered, created_at`

func scanLot(row scanner) (*model.ParkingLot, error) {
	var l model.ParkingLot
	err := row.Scan(&l.ID, &l.PrimeLocationName, &l.Address, &l.PinCode, &l.PricePerHour,
		&l.LayoutRows, &l.LayoutCols, &l.MaxSpots, &l.MaxParkingLimit,
		&l.HasSecurity, &l.HasLighting, &l.IsCovered, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// CreateLot inserts l and sets its ID.
func (q *Queries) CreateLot(ctx context.Context, l *model.ParkingLot) error {
	const qInsert = `INSERT INTO parking_lots (prime_location_name, address, pin_code, price_per_hour, layout_rows,
	                 layout_cols, max_spots, max_parking_limit, has_security, has_lighting, is_covered)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, qInsert, l.PrimeLocationName, l.Address, l.PinCode, l.PricePerHour,
		l.LayoutRows, l.LayoutCols, l.MaxSpots, l.MaxParkingLimit, l.HasSecurity, l.HasLighting, l.IsCovered)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// GetLot retrieves a lot by id.
func (q *Queries) GetLot(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return scanLot(q.db.QueryRowContext(ctx, "SELECT "+lotColumns+" FROM parking_lots WHERE id = ?", id))
}

// LockLot retrieves a lot with SELECT ... FOR UPDATE.
func (q *Queries) LockLot(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return scanLot(q.db.QueryRowContext(ctx, "SELECT "+lotColumns+" FROM parking_lots WHERE id = ? FOR UPDATE", id))
}

// ListLots returns every lot ordered by id.
func (q *Queries) ListLots(ctx context.Context) ([]model.ParkingLot, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+lotColumns+" FROM parking_lots ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ParkingLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// UpdateLot stores every mutable column of l.
func (q *Queries) UpdateLot(ctx context.Context, l *model.ParkingLot) error {
	const qUpdate = `UPDATE parking_lots
	                 SET prime_location_name = ?, address = ?, pin_code = ?, price_per_hour = ?, layout_rows = ?,
	                     layout_cols = ?, max_spots = ?, max_parking_limit = ?, has_security = ?, has_lighting = ?,
	                     is_covered = ?
	                 WHERE id = ?`
	_, err := q.db.ExecContext(ctx, qUpdate, l.PrimeLocationName, l.Address, l.PinCode, l.PricePerHour,
		l.LayoutRows, l.LayoutCols, l.MaxSpots, l.MaxParkingLimit, l.HasSecurity, l.HasLighting, l.IsCovered, l.ID)
	return err
}

// DeleteLot removes a lot; its spots go with it through the foreign key and
// past reservations keep their rows with lot and spot cleared.
func (q *Queries) DeleteLot(ctx context.Context, id uint64) error {
	if _, err := q.db.ExecContext(ctx, "UPDATE reservations SET spot_id = NULL WHERE lot_id = ?", id); err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, "DELETE FROM parking_lots WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
