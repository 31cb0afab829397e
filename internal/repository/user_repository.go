package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const userColumns = `id, username, email, password_hash, full_name, phone, role, balance,
	vehicle_number, vehicle_type, created_at, updated_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.Role, &u.Balance, &u.VehicleNumber, &u.VehicleType, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// userConflict maps a duplicate entry on users to a typed error.
func userConflict(err error) error {
	switch duplicateKey(err) {
	case "":
		return err
	case "uq_users_username":
		return ErrUsernameExists
	case "uq_users_email":
		return ErrEmailExists
	}
	return ErrConflict
}

// CreateUser inserts u and sets its ID.
func (q *Queries) CreateUser(ctx context.Context, u *model.User) error {
	const qInsert = `INSERT INTO users (username, email, password_hash, full_name, phone, role, balance, vehicle_number, vehicle_type)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, qInsert, u.Username, u.Email, u.PasswordHash, u.FullName,
		u.Phone, u.Role, u.Balance, u.VehicleNumber, u.VehicleType)
	if err != nil {
		return userConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetUserByID fetches a user by id.
func (q *Queries) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// GetUserByUsername fetches a user by username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username))
}

// LockUser reads a user with SELECT ... FOR UPDATE.  Every balance change
// starts here so concurrent operations of one user are serialized.
func (q *Queries) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? FOR UPDATE", id))
}

// UpdateUserBalance stores a new wallet balance.  Callers hold the row
// lock taken by LockUser.
func (q *Queries) UpdateUserBalance(ctx context.Context, id uint64, balance decimal.Decimal) error {
	_, err := q.db.ExecContext(ctx, "UPDATE users SET balance = ? WHERE id = ?", balance, id)
	return err
}

// UpdateUserProfile stores the editable profile fields of u.
func (q *Queries) UpdateUserProfile(ctx context.Context, u *model.User) error {
	const qUpdate = `UPDATE users
	                 SET username = ?, email = ?, full_name = ?, phone = ?, vehicle_number = ?, vehicle_type = ?
	                 WHERE id = ?`
	_, err := q.db.ExecContext(ctx, qUpdate, u.Username, u.Email, u.FullName, u.Phone,
		u.VehicleNumber, u.VehicleType, u.ID)
	if err != nil {
		return userConflict(err)
	}
	return nil
}

// UpdateUserPassword replaces the bcrypt hash of a user.
func (q *Queries) UpdateUserPassword(ctx context.Context, id uint64, hash string) error {
	_, err := q.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	return err
}

// ListUsersByRole returns users holding role ordered by id.
func (q *Queries) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY id", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
