package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every query can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every hand-written statement of the application.  The
// methods are grouped per table in the *_repository.go files.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries { return &Queries{db: db} }

// Store couples Queries on the pool with the ability to open a
// transaction.
type Store struct {
	*Queries
	db *sql.DB
}

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{Queries: New(db), db: db}
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// InTx runs fn inside a single transaction.  The transaction is committed
// when fn returns nil and rolled back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func nullID(id uint64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

func fromNullID(n sql.NullInt64) uint64 {
	if !n.Valid {
		return 0
	}
	return uint64(n.Int64)
}

func fromNullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
