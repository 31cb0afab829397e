// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to
// distinguish between different failure scenarios without inspecting
// driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup or a keyed update matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional update finds the row in an
// unexpected state, such as claiming a spot that is no longer available.
var ErrConflict = errors.New("conflict")

// Unique key violations that callers react to individually.
var (
	ErrUsernameExists        = errors.New("username already exists")
	ErrEmailExists           = errors.New("email already exists")
	ErrOpenReservationExists = errors.New("user already has an open reservation")
	ErrSpotTaken             = errors.New("spot already has an open reservation")
	ErrDuplicateReference    = errors.New("transaction reference already exists")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// duplicateKey returns the name of the violated unique key, or "" when err
// is not a duplicate entry error.
func duplicateKey(err error) string {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return ""
	}
	// Duplicate entry 'x' for key 'table.key_name'
	msg := me.Message
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return "?"
	}
	key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}
