// Package repository defines the sqlx-backed stores and the error values
// they share.  These sentinel values allow higher layers such as handlers
// and services to distinguish between different failure scenarios without
// knowing which database driver is underneath.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when the addressed row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with a unique key, such
// as a second like of the same post by the same user.  Handlers should
// translate this into an HTTP 409 response unless the caller treats the
// conflict as success.
var ErrConflict = errors.New("conflict")

// Unique-key violations on users.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// isDuplicateKey reports whether err is a unique or primary key violation
// from either supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		// without extended result codes only SQLITE_CONSTRAINT is reported
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "error 1062") || strings.Contains(msg, "unique constraint failed")
}
