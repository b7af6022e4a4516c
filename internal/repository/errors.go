// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// knowing which database driver is in use. ErrNotFound replaces
// sql.ErrNoRows at the package boundary, while ErrDuplicate signals that
// a unique index rejected an insert (for example a second account with
// the same email).
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// index. Services translate it into a domain error.
var ErrDuplicate = errors.New("duplicate")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate classifies unique violations from both supported drivers.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
