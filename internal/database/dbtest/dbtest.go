// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/taskboard/internal/database"
)

// Open returns a freshly migrated database in a temporary directory.  The
// handle is closed when the test finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "taskboard.db"))
	require.NoError(t, database.RunMigrations(database.DriverSQLite, dsn))

	db, err := database.Open(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
