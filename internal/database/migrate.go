package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Each dialect has its own directory; MySQL files hold one statement each
// because the DSN does not enable multiStatements.
//
//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration for driver.  It opens a
// dedicated connection so that closing the migrator does not close the
// application's pool.  Being already up to date is not an error.
func RunMigrations(driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	m, err := newMigrator(db, driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// newMigrator wires the embedded source for driver to db.  The returned
// migrator owns db and closes it on Close.
func newMigrator(db *sql.DB, driver string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	var target migratedb.Driver
	switch driver {
	case DriverMySQL:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
