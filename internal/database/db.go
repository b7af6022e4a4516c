package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/taskboard/internal/config"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// MySQLDSN builds a go-sql-driver DSN.
func MySQLDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// SQLiteDSN builds a modernc.org/sqlite URI with foreign keys enforced.
// The path is percent-encoded so that '?' or '#' in it cannot leak into
// the query.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + q.Encode()
}

// FromConfig resolves the driver name and DSN for cfg.
func FromConfig(cfg config.Config) (driver, dsn string) {
	if cfg.DBDriver == DriverSQLite {
		return DriverSQLite, SQLiteDSN(cfg.SQLitePath)
	}
	return DriverMySQL, MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// Open connects to the database and verifies the connection.
func Open(driver, dsn string) (*sql.DB, error) {
	if driver != DriverMySQL && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
