package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
)

// ConnectWithTimeout opens the configured store and pings it within timeout
func ConnectWithTimeout(cfg config.DatabaseConfig, timeout time.Duration) (*Gateway, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dsn := cfg.DSN()
	if cfg.Driver == config.DriverSQLite {
		if err := ensureSQLiteDir(cfg.SQLitePath); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s connection: %w", cfg.Driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping %s: %w", cfg.Driver, err)
	}

	configurePool(db, cfg)

	return New(db, cfg.Driver), nil
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	if cfg.Driver == config.DriverSQLite {
		// One writer at a time; also keeps an in-memory database alive
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// sqliteDSN switches on foreign key enforcement unless the DSN sets it
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

func ensureSQLiteDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create database directory %s: %w", dir, err)
	}
	return nil
}
