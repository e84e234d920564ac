package db

import (
	"fmt"

	"calorie-tracker/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// OpenSQL opens the tracking database. database/sql owns pooling: every
// DAO call borrows a connection and hands it back when the call returns.
func OpenSQL(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	conn, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isMemory(cfg) {
		// Every new connection to :memory: is a fresh, empty database.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return conn, nil
}

func isMemory(cfg config.DatabaseConfig) bool {
	return cfg.Driver == "sqlite3" && (cfg.DSN == ":memory:" || cfg.DSN == "file::memory:")
}
