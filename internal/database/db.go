package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the SQLite database at path and verifies the connection.
// The file is created on first use.
func Open(path string) (*sql.DB, error) {
	// _busy_timeout lets concurrent writers wait instead of failing with
	// SQLITE_BUSY | WAL keeps readers unblocked during writes | _txlock=
	// immediate makes write transactions take the lock at BeginTx, so a
	// read-then-write transaction cannot hit SQLITE_BUSY_SNAPSHOT mid-flight
	// | foreign keys are off by default in SQLite and the schema relies on
	// them
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
