package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/database"
)

var testNow = time.Date(2025, 7, 29, 14, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return db
}

func insertCustomer(t *testing.T, db *sql.DB, ref, email string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO customer_info (customer_id, name, address, email, phone) VALUES (?, ?, ?, ?, ?)`,
		ref, "Test Customer", "1 Test Street, London", email, "+44 7700 900000")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertTicket(t *testing.T, db *sql.DB, from, to, seat, ticketType string, departsIn time.Duration, price float64) int64 {
	t.Helper()
	depart := testNow.Add(departsIn)
	res, err := db.Exec(
		`INSERT INTO available_tickets (train_number, from_station, to_station, departure_time, arrival_time,
		   seat_number, carriage, ticket_type, base_price, current_price, availability_status, booking_class)
		 VALUES ('UK102', ?, ?, ?, ?, ?, 'B', ?, ?, ?, 'available', 'standard')`,
		from, to, depart.Format(clock.Layout), depart.Add(2*time.Hour).Format(clock.Layout),
		seat, ticketType, price, price)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	require.NoError(t, tx.Commit())
	return nil
}
