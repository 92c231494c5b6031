package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/model"
)

// TransactionRepo appends to and reads from the transaction_info ledger.
// The ledger is append-only: no update or delete operation exists.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, customer_id, COALESCE(customer_reference, ''), COALESCE(booked_ticket_id, 0),
	COALESCE(booking_reference, ''), transaction_type, amount, payment_method, transaction_time, status,
	COALESCE(reference_number, ''), COALESCE(payment_processor, ''), COALESCE(currency, 'GBP'),
	COALESCE(processing_fee, 0), COALESCE(notes, '')`

// InsertTx appends one monetary event within the given transaction and
// populates the generated id.  During a refund this must run while the
// booking row still exists so the booked_ticket_id is valid at write time.
func (r *TransactionRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transaction_info (customer_id, customer_reference, booked_ticket_id, booking_reference,
		   transaction_type, amount, payment_method, transaction_time, status,
		   reference_number, payment_processor, currency, processing_fee, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.CustomerID, nullable(t.CustomerReference), t.BookedTicketID, t.BookingReference,
		t.TransactionType, t.Amount, t.PaymentMethod, t.TransactionTime.UTC().Format(clock.Layout), t.Status,
		nullable(t.ReferenceNumber), nullable(t.PaymentProcessor), t.Currency, t.ProcessingFee, nullable(t.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// RecentForCustomer returns the customer's transactions since the given
// instant, newest first, capped at limit when limit > 0.
func (r *TransactionRepo) RecentForCustomer(ctx context.Context, customerID int64, since time.Time, limit int) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transaction_info
		WHERE customer_id = ? AND transaction_time >= ?
		ORDER BY transaction_time DESC`
	args := []any{customerID, since.UTC().Format(clock.Layout)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		var at string
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.CustomerReference, &t.BookedTicketID,
			&t.BookingReference, &t.TransactionType, &t.Amount, &t.PaymentMethod, &at, &t.Status,
			&t.ReferenceNumber, &t.PaymentProcessor, &t.Currency, &t.ProcessingFee, &t.Notes); err != nil {
			return nil, err
		}
		if t.TransactionTime, err = time.Parse(clock.Layout, at); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountForBooking returns how many ledger rows of the given type reference
// a booking.  Used by invariants checks and tests, not by the engine's hot
// path.
func (r *TransactionRepo) CountForBooking(ctx context.Context, bookingReference, transactionType string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transaction_info WHERE booking_reference = ? AND transaction_type = ?`,
		bookingReference, transactionType).Scan(&n)
	return n, err
}
