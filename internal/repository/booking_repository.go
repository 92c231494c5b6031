package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/model"
)

// BookingRepo provides access to the booked_tickets ledger.  Bookings are
// created by the book flow and deleted (not soft-deleted) by the refund
// flow; their audit trail survives in booking_history and transaction_info.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// referencePrefix is the externally visible booking reference format:
// UKC followed by a zero-padded monotonically allocated number.
const referencePrefix = "UKC"

// maxReferenceAttempts bounds the collision-retry loop in NextReferenceTx.
const maxReferenceAttempts = 10

const bookingColumns = `id, booking_reference, customer_id, COALESCE(original_available_ticket_id, 0),
	train_number, from_station, to_station, departure_time, estimated_arrival_time,
	seat_number, carriage, ticket_type, original_price, paid_price,
	booking_status, travel_status, purchase_date, COALESCE(special_requirements, ''),
	loyalty_points_earned, loyalty_points_used`

// CreateTx inserts a new booking within the given transaction and
// populates the generated id on the record.  The caller supplies a
// pre-allocated unique booking reference.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.BookedTicket) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO booked_tickets (booking_reference, customer_id, original_available_ticket_id,
		   train_number, from_station, to_station, departure_time, estimated_arrival_time,
		   seat_number, carriage, ticket_type, original_price, paid_price,
		   booking_status, travel_status, purchase_date, special_requirements,
		   loyalty_points_earned, loyalty_points_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BookingReference, b.CustomerID, nullableID(b.OriginalAvailableTicketID),
		b.TrainNumber, b.FromStation, b.ToStation,
		b.DepartureTime.UTC().Format(clock.Layout), b.ArrivalTime.UTC().Format(clock.Layout),
		b.SeatNumber, b.Carriage, b.TicketType, b.OriginalPrice, b.PaidPrice,
		b.BookingStatus, b.TravelStatus, b.PurchaseTime.UTC().Format(clock.Layout),
		nullable(b.SpecialRequirements), b.LoyaltyPointsEarned, b.LoyaltyPointsUsed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetByReference loads a booking by its external reference.  Returns
// ErrBookingNotFound when the reference does not resolve, including after
// the booking has been refunded and deleted.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.BookedTicket, error) {
	return getBooking(ctx, r.db, ref)
}

// GetByReferenceTx is GetByReference inside an existing transaction.
func (r *BookingRepo) GetByReferenceTx(ctx context.Context, tx *sql.Tx, ref string) (*model.BookedTicket, error) {
	return getBooking(ctx, tx, ref)
}

// ActiveForCustomer returns the customer's confirmed bookings departing
// after asOf, soonest first.
func (r *BookingRepo) ActiveForCustomer(ctx context.Context, customerID int64, asOf time.Time) ([]model.BookedTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM booked_tickets
		 WHERE customer_id = ? AND booking_status = 'confirmed' AND departure_time > ?
		 ORDER BY departure_time ASC`,
		customerID, asOf.UTC().Format(clock.Layout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// AllForCustomer returns every booking the customer currently holds,
// newest purchase first.
func (r *BookingRepo) AllForCustomer(ctx context.Context, customerID int64) ([]model.BookedTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM booked_tickets
		 WHERE customer_id = ?
		 ORDER BY purchase_date DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// DeleteTx removes a booking row within the given transaction.  Only the
// refund flow calls this, and only after the history and transaction rows
// referencing the booking have been written.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM booked_tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// NextReferenceTx allocates a fresh booking reference within the given
// transaction.  References are never reused: the numeric suffix is computed
// as max over both the live ledger and the append-only transaction log
// (which retains references of refunded, deleted bookings) plus one, then
// verified with increasing offsets for up to maxReferenceAttempts before
// giving up with ErrReferenceExhausted.
func (r *BookingRepo) NextReferenceTx(ctx context.Context, tx *sql.Tx) (string, error) {
	var maxSuffix int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(CAST(SUBSTR(booking_reference, 4) AS INTEGER)), 0) FROM (
		   SELECT booking_reference FROM booked_tickets WHERE booking_reference LIKE 'UKC%'
		   UNION ALL
		   SELECT booking_reference FROM transaction_info WHERE booking_reference LIKE 'UKC%'
		 )`).Scan(&maxSuffix)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%03d", referencePrefix, maxSuffix+1+int64(attempt))
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(*) FROM booked_tickets WHERE booking_reference = ?)
			      + (SELECT COUNT(*) FROM transaction_info WHERE booking_reference = ?)`,
			candidate, candidate).Scan(&count)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", ErrReferenceExhausted
}

func getBooking(ctx context.Context, q querier, ref string) (*model.BookedTicket, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM booked_tickets WHERE booking_reference = ?`, ref)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBooking(row rowScanner) (model.BookedTicket, error) {
	var b model.BookedTicket
	var depart, arrive, purchased string
	err := row.Scan(&b.ID, &b.BookingReference, &b.CustomerID, &b.OriginalAvailableTicketID,
		&b.TrainNumber, &b.FromStation, &b.ToStation, &depart, &arrive,
		&b.SeatNumber, &b.Carriage, &b.TicketType, &b.OriginalPrice, &b.PaidPrice,
		&b.BookingStatus, &b.TravelStatus, &purchased, &b.SpecialRequirements,
		&b.LoyaltyPointsEarned, &b.LoyaltyPointsUsed)
	if err != nil {
		return b, err
	}
	if b.DepartureTime, err = time.Parse(clock.Layout, depart); err != nil {
		return b, err
	}
	if b.ArrivalTime, err = time.Parse(clock.Layout, arrive); err != nil {
		return b, err
	}
	if b.PurchaseTime, err = time.Parse(clock.Layout, purchased); err != nil {
		return b, err
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]model.BookedTicket, error) {
	out := make([]model.BookedTicket, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
