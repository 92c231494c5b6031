package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukconnect/rail-booking/internal/model"
)

func newBooking(customerID int64, ref string, departsIn time.Duration) *model.BookedTicket {
	return &model.BookedTicket{
		BookingReference: ref,
		CustomerID:       customerID,
		TrainNumber:      "UK102",
		FromStation:      "London Euston",
		ToStation:        "Manchester Piccadilly",
		DepartureTime:    testNow.Add(departsIn),
		ArrivalTime:      testNow.Add(departsIn + 2*time.Hour),
		SeatNumber:       "12A",
		Carriage:         "B",
		TicketType:       model.ClassStandard,
		OriginalPrice:    67.50,
		PaidPrice:        67.50,
		BookingStatus:    model.BookingConfirmed,
		TravelStatus:     model.TravelUpcoming,
		PurchaseTime:     testNow,
	}
}

func createBooking(t *testing.T, db *sql.DB, repo *BookingRepo, b *model.BookedTicket) {
	t.Helper()
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		return repo.CreateTx(context.Background(), tx, b)
	}))
}

func TestBookingRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	customerID := insertCustomer(t, db, "CUS001", "james.thompson@email.com")
	b := newBooking(customerID, "UKC001", 10*time.Hour)
	createBooking(t, db, repo, b)
	require.NotZero(t, b.ID)

	got, err := repo.GetByReference(ctx, "UKC001")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, 67.50, got.PaidPrice)
	assert.Equal(t, testNow.Add(10*time.Hour), got.DepartureTime)

	_, err = repo.GetByReference(ctx, "UKC999")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestActiveForCustomerOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	customerID := insertCustomer(t, db, "CUS001", "james.thompson@email.com")
	later := newBooking(customerID, "UKC001", 48*time.Hour)
	sooner := newBooking(customerID, "UKC002", 10*time.Hour)
	departed := newBooking(customerID, "UKC003", -2*time.Hour)
	createBooking(t, db, repo, later)
	createBooking(t, db, repo, sooner)
	createBooking(t, db, repo, departed)

	active, err := repo.ActiveForCustomer(ctx, customerID, testNow)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "UKC002", active[0].BookingReference)
	assert.Equal(t, "UKC001", active[1].BookingReference)
}

func TestNextReferenceTx(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	customerID := insertCustomer(t, db, "CUS001", "james.thompson@email.com")

	allocate := func() string {
		var ref string
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
			var err error
			ref, err = repo.NextReferenceTx(ctx, tx)
			return err
		}))
		return ref
	}

	t.Run("empty ledger starts at UKC001", func(t *testing.T) {
		assert.Equal(t, "UKC001", allocate())
	})

	t.Run("counts past the live ledger maximum", func(t *testing.T) {
		createBooking(t, db, repo, newBooking(customerID, "UKC005", 10*time.Hour))
		assert.Equal(t, "UKC006", allocate())
	})

	t.Run("references of deleted bookings stay burned", func(t *testing.T) {
		// A refunded booking leaves no ledger row, only its purchase
		// transaction.  The allocator must still step past it.
		_, err := db.Exec(
			`INSERT INTO transaction_info (customer_id, booking_reference, transaction_type, amount,
			   payment_method, transaction_time, status)
			 VALUES (?, 'UKC007', 'purchase', 67.50, 'credit_card', ?, 'completed')`,
			customerID, testNow.Format("2006-01-02 15:04:05"))
		require.NoError(t, err)
		assert.Equal(t, "UKC008", allocate())
	})
}

func TestDeleteTx(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	customerID := insertCustomer(t, db, "CUS001", "james.thompson@email.com")
	b := newBooking(customerID, "UKC001", 10*time.Hour)
	createBooking(t, db, repo, b)

	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		return repo.DeleteTx(ctx, tx, b.ID)
	}))

	_, err := repo.GetByReference(ctx, "UKC001")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	err = inTx(t, db, func(tx *sql.Tx) error { return repo.DeleteTx(ctx, tx, b.ID) })
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
