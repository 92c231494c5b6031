package engine

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/database"
	"github.com/ukconnect/rail-booking/internal/location"
	"github.com/ukconnect/rail-booking/internal/model"
)

var testNow = time.Date(2025, 7, 29, 14, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return New(db, clock.Fixed(testNow), location.NewResolver()), db
}

func seedCustomer(t *testing.T, db *sql.DB, ref, email string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO customer_info (customer_id, name, address, email, phone) VALUES (?, ?, ?, ?, ?)`,
		ref, "Test Customer", "1 Test Street, London", email, "+44 7700 900000")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

type ticketFixture struct {
	train      string
	from       string
	to         string
	departsIn  time.Duration
	seat       string
	ticketType string
	price      float64
}

func seedTicket(t *testing.T, db *sql.DB, f ticketFixture) int64 {
	t.Helper()
	if f.train == "" {
		f.train = "UK102"
	}
	if f.from == "" {
		f.from = "London Euston"
	}
	if f.to == "" {
		f.to = "Manchester Piccadilly"
	}
	if f.seat == "" {
		f.seat = "12A"
	}
	if f.ticketType == "" {
		f.ticketType = model.ClassStandard
	}
	depart := testNow.Add(f.departsIn)
	arrive := depart.Add(2*time.Hour + 9*time.Minute)
	res, err := db.Exec(
		`INSERT INTO available_tickets (train_number, from_station, to_station, departure_time, arrival_time,
		   seat_number, carriage, ticket_type, base_price, current_price, availability_status, booking_class)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'available', 'standard')`,
		f.train, f.from, f.to, depart.Format(clock.Layout), arrive.Format(clock.Layout),
		f.seat, "B", f.ticketType, f.price, f.price)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func ticketStatus(t *testing.T, db *sql.DB, id int64) string {
	t.Helper()
	var status string
	require.NoError(t, db.QueryRow(
		`SELECT availability_status FROM available_tickets WHERE id = ?`, id).Scan(&status))
	return status
}

func TestSearchTickets(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	flexible := seedTicket(t, db, ticketFixture{departsIn: 48 * time.Hour, seat: "1A", ticketType: model.ClassFlexible, price: 89.00})
	standard := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, seat: "2B", price: 67.50})
	first := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, seat: "3C", ticketType: model.ClassFirstClass, price: 150.00})

	t.Run("city resolves to stations and filters apply", func(t *testing.T) {
		got, err := eng.SearchTickets(ctx, SearchCriteria{
			From: "london", To: "manchester", TicketType: model.ClassFlexible, MaxPrice: 89,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, flexible, got[0].ID)
		assert.Equal(t, 89.00, got[0].CurrentPrice)
	})

	t.Run("ordered by departure then price", func(t *testing.T) {
		got, err := eng.SearchTickets(ctx, SearchCriteria{From: "london"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, standard, got[0].ID)
		assert.Equal(t, first, got[1].ID)
		assert.Equal(t, flexible, got[2].ID)
	})

	t.Run("unknown location yields empty result", func(t *testing.T) {
		got, err := eng.SearchTickets(ctx, SearchCriteria{From: "atlantis"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid ticket type rejected", func(t *testing.T) {
		_, err := eng.SearchTickets(ctx, SearchCriteria{TicketType: "super_saver"})
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestSearchTicketsExcludesPastAndSold(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedTicket(t, db, ticketFixture{departsIn: -time.Hour, seat: "9F", price: 30.00})
	sold := seedTicket(t, db, ticketFixture{departsIn: 5 * time.Hour, seat: "9G", price: 30.00})
	_, err := db.Exec(`UPDATE available_tickets SET availability_status = 'sold' WHERE id = ?`, sold)
	require.NoError(t, err)
	live := seedTicket(t, db, ticketFixture{departsIn: 5 * time.Hour, seat: "9H", price: 30.00})

	got, err := eng.SearchTickets(ctx, SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live, got[0].ID)
}

func TestBookTicket(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, price: 67.50})

	conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit card")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^UKC\d{3}$`), conf.BookingReference)
	assert.Equal(t, "CUS001", conf.CustomerReference)
	assert.Equal(t, 67.50, conf.PaidPrice)
	assert.Equal(t, "credit_card", conf.PaymentMethod)
	assert.Equal(t, 6, conf.LoyaltyPointsEarned)
	assert.Equal(t, model.BookingConfirmed, conf.Trip.BookingStatus)

	assert.Equal(t, model.AvailabilitySold, ticketStatus(t, db, ticketID))

	purchases, err := eng.transactions.CountForBooking(ctx, conf.BookingReference, model.TransactionPurchase)
	require.NoError(t, err)
	assert.Equal(t, 1, purchases)

	history, err := eng.history.ListForBooking(ctx, conf.BookingID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.ActionBooked, history[0].Action)
	assert.Equal(t, model.BookingConfirmed, history[0].NewStatus)
}

func TestBookTicketAlreadySold(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	seedCustomer(t, db, "CUS002", "sarah.wilson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, price: 67.50})

	_, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "paypal")
	require.NoError(t, err)

	_, err = eng.BookTicket(ctx, "sarah.wilson@email.com", ticketID, "paypal")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestBookTicketValidation(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, price: 67.50})

	cases := []struct {
		name    string
		email   string
		ticket  int64
		payment string
		want    Kind
	}{
		{"missing email", "", ticketID, "credit_card", KindValidation},
		{"malformed email", "not-an-email", ticketID, "credit_card", KindValidation},
		{"unknown customer", "nobody@email.com", ticketID, "credit_card", KindNotFound},
		{"bad ticket id", "james.thompson@email.com", 0, "credit_card", KindValidation},
		{"unknown ticket", "james.thompson@email.com", 99999, "credit_card", KindNotFound},
		{"unsupported payment", "james.thompson@email.com", ticketID, "bitcoin", KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.BookTicket(ctx, tc.email, tc.ticket, tc.payment)
			assert.Equal(t, tc.want, KindOf(err))
		})
	}
}

func TestBookTicketConcurrent(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, price: 67.50})

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit_card")
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case KindOf(err) == KindConflict:
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, callers-1, lost)
	assert.Equal(t, model.AvailabilitySold, ticketStatus(t, db, ticketID))
}

func TestCalculateRefundFlexibleFullRefund(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 48 * time.Hour, ticketType: model.ClassFlexible, price: 89.00})
	conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit_card")
	require.NoError(t, err)

	quote, err := eng.CalculateRefund(ctx, conf.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, 100, quote.RefundPercentage)
	assert.Equal(t, 0.00, quote.CancellationFee)
	assert.Equal(t, 89.00, quote.RefundAmount)
	assert.Equal(t, 48.0, quote.HoursUntilDeparture)
}

func TestCalculateRefundStandardTiers(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	seedCustomer(t, db, "CUS001", "james.thompson@email.com")

	cases := []struct {
		name       string
		departsIn  time.Duration
		wantPct    int
		wantAmount float64
	}{
		{"30h gets full refund", 30 * time.Hour, 100, 67.50},
		{"10h gets 75 percent minus fee", 10 * time.Hour, 75, 25.63}, // 67.50*0.75-25 = 25.625 rounds half-up
		{"2h fee exceeds refund so clamps to zero", 2 * time.Hour, 50, 0.00},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticketID := seedTicket(t, db, ticketFixture{
				departsIn: tc.departsIn, seat: fmt.Sprintf("%dA", 20+i), price: 67.50,
			})
			conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit_card")
			require.NoError(t, err)

			quote, err := eng.CalculateRefund(ctx, conf.BookingReference)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPct, quote.RefundPercentage)
			assert.Equal(t, tc.wantAmount, quote.RefundAmount)
		})
	}
}

func TestCalculateRefundAfterDeparture(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, price: 67.50})
	conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit_card")
	require.NoError(t, err)

	// Move the departure into the past; no rule tier covers negative hours.
	_, err = db.Exec(`UPDATE booked_tickets SET departure_time = ? WHERE booking_reference = ?`,
		testNow.Add(-time.Hour).Format(clock.Layout), conf.BookingReference)
	require.NoError(t, err)

	_, err = eng.CalculateRefund(ctx, conf.BookingReference)
	assert.Equal(t, KindPolicyGap, KindOf(err))
}

func TestCalculateRefundUnknownBooking(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := eng.CalculateRefund(context.Background(), "UKC999")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRefundTicket(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, price: 67.50})
	conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "paypal")
	require.NoError(t, err)

	result, err := eng.RefundTicket(ctx, conf.BookingReference, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, 25.63, result.RefundAmount)
	assert.Equal(t, 75, result.RefundPercentage)
	assert.NotEqual(t, ticketID, result.NewTicketID)

	// Original inventory row stays sold; the seat is reissued as a fresh
	// row at the paid price.
	assert.Equal(t, model.AvailabilitySold, ticketStatus(t, db, ticketID))
	reissued, err := eng.inventory.GetByID(ctx, result.NewTicketID)
	require.NoError(t, err)
	assert.Equal(t, model.AvailabilityAvailable, reissued.AvailabilityStatus)
	assert.Equal(t, 67.50, reissued.BasePrice)
	assert.Equal(t, 67.50, reissued.CurrentPrice)
	assert.Equal(t, conf.Trip.SeatNumber, reissued.SeatNumber)

	// The booking is gone but both ledger rows survive.
	_, err = eng.CalculateRefund(ctx, conf.BookingReference)
	assert.Equal(t, KindNotFound, KindOf(err))
	purchases, err := eng.transactions.CountForBooking(ctx, conf.BookingReference, model.TransactionPurchase)
	require.NoError(t, err)
	assert.Equal(t, 1, purchases)
	refunds, err := eng.transactions.CountForBooking(ctx, conf.BookingReference, model.TransactionRefund)
	require.NoError(t, err)
	assert.Equal(t, 1, refunds)

	// The refund is paid back the way the purchase was made.
	var method string
	require.NoError(t, db.QueryRow(
		`SELECT payment_method FROM transaction_info WHERE booking_reference = ? AND transaction_type = 'refund'`,
		conf.BookingReference).Scan(&method))
	assert.Equal(t, "paypal", method)

	// Refunding again fails: the reference no longer resolves.
	_, err = eng.RefundTicket(ctx, conf.BookingReference, "again")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRefundTicketInvalidStates(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")

	for _, status := range []string{model.BookingUsed, model.BookingCancelled} {
		t.Run(status, func(t *testing.T) {
			ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, seat: "4" + status[:1], price: 50.00})
			conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit_card")
			require.NoError(t, err)
			_, err = db.Exec(`UPDATE booked_tickets SET booking_status = ? WHERE booking_reference = ?`,
				status, conf.BookingReference)
			require.NoError(t, err)

			_, err = eng.RefundTicket(ctx, conf.BookingReference, "")
			assert.Equal(t, KindInvalidState, KindOf(err))
		})
	}
}

func TestBookingReferenceNeverReused(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	first := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, seat: "5A", price: 40.00})
	second := seedTicket(t, db, ticketFixture{departsIn: 12 * time.Hour, seat: "5B", price: 40.00})

	conf1, err := eng.BookTicket(ctx, "james.thompson@email.com", first, "credit_card")
	require.NoError(t, err)
	assert.Equal(t, "UKC001", conf1.BookingReference)

	_, err = eng.RefundTicket(ctx, conf1.BookingReference, "")
	require.NoError(t, err)

	conf2, err := eng.BookTicket(ctx, "james.thompson@email.com", second, "credit_card")
	require.NoError(t, err)
	assert.Equal(t, "UKC002", conf2.BookingReference)
	assert.NotEqual(t, conf1.BookingReference, conf2.BookingReference)
}

func TestGetCustomerBookings(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	upcoming := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, seat: "6A", price: 40.00})
	later := seedTicket(t, db, ticketFixture{departsIn: 48 * time.Hour, seat: "6B", price: 45.00})
	confUpcoming, err := eng.BookTicket(ctx, "james.thompson@email.com", upcoming, "credit_card")
	require.NoError(t, err)
	confLater, err := eng.BookTicket(ctx, "james.thompson@email.com", later, "credit_card")
	require.NoError(t, err)

	portfolio, err := eng.GetCustomerBookings(ctx, "james.thompson@email.com")
	require.NoError(t, err)
	require.Len(t, portfolio.ActiveBookings, 2)
	assert.Equal(t, confUpcoming.BookingReference, portfolio.ActiveBookings[0].BookingReference)
	assert.Equal(t, confLater.BookingReference, portfolio.ActiveBookings[1].BookingReference)
	assert.Len(t, portfolio.AllBookings, 2)

	_, err = eng.GetCustomerBookings(ctx, "nobody@email.com")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRecentTransactions(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()

	seedCustomer(t, db, "CUS001", "james.thompson@email.com")
	ticketID := seedTicket(t, db, ticketFixture{departsIn: 10 * time.Hour, seat: "7A", price: 40.00})
	conf, err := eng.BookTicket(ctx, "james.thompson@email.com", ticketID, "credit_card")
	require.NoError(t, err)
	_, err = eng.RefundTicket(ctx, conf.BookingReference, "")
	require.NoError(t, err)

	txns, err := eng.RecentTransactions(ctx, "james.thompson@email.com", 0, 10)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	// Both rows reference the now-deleted booking.
	assert.Equal(t, conf.BookingReference, txns[0].BookingReference)
	assert.Equal(t, conf.BookingReference, txns[1].BookingReference)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 25.63, roundHalfUp(25.625, 2))
	assert.Equal(t, 25.62, roundHalfUp(25.624, 2))
	assert.Equal(t, 0.01, roundHalfUp(0.005, 2))
	assert.Equal(t, 10.0, roundHalfUp(10.0, 2))
	assert.Equal(t, 2.3, roundHalfUp(2.25, 1))
}

func TestLoyaltyPoints(t *testing.T) {
	assert.Equal(t, 6, loyaltyPoints(67.50))
	assert.Equal(t, 1, loyaltyPoints(9.99))
	assert.Equal(t, 1, loyaltyPoints(0))
	assert.Equal(t, 12, loyaltyPoints(120.00))
}
