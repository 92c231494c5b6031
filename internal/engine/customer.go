package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ukconnect/rail-booking/internal/model"
	"github.com/ukconnect/rail-booking/internal/repository"
)

// CustomerBookings is the portfolio view for one customer: active bookings
// (confirmed, departure still ahead) separated from the full booking list.
type CustomerBookings struct {
	Customer       model.Customer       `json:"customer"`
	ActiveBookings []model.BookedTicket `json:"active_bookings"`
	AllBookings    []model.BookedTicket `json:"all_bookings"`
}

// GetCustomerBookings resolves a customer by email and returns their
// bookings: active ones ordered soonest departure first, the full list
// newest purchase first.  Refunded bookings never appear — they are deleted
// from the ledger, surviving only in history and transactions.
func (e *Engine) GetCustomerBookings(ctx context.Context, customerEmail string) (*CustomerBookings, error) {
	customer, err := e.lookupCustomer(ctx, customerEmail)
	if err != nil {
		return nil, err
	}

	active, err := e.bookings.ActiveForCustomer(ctx, customer.ID, e.clk.Now())
	if err != nil {
		return nil, storageError(err)
	}
	all, err := e.bookings.AllForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, storageError(err)
	}

	return &CustomerBookings{
		Customer:       *customer,
		ActiveBookings: active,
		AllBookings:    all,
	}, nil
}

// ActiveTickets returns only the customer's upcoming confirmed bookings.
func (e *Engine) ActiveTickets(ctx context.Context, customerEmail string) ([]model.BookedTicket, error) {
	customer, err := e.lookupCustomer(ctx, customerEmail)
	if err != nil {
		return nil, err
	}
	active, err := e.bookings.ActiveForCustomer(ctx, customer.ID, e.clk.Now())
	if err != nil {
		return nil, storageError(err)
	}
	return active, nil
}

const defaultTransactionWindowDays = 30

// RecentTransactions returns the customer's ledger rows from the last
// `days` days, newest first.  Zero or negative days falls back to the
// 30-day default.
func (e *Engine) RecentTransactions(ctx context.Context, customerEmail string, days, limit int) ([]model.Transaction, error) {
	customer, err := e.lookupCustomer(ctx, customerEmail)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultTransactionWindowDays
	}
	since := e.clk.Now().Add(-time.Duration(days) * 24 * time.Hour)
	txns, err := e.transactions.RecentForCustomer(ctx, customer.ID, since, limit)
	if err != nil {
		return nil, storageError(err)
	}
	return txns, nil
}

// BookingHistory returns the audit trail of a booking, oldest entry first.
// It works for live bookings; a refunded booking's trail remains in the
// table but is keyed by the deleted booking's internal id.
func (e *Engine) BookingHistory(ctx context.Context, bookingReference string) ([]model.HistoryEntry, error) {
	booking, err := e.bookings.GetByReference(ctx, bookingReference)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, newError(KindNotFound, "booking %s not found", bookingReference)
	}
	if err != nil {
		return nil, storageError(err)
	}
	entries, err := e.history.ListForBooking(ctx, booking.ID)
	if err != nil {
		return nil, storageError(err)
	}
	return entries, nil
}

func (e *Engine) lookupCustomer(ctx context.Context, email string) (*model.Customer, error) {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return nil, newError(KindValidation, "a valid customer email is required")
	}
	customer, err := e.customers.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return nil, newError(KindNotFound, "no customer registered for %s", email)
	}
	if err != nil {
		return nil, storageError(err)
	}
	return customer, nil
}
