// Package engine implements the booking engine: the single component with
// write access to the inventory, ledger, transaction and history tables.
// Each mutating operation runs as one SQL transaction; a caller observes
// either the full post-state or the full pre-state, never a partial write.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/location"
	"github.com/ukconnect/rail-booking/internal/model"
	"github.com/ukconnect/rail-booking/internal/repository"
)

// Engine coordinates the repositories behind the booking operations.  It is
// safe for concurrent use; the no-double-booking guarantee rests on the
// conditional UPDATE in InventoryRepo.MarkSoldTx, not on external locking.
type Engine struct {
	db       *sql.DB
	clk      clock.Clock
	resolver *location.Resolver

	customers    *repository.CustomerRepo
	inventory    *repository.InventoryRepo
	bookings     *repository.BookingRepo
	transactions *repository.TransactionRepo
	history      *repository.HistoryRepo
	rules        *repository.RefundRuleRepo
	schedules    *repository.ScheduleRepo
}

// New builds an Engine over the given store, clock and location resolver.
func New(db *sql.DB, clk clock.Clock, resolver *location.Resolver) *Engine {
	return &Engine{
		db:           db,
		clk:          clk,
		resolver:     resolver,
		customers:    repository.NewCustomerRepo(db),
		inventory:    repository.NewInventoryRepo(db),
		bookings:     repository.NewBookingRepo(db),
		transactions: repository.NewTransactionRepo(db),
		history:      repository.NewHistoryRepo(db),
		rules:        repository.NewRefundRuleRepo(db),
		schedules:    repository.NewScheduleRepo(db),
	}
}

// Now is the engine's notion of the current time, fixed in demo and test
// environments.
func (e *Engine) Now() time.Time { return e.clk.Now() }

// BookingConfirmation is the successful result of BookTicket.
type BookingConfirmation struct {
	BookingID           int64              `json:"booking_id"`
	BookingReference    string             `json:"booking_reference"`
	CustomerReference   string             `json:"customer_reference"`
	PaidPrice           float64            `json:"paid_price"`
	PaymentMethod       string             `json:"payment_method"`
	LoyaltyPointsEarned int                `json:"loyalty_points_earned"`
	Trip                model.BookedTicket `json:"trip"`
}

// BookTicket sells one inventory ticket to the customer identified by
// email.  The whole sequence — compare-and-set on the inventory row, ledger
// insert, transaction and history appends — commits or rolls back as one
// unit.  Two concurrent calls for the same ticket id cannot both succeed:
// the loser observes KindConflict.
func (e *Engine) BookTicket(ctx context.Context, customerEmail string, ticketID int64, paymentMethod string) (*BookingConfirmation, error) {
	if ticketID <= 0 {
		return nil, newError(KindValidation, "ticket id must be a positive integer")
	}
	method, err := normalizePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}
	customer, err := e.lookupCustomer(ctx, customerEmail)
	if err != nil {
		return nil, err
	}

	now := e.clk.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := e.inventory.GetByIDTx(ctx, tx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return nil, newError(KindNotFound, "ticket %d not found", ticketID)
	}
	if err != nil {
		return nil, storageError(err)
	}
	if ticket.AvailabilityStatus != model.AvailabilityAvailable {
		return nil, newError(KindConflict, "ticket %d has already been sold", ticketID)
	}

	// The race arbiter: exactly one concurrent caller gets the row.
	if err := e.inventory.MarkSoldTx(ctx, tx, ticketID); err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketSold):
			return nil, newError(KindConflict, "ticket %d has already been sold", ticketID)
		case errors.Is(err, repository.ErrTicketNotFound):
			return nil, newError(KindNotFound, "ticket %d not found", ticketID)
		default:
			return nil, storageError(err)
		}
	}

	ref, err := e.bookings.NextReferenceTx(ctx, tx)
	if errors.Is(err, repository.ErrReferenceExhausted) {
		return nil, newError(KindResourceExhaustion, "could not allocate a booking reference")
	}
	if err != nil {
		return nil, storageError(err)
	}

	booking := &model.BookedTicket{
		BookingReference:          ref,
		CustomerID:                customer.ID,
		OriginalAvailableTicketID: ticket.ID,
		TrainNumber:               ticket.TrainNumber,
		FromStation:               ticket.FromStation,
		ToStation:                 ticket.ToStation,
		DepartureTime:             ticket.DepartureTime,
		ArrivalTime:               ticket.ArrivalTime,
		SeatNumber:                ticket.SeatNumber,
		Carriage:                  ticket.Carriage,
		TicketType:                ticket.TicketType,
		OriginalPrice:             ticket.BasePrice,
		PaidPrice:                 ticket.CurrentPrice,
		BookingStatus:             model.BookingConfirmed,
		TravelStatus:              model.TravelUpcoming,
		PurchaseTime:              now,
		LoyaltyPointsEarned:       loyaltyPoints(ticket.CurrentPrice),
	}
	if err := e.bookings.CreateTx(ctx, tx, booking); err != nil {
		return nil, storageError(err)
	}

	txn := &model.Transaction{
		CustomerID:        customer.ID,
		CustomerReference: customer.CustomerID,
		BookedTicketID:    booking.ID,
		BookingReference:  ref,
		TransactionType:   model.TransactionPurchase,
		Amount:            ticket.CurrentPrice,
		PaymentMethod:     method,
		TransactionTime:   now,
		Status:            model.TransactionCompleted,
		ReferenceNumber:   fmt.Sprintf("TXN-%s-%d", ref, now.Unix()),
		PaymentProcessor:  processorFor(method),
		Currency:          "GBP",
	}
	if err := e.transactions.InsertTx(ctx, tx, txn); err != nil {
		return nil, storageError(err)
	}

	changed, _ := json.Marshal(map[string]any{
		"booking_reference":   ref,
		"available_ticket_id": ticket.ID,
		"paid_price":          ticket.CurrentPrice,
	})
	entry := &model.HistoryEntry{
		BookedTicketID: booking.ID,
		Action:         model.ActionBooked,
		NewStatus:      model.BookingConfirmed,
		ChangedFields:  string(changed),
		ChangedBy:      "customer",
		ChangeTime:     now,
	}
	if err := e.history.InsertTx(ctx, tx, entry); err != nil {
		return nil, storageError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError(err)
	}
	committed = true

	return &BookingConfirmation{
		BookingID:           booking.ID,
		BookingReference:    ref,
		CustomerReference:   customer.CustomerID,
		PaidPrice:           booking.PaidPrice,
		PaymentMethod:       method,
		LoyaltyPointsEarned: booking.LoyaltyPointsEarned,
		Trip:                *booking,
	}, nil
}

// RefundQuote is the result of CalculateRefund: a pure read, no mutation.
type RefundQuote struct {
	BookingReference    string  `json:"booking_reference"`
	PaidPrice           float64 `json:"paid_price"`
	RefundAmount        float64 `json:"refund_amount"`
	RefundPercentage    int     `json:"refund_percentage"`
	CancellationFee     float64 `json:"cancellation_fee"`
	HoursUntilDeparture float64 `json:"hours_until_departure"`
	RuleDescription     string  `json:"rule_description"`
}

// CalculateRefund prices a hypothetical refund of the booking without
// changing anything.
func (e *Engine) CalculateRefund(ctx context.Context, bookingReference string) (*RefundQuote, error) {
	booking, err := e.bookings.GetByReference(ctx, bookingReference)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, newError(KindNotFound, "booking %s not found", bookingReference)
	}
	if err != nil {
		return nil, storageError(err)
	}
	return e.quoteRefund(ctx, booking)
}

func (e *Engine) quoteRefund(ctx context.Context, booking *model.BookedTicket) (*RefundQuote, error) {
	switch booking.BookingStatus {
	case model.BookingUsed, model.BookingCancelled, model.BookingRefunded:
		return nil, newError(KindInvalidState, "booking %s is %s and cannot be refunded",
			booking.BookingReference, booking.BookingStatus)
	}

	// May be negative when the departure has passed; it still flows into
	// the rule lookup, which then reports a policy gap.
	hours := booking.DepartureTime.Sub(e.clk.Now()).Hours()

	rule, err := e.rules.FindApplicable(ctx, booking.TicketType, hours)
	if errors.Is(err, repository.ErrNoApplicableRule) {
		return nil, newError(KindPolicyGap, "no refund rule covers %s tickets %.1f hours before departure",
			booking.TicketType, hours)
	}
	if err != nil {
		return nil, storageError(err)
	}

	amount := booking.PaidPrice*float64(rule.RefundPercentage)/100 - rule.CancellationFee
	if amount < 0 {
		amount = 0
	}

	return &RefundQuote{
		BookingReference:    booking.BookingReference,
		PaidPrice:           booking.PaidPrice,
		RefundAmount:        roundHalfUp(amount, 2),
		RefundPercentage:    rule.RefundPercentage,
		CancellationFee:     rule.CancellationFee,
		HoursUntilDeparture: roundHalfUp(hours, 1),
		RuleDescription:     rule.Description,
	}, nil
}

// RefundResult is the successful outcome of RefundTicket.  The original
// booking reference no longer resolves; NewTicketID is the reissued
// inventory row now back on sale.  Trip carries the deleted booking's
// snapshot for callers that report on the refunded journey.
type RefundResult struct {
	BookingReference string             `json:"booking_reference"`
	RefundAmount     float64            `json:"refund_amount"`
	RefundPercentage int                `json:"refund_percentage"`
	CancellationFee  float64            `json:"cancellation_fee"`
	NewTicketID      int64              `json:"new_ticket_id"`
	Trip             model.BookedTicket `json:"trip"`
}

// RefundTicket cancels a booking: it reissues the seat as fresh inventory,
// appends the audit and ledger rows while the booking still exists, then
// deletes the booking — all in one transaction.  The reissued row gets a
// new id; the originally sold inventory row stays sold for audit.
func (e *Engine) RefundTicket(ctx context.Context, bookingReference, reason string) (*RefundResult, error) {
	if strings.TrimSpace(bookingReference) == "" {
		return nil, newError(KindValidation, "booking reference is required")
	}

	now := e.clk.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := e.bookings.GetByReferenceTx(ctx, tx, bookingReference)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, newError(KindNotFound, "booking %s not found", bookingReference)
	}
	if err != nil {
		return nil, storageError(err)
	}

	quote, err := e.quoteRefund(ctx, booking)
	if err != nil {
		return nil, err
	}

	// Reissue the seat for resale at the price that was paid.
	reissued := &model.AvailableTicket{
		TrainNumber:        booking.TrainNumber,
		FromStation:        booking.FromStation,
		ToStation:          booking.ToStation,
		DepartureTime:      booking.DepartureTime,
		ArrivalTime:        booking.ArrivalTime,
		SeatNumber:         booking.SeatNumber,
		Carriage:           booking.Carriage,
		TicketType:         booking.TicketType,
		BasePrice:          booking.PaidPrice,
		CurrentPrice:       booking.PaidPrice,
		AvailabilityStatus: model.AvailabilityAvailable,
		BookingClass:       bookingClassFor(booking.TicketType),
	}
	newTicketID, err := e.inventory.InsertTx(ctx, tx, reissued)
	if err != nil {
		return nil, storageError(err)
	}

	// History and ledger rows reference the booking id, so they are
	// written before the booking row is deleted.
	changed, _ := json.Marshal(map[string]any{
		"refund_amount":     quote.RefundAmount,
		"refund_percentage": quote.RefundPercentage,
		"reissued_ticket":   newTicketID,
	})
	entry := &model.HistoryEntry{
		BookedTicketID: booking.ID,
		Action:         model.ActionRefunded,
		OldStatus:      model.BookingConfirmed,
		NewStatus:      model.BookingRefunded,
		ChangedFields:  string(changed),
		Reason:         reason,
		ChangedBy:      "customer",
		ChangeTime:     now,
	}
	if err := e.history.InsertTx(ctx, tx, entry); err != nil {
		return nil, storageError(err)
	}

	method, err := e.purchaseMethodTx(ctx, tx, bookingReference)
	if err != nil {
		return nil, storageError(err)
	}
	txn := &model.Transaction{
		CustomerID:       booking.CustomerID,
		BookedTicketID:   booking.ID,
		BookingReference: bookingReference,
		TransactionType:  model.TransactionRefund,
		Amount:           quote.RefundAmount,
		PaymentMethod:    method,
		TransactionTime:  now,
		Status:           model.TransactionCompleted,
		ReferenceNumber:  fmt.Sprintf("RFD-%s-%d", bookingReference, now.Unix()),
		PaymentProcessor: processorFor(method),
		Currency:         "GBP",
		Notes:            reason,
	}
	if err := e.transactions.InsertTx(ctx, tx, txn); err != nil {
		return nil, storageError(err)
	}

	if err := e.bookings.DeleteTx(ctx, tx, booking.ID); err != nil {
		return nil, storageError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError(err)
	}
	committed = true

	refunded := *booking
	refunded.BookingStatus = model.BookingRefunded
	return &RefundResult{
		BookingReference: bookingReference,
		RefundAmount:     quote.RefundAmount,
		RefundPercentage: quote.RefundPercentage,
		CancellationFee:  quote.CancellationFee,
		NewTicketID:      newTicketID,
		Trip:             refunded,
	}, nil
}

// purchaseMethodTx looks up the payment method of the original purchase so
// the refund is issued back the same way.  Defaults to credit_card when the
// purchase predates the ledger.
func (e *Engine) purchaseMethodTx(ctx context.Context, tx *sql.Tx, bookingReference string) (string, error) {
	var method string
	err := tx.QueryRowContext(ctx,
		`SELECT payment_method FROM transaction_info
		 WHERE booking_reference = ? AND transaction_type = 'purchase'
		 ORDER BY id DESC LIMIT 1`, bookingReference).Scan(&method)
	if err == sql.ErrNoRows {
		return "credit_card", nil
	}
	if err != nil {
		return "", err
	}
	return method, nil
}

// loyaltyPoints earns one point per £10 paid, minimum one point.
func loyaltyPoints(paidPrice float64) int {
	p := int(math.Floor(paidPrice * 0.1))
	if p < 1 {
		p = 1
	}
	return p
}

// roundHalfUp rounds x half-up to the given number of decimal places.
func roundHalfUp(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Floor(x*shift+0.5) / shift
}

func bookingClassFor(ticketType string) string {
	if ticketType == model.ClassFirstClass {
		return "first_class"
	}
	return "standard"
}

func processorFor(method string) string {
	switch method {
	case "paypal":
		return "PayPal"
	case "apple_pay":
		return "Apple Pay"
	case "google_pay":
		return "Google Pay"
	case "bank_transfer", "corporate_account":
		return "BACS"
	default:
		return "Stripe"
	}
}
