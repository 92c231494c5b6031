package model

import "time"

// Transaction types recorded in the monetary ledger.
const (
	TransactionPurchase = "purchase"
	TransactionRefund   = "refund"
)

// Transaction statuses.
const (
	TransactionCompleted = "completed"
	TransactionPending   = "pending"
	TransactionFailed    = "failed"
)

// PaymentMethods is the closed set of payment method labels the engine
// persists.  Free-text caller input is normalized onto this set before any
// row is written.
var PaymentMethods = map[string]bool{
	"credit_card":       true,
	"debit_card":        true,
	"paypal":            true,
	"bank_transfer":     true,
	"voucher":           true,
	"apple_pay":         true,
	"google_pay":        true,
	"loyalty_points":    true,
	"corporate_account": true,
}

// Transaction is one row per monetary event on a booking.  The ledger is
// append-only: rows are never mutated or deleted, and they outlive the
// booking they reference (the booking reference is denormalized for that
// reason).
type Transaction struct {
	ID                int64     `json:"id"`
	CustomerID        int64     `json:"customer_id"`
	CustomerReference string    `json:"customer_reference"`
	BookedTicketID    int64     `json:"booked_ticket_id"`
	BookingReference  string    `json:"booking_reference"`
	TransactionType   string    `json:"transaction_type"`
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"payment_method"`
	TransactionTime   time.Time `json:"transaction_time"`
	Status            string    `json:"status"`
	ReferenceNumber   string    `json:"reference_number,omitempty"`
	PaymentProcessor  string    `json:"payment_processor,omitempty"`
	Currency          string    `json:"currency"`
	ProcessingFee     float64   `json:"processing_fee"`
	Notes             string    `json:"notes,omitempty"`
}
