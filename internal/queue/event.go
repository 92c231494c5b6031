// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns them into the booking event log.
package queue

// BookingConfirmedEvent is published after a booking transaction commits.
// It carries enough of the trip snapshot for downstream consumers to log or
// notify without reading the primary database.
type BookingConfirmedEvent struct {
	BookingReference string  `json:"booking_reference"`
	CustomerRef      string  `json:"customer_reference"`
	TrainNumber      string  `json:"train_number"`
	FromStation      string  `json:"from_station"`
	ToStation        string  `json:"to_station"`
	DepartureTime    string  `json:"departure_time"`
	SeatNumber       string  `json:"seat_number"`
	Carriage         string  `json:"carriage"`
	TicketType       string  `json:"ticket_type"`
	PaidPrice        float64 `json:"paid_price"`
	PaymentMethod    string  `json:"payment_method"`
	ConfirmedAt      string  `json:"confirmed_at"`
}

// TicketRefundedEvent is published after a refund transaction commits.  The
// booking reference no longer resolves in the ledger by the time a consumer
// sees this event; NewTicketID points at the reissued inventory row.
type TicketRefundedEvent struct {
	BookingReference string  `json:"booking_reference"`
	TrainNumber      string  `json:"train_number"`
	FromStation      string  `json:"from_station"`
	ToStation        string  `json:"to_station"`
	DepartureTime    string  `json:"departure_time"`
	TicketType       string  `json:"ticket_type"`
	RefundAmount     float64 `json:"refund_amount"`
	RefundPercentage int     `json:"refund_percentage"`
	NewTicketID      int64   `json:"new_ticket_id"`
	Reason           string  `json:"reason,omitempty"`
	RefundedAt       string  `json:"refunded_at"`
}
