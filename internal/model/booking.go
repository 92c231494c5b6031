package model

import "time"

// Booking states.  A refunded booking is deleted from the ledger (its audit
// trail lives on in booking_history and transaction_info), so "refunded"
// appears only in history rows.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingRefunded  = "refunded"
	BookingUsed      = "used"
)

// Travel states tracked alongside the booking status.
const (
	TravelUpcoming   = "upcoming"
	TravelInProgress = "in_progress"
	TravelCompleted  = "completed"
	TravelMissed     = "missed"
	TravelCancelled  = "cancelled"
)

// BookedTicket is a confirmed purchase.  Trip fields are copied from the
// inventory ticket at booking time so that the booking stays meaningful
// after the inventory row is resold or reissued.
//
// Fields:
//  ID                      – primary key identifier.
//  BookingReference        – external reference (UKC###), unique forever.
//  CustomerID              – internal customer id.
//  OriginalAvailableTicketID – inventory row this booking was created from.
//  TrainNumber .. TicketType – trip snapshot.
//  OriginalPrice           – inventory base price at purchase time.
//  PaidPrice               – amount actually charged.
//  BookingStatus           – confirmed, cancelled, refunded or used.
//  TravelStatus            – upcoming, in_progress, completed, missed, cancelled.
//  PurchaseTime            – when the booking was made.
//  SpecialRequirements     – free-text assistance notes, optional.
//  LoyaltyPointsEarned     – max(1, floor(paidPrice × 0.1)).
//  LoyaltyPointsUsed       – reserved for future redemption support.
type BookedTicket struct {
	ID                        int64     `json:"id"`
	BookingReference          string    `json:"booking_reference"`
	CustomerID                int64     `json:"customer_id"`
	OriginalAvailableTicketID int64     `json:"original_available_ticket_id"`
	TrainNumber               string    `json:"train_number"`
	FromStation               string    `json:"from_station"`
	ToStation                 string    `json:"to_station"`
	DepartureTime             time.Time `json:"departure_time"`
	ArrivalTime               time.Time `json:"estimated_arrival_time"`
	SeatNumber                string    `json:"seat_number"`
	Carriage                  string    `json:"carriage"`
	TicketType                string    `json:"ticket_type"`
	OriginalPrice             float64   `json:"original_price"`
	PaidPrice                 float64   `json:"paid_price"`
	BookingStatus             string    `json:"booking_status"`
	TravelStatus              string    `json:"travel_status"`
	PurchaseTime              time.Time `json:"purchase_date"`
	SpecialRequirements       string    `json:"special_requirements,omitempty"`
	LoyaltyPointsEarned       int       `json:"loyalty_points_earned"`
	LoyaltyPointsUsed         int       `json:"loyalty_points_used"`
}
