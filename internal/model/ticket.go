package model

import "time"

// Ticket classes govern pricing and refund policy.
const (
	ClassStandard   = "standard"
	ClassFlexible   = "flexible"
	ClassFirstClass = "first_class"
)

// Availability states of an inventory ticket.  A ticket transitions from
// available to sold exactly once; a refund reissues a fresh row rather than
// resurrecting the sold one.
const (
	AvailabilityAvailable = "available"
	AvailabilitySold      = "sold"
)

// AvailableTicket is a sellable seat on a scheduled service.
//
// Fields:
//  ID              – primary key identifier, immutable once created.
//  TrainNumber     – operating service (e.g. "UK102").
//  FromStation     – canonical departure station.
//  ToStation       – canonical arrival station.
//  DepartureTime   – scheduled departure (UTC).
//  ArrivalTime     – scheduled arrival (UTC).
//  SeatNumber      – seat within the carriage (e.g. "12A").
//  Carriage        – carriage label.
//  TicketType      – fare class (standard, flexible, first_class).
//  BasePrice       – list price in GBP.
//  CurrentPrice    – price after dynamic adjustments; what a buyer pays.
//  AvailabilityStatus – available or sold.
//  BookingClass    – cabin class (economy, standard, first_class).
//  Amenities       – JSON bag of seat amenities (wifi, power, table, ...).
//  RouteDistanceKM – journey distance, for display.
type AvailableTicket struct {
	ID                 int64     `json:"id"`
	TrainNumber        string    `json:"train_number"`
	FromStation        string    `json:"from_station"`
	ToStation          string    `json:"to_station"`
	DepartureTime      time.Time `json:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time"`
	SeatNumber         string    `json:"seat_number"`
	Carriage           string    `json:"carriage"`
	TicketType         string    `json:"ticket_type"`
	BasePrice          float64   `json:"base_price"`
	CurrentPrice       float64   `json:"current_price"`
	AvailabilityStatus string    `json:"availability_status"`
	BookingClass       string    `json:"booking_class"`
	Amenities          string    `json:"amenities,omitempty"`
	RouteDistanceKM    int       `json:"route_distance_km,omitempty"`
}

// ValidTicketType reports whether s is one of the known fare classes.
func ValidTicketType(s string) bool {
	switch s {
	case ClassStandard, ClassFlexible, ClassFirstClass:
		return true
	}
	return false
}
