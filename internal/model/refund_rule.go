package model

// RefundRule is one tier of the refund policy for a fare class.  For a
// given (ticket type, hours until departure) the applicable rule is the
// active rule with the largest HoursBeforeDeparture threshold that is still
// ≤ the hours remaining.  Seeded tiers model e.g. full refund ≥24h, 75%
// between 4–24h and 50% under 4h for standard fares, with flexible fares
// unconditionally refundable at threshold 0.
type RefundRule struct {
	ID                   int64   `json:"id"`
	TicketType           string  `json:"ticket_type"`
	HoursBeforeDeparture int     `json:"hours_before_departure"`
	RefundPercentage     int     `json:"refund_percentage"`
	CancellationFee      float64 `json:"cancellation_fee"`
	IsActive             bool    `json:"is_active"`
	Description          string  `json:"rule_description"`
}
