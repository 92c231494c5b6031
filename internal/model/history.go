package model

import "time"

// History actions.
const (
	ActionBooked   = "booked"
	ActionRefunded = "refunded"
)

// HistoryEntry is one append-only audit row per booking-affecting
// operation, written inside the same transaction as the booking mutation it
// records.
type HistoryEntry struct {
	ID             int64     `json:"id"`
	BookedTicketID int64     `json:"booked_ticket_id"`
	Action         string    `json:"action"`
	OldStatus      string    `json:"old_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	ChangedFields  string    `json:"changed_fields,omitempty"` // JSON payload
	Reason         string    `json:"reason,omitempty"`
	ChangedBy      string    `json:"changed_by"`
	ChangeTime     time.Time `json:"change_timestamp"`
	Notes          string    `json:"notes,omitempty"`
}
