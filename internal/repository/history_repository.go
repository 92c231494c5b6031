package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/model"
)

// HistoryRepo appends to and reads from the booking_history audit trail.
// Append-only, like the transaction ledger.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// InsertTx appends one audit entry within the given transaction.  During a
// refund this must run before the booking row is deleted so the
// booked_ticket_id it records is valid at write time.
func (r *HistoryRepo) InsertTx(ctx context.Context, tx *sql.Tx, h *model.HistoryEntry) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO booking_history (booked_ticket_id, action, old_status, new_status,
		   changed_fields, reason, changed_by, change_timestamp, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.BookedTicketID, h.Action, nullable(h.OldStatus), h.NewStatus,
		nullable(h.ChangedFields), nullable(h.Reason), h.ChangedBy,
		h.ChangeTime.UTC().Format(clock.Layout), nullable(h.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

// ListForBooking returns the audit entries for a booking id, oldest first.
func (r *HistoryRepo) ListForBooking(ctx context.Context, bookedTicketID int64) ([]model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booked_ticket_id, action, COALESCE(old_status, ''), COALESCE(new_status, ''),
		        COALESCE(changed_fields, ''), COALESCE(reason, ''), changed_by, change_timestamp, COALESCE(notes, '')
		 FROM booking_history
		 WHERE booked_ticket_id = ?
		 ORDER BY change_timestamp ASC, id ASC`, bookedTicketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.HistoryEntry, 0)
	for rows.Next() {
		var h model.HistoryEntry
		var at string
		if err := rows.Scan(&h.ID, &h.BookedTicketID, &h.Action, &h.OldStatus, &h.NewStatus,
			&h.ChangedFields, &h.Reason, &h.ChangedBy, &at, &h.Notes); err != nil {
			return nil, err
		}
		if h.ChangeTime, err = time.Parse(clock.Layout, at); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
