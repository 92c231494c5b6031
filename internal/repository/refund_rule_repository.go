package repository

import (
	"context"
	"database/sql"

	"github.com/ukconnect/rail-booking/internal/model"
)

// RefundRuleRepo reads the static refund policy table.  The engine never
// writes refund rules; they are seeded at schema creation and maintained
// out of band.
type RefundRuleRepo struct {
	db *sql.DB
}

// NewRefundRuleRepo returns a RefundRuleRepo bound to the given database.
func NewRefundRuleRepo(db *sql.DB) *RefundRuleRepo { return &RefundRuleRepo{db: db} }

// FindApplicable selects the refund tier for a fare class and the hours
// remaining until departure: the active rule with the largest
// hours_before_departure threshold that is still ≤ hoursUntilDeparture.
// A negative hoursUntilDeparture (departure already passed) matches no
// seeded tier and yields ErrNoApplicableRule rather than a silent 0% or
// 100% default.
func (r *RefundRuleRepo) FindApplicable(ctx context.Context, ticketType string, hoursUntilDeparture float64) (*model.RefundRule, error) {
	var rule model.RefundRule
	err := r.db.QueryRowContext(ctx,
		`SELECT id, ticket_type, hours_before_departure, refund_percentage, cancellation_fee, is_active, COALESCE(rule_description, '')
		 FROM refund_rules
		 WHERE ticket_type = ? AND is_active = 1 AND hours_before_departure <= ?
		 ORDER BY hours_before_departure DESC
		 LIMIT 1`,
		ticketType, hoursUntilDeparture).Scan(
		&rule.ID, &rule.TicketType, &rule.HoursBeforeDeparture, &rule.RefundPercentage,
		&rule.CancellationFee, &rule.IsActive, &rule.Description)
	if err == sql.ErrNoRows {
		return nil, ErrNoApplicableRule
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListForType returns all active tiers for a fare class, highest threshold
// first.  Used for policy display.
func (r *RefundRuleRepo) ListForType(ctx context.Context, ticketType string) ([]model.RefundRule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticket_type, hours_before_departure, refund_percentage, cancellation_fee, is_active, COALESCE(rule_description, '')
		 FROM refund_rules
		 WHERE ticket_type = ? AND is_active = 1
		 ORDER BY hours_before_departure DESC`, ticketType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RefundRule, 0)
	for rows.Next() {
		var rule model.RefundRule
		if err := rows.Scan(&rule.ID, &rule.TicketType, &rule.HoursBeforeDeparture, &rule.RefundPercentage,
			&rule.CancellationFee, &rule.IsActive, &rule.Description); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
