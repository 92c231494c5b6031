package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukconnect/rail-booking/internal/model"
)

func TestFindApplicableRule(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefundRuleRepo(db)
	ctx := context.Background()

	cases := []struct {
		name       string
		ticketType string
		hours      float64
		wantPct    int
		wantFee    float64
	}{
		{"flexible anytime", model.ClassFlexible, 0.5, 100, 0},
		{"flexible far out", model.ClassFlexible, 100, 100, 0},
		{"standard early", model.ClassStandard, 30, 100, 0},
		{"standard exactly at 24h boundary", model.ClassStandard, 24, 100, 0},
		{"standard mid tier", model.ClassStandard, 10, 75, 25},
		{"standard late", model.ClassStandard, 1, 50, 50},
		{"first class mid tier", model.ClassFirstClass, 10, 75, 50},
		{"first class late", model.ClassFirstClass, 0.1, 50, 75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := repo.FindApplicable(ctx, tc.ticketType, tc.hours)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPct, rule.RefundPercentage)
			assert.Equal(t, tc.wantFee, rule.CancellationFee)
		})
	}
}

func TestFindApplicableRuleGaps(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefundRuleRepo(db)
	ctx := context.Background()

	// Departure in the past matches no tier; that is a policy decision, not
	// a free pass to a default percentage.
	_, err := repo.FindApplicable(ctx, model.ClassStandard, -1)
	assert.ErrorIs(t, err, ErrNoApplicableRule)

	_, err = repo.FindApplicable(ctx, "super_saver", 10)
	assert.ErrorIs(t, err, ErrNoApplicableRule)
}

func TestListForType(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefundRuleRepo(db)

	rules, err := repo.ListForType(context.Background(), model.ClassStandard)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, 24, rules[0].HoursBeforeDeparture)
	assert.Equal(t, 4, rules[1].HoursBeforeDeparture)
	assert.Equal(t, 0, rules[2].HoursBeforeDeparture)
}
