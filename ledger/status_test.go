package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing-backend/models"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to models.InvoiceStatus }{
		{models.StatusDraft, models.StatusSent},
		{models.StatusDraft, models.StatusViewed}, // share link opened on a draft
		{models.StatusDraft, models.StatusPaid},
		{models.StatusDraft, models.StatusCancelled},
		{models.StatusSent, models.StatusViewed},
		{models.StatusSent, models.StatusPaid},
		{models.StatusSent, models.StatusCancelled},
		{models.StatusViewed, models.StatusPaid},
		{models.StatusViewed, models.StatusCancelled},
	}
	for _, tr := range allowed {
		assert.Truef(t, CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	rejected := []struct{ from, to models.InvoiceStatus }{
		{models.StatusSent, models.StatusDraft},
		{models.StatusViewed, models.StatusSent},
		{models.StatusPaid, models.StatusSent},
		{models.StatusPaid, models.StatusCancelled},
		{models.StatusCancelled, models.StatusDraft},
		{models.StatusCancelled, models.StatusPaid},
	}
	for _, tr := range rejected {
		assert.Falsef(t, CanTransition(tr.from, tr.to), "%s -> %s should be rejected", tr.from, tr.to)
	}

	// Setting the current status again is always legal.
	for _, s := range []models.InvoiceStatus{models.StatusDraft, models.StatusSent, models.StatusPaid, models.StatusCancelled} {
		assert.True(t, CanTransition(s, s))
	}
}

func TestApplyStatusIdempotent(t *testing.T) {
	now := time.Now().UTC()
	sent := now.Add(-time.Hour)
	inv := &models.Invoice{Status: models.StatusSent, SentAt: &sent}

	require.NoError(t, ApplyStatus(inv, models.StatusSent, now))
	assert.Equal(t, models.StatusSent, inv.Status)
	assert.Equal(t, sent, *inv.SentAt) // timestamp untouched
}

func TestApplyStatusSetsTimestampsOnce(t *testing.T) {
	now := time.Now().UTC()
	inv := &models.Invoice{Status: models.StatusDraft}

	require.NoError(t, ApplyStatus(inv, models.StatusSent, now))
	require.NotNil(t, inv.SentAt)
	first := *inv.SentAt

	// Reversal path later re-sends; SentAt must not move.
	inv.Status = models.StatusDraft
	require.NoError(t, ApplyStatus(inv, models.StatusSent, now.Add(time.Hour)))
	assert.Equal(t, first, *inv.SentAt)
}

func TestApplyStatusExplicitPaidForcesAmounts(t *testing.T) {
	now := time.Now().UTC()
	inv := &models.Invoice{Status: models.StatusSent, Total: d("88.00"), BalanceDue: d("88.00")}

	require.NoError(t, ApplyStatus(inv, models.StatusPaid, now))
	assert.Equal(t, models.StatusPaid, inv.Status)
	requireEq(t, "amount_paid", d("88.00"), inv.AmountPaid)
	requireEq(t, "balance_due", d("0"), inv.BalanceDue)
	require.NotNil(t, inv.PaidAt)
}

func TestApplyStatusRejectsOverdue(t *testing.T) {
	inv := &models.Invoice{Status: models.StatusSent}
	err := ApplyStatus(inv, models.StatusOverdue, time.Now().UTC())

	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, models.StatusSent, inv.Status)
}

func TestRevertFromPaid(t *testing.T) {
	now := time.Now().UTC()

	t.Run("reverts to sent when ever sent", func(t *testing.T) {
		inv := &models.Invoice{Status: models.StatusPaid, SentAt: &now, PaidAt: &now}
		revertFromPaid(inv)
		assert.Equal(t, models.StatusSent, inv.Status)
		assert.Nil(t, inv.PaidAt)
		assert.NotNil(t, inv.SentAt)
	})

	t.Run("reverts to draft when never sent", func(t *testing.T) {
		inv := &models.Invoice{Status: models.StatusPaid, PaidAt: &now}
		revertFromPaid(inv)
		assert.Equal(t, models.StatusDraft, inv.Status)
		assert.Nil(t, inv.PaidAt)
	})
}

func TestEnsureEditable(t *testing.T) {
	for _, s := range []models.InvoiceStatus{models.StatusDraft, models.StatusSent, models.StatusViewed} {
		assert.NoError(t, EnsureEditable(&models.Invoice{Status: s}))
	}
	for _, s := range []models.InvoiceStatus{models.StatusPaid, models.StatusCancelled} {
		err := EnsureEditable(&models.Invoice{Status: s})
		var ise *ImmutableStateError
		require.ErrorAs(t, err, &ise)
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name string
		inv  models.Invoice
		want models.InvoiceStatus
	}{
		{"past due with open balance", models.Invoice{Status: models.StatusSent, DueDate: &past, BalanceDue: d("10")}, models.StatusOverdue},
		{"past due but settled", models.Invoice{Status: models.StatusSent, DueDate: &past, BalanceDue: d("0")}, models.StatusSent},
		{"not yet due", models.Invoice{Status: models.StatusSent, DueDate: &future, BalanceDue: d("10")}, models.StatusSent},
		{"paid never shows overdue", models.Invoice{Status: models.StatusPaid, DueDate: &past}, models.StatusPaid},
		{"cancelled never shows overdue", models.Invoice{Status: models.StatusCancelled, DueDate: &past, BalanceDue: d("10")}, models.StatusCancelled},
		{"no due date", models.Invoice{Status: models.StatusViewed, BalanceDue: d("10")}, models.StatusViewed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveStatus(&tt.inv, now))
		})
	}
}
