package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"invoicing-backend/models"
)

// Explicit transition table for status-set requests: from-state -> legal
// targets. Overdue never appears as a stored state (it is derived on read),
// and paid is only left via payment reversal, not via an explicit set.
var transitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.StatusDraft:     {models.StatusSent, models.StatusViewed, models.StatusPaid, models.StatusCancelled},
	models.StatusSent:      {models.StatusViewed, models.StatusPaid, models.StatusCancelled},
	models.StatusViewed:    {models.StatusPaid, models.StatusCancelled},
	models.StatusPaid:      {},
	models.StatusCancelled: {},
}

// CanTransition reports whether an explicit status set from -> to is legal.
// Setting the current status again is always legal (idempotent no-op).
func CanTransition(from, to models.InvoiceStatus) bool {
	if from == to {
		return true
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ApplyStatus performs an explicit status-set on the invoice. Idempotent sets
// return nil without touching timestamps. Setting paid forces
// AmountPaid = Total and BalanceDue = 0 (the explicit "mark as paid" flow).
// Lifecycle timestamps are set only on first entry into their status.
func ApplyStatus(inv *models.Invoice, to models.InvoiceStatus, now time.Time) error {
	if inv.Status == to {
		return nil
	}
	if to == models.StatusOverdue {
		return &InvalidTransitionError{From: inv.Status, To: to}
	}
	if !CanTransition(inv.Status, to) {
		return &InvalidTransitionError{From: inv.Status, To: to}
	}

	inv.Status = to
	switch to {
	case models.StatusSent:
		if inv.SentAt == nil {
			inv.SentAt = &now
		}
	case models.StatusViewed:
		if inv.ViewedAt == nil {
			inv.ViewedAt = &now
		}
	case models.StatusPaid:
		inv.AmountPaid = inv.Total
		inv.BalanceDue = decimal.Zero
		if inv.PaidAt == nil {
			inv.PaidAt = &now
		}
	}
	return nil
}

// settle transitions the invoice to paid as a side effect of payment
// recording once the balance reaches zero. Unlike an explicit set it does not
// force AmountPaid (the recorded payments already determine it).
func settle(inv *models.Invoice, now time.Time) {
	if inv.Status == models.StatusPaid {
		return
	}
	inv.Status = models.StatusPaid
	if inv.PaidAt == nil {
		inv.PaidAt = &now
	}
}

// revertFromPaid drops a paid invoice back below paid after a payment
// deletion reopened its balance: sent if it was ever sent, else draft.
// PaidAt is cleared; SentAt/ViewedAt are history and stay.
func revertFromPaid(inv *models.Invoice) {
	if inv.SentAt != nil {
		inv.Status = models.StatusSent
	} else {
		inv.Status = models.StatusDraft
	}
	inv.PaidAt = nil
}

// EnsureEditable rejects edits to items, client, dates, tax, or discount on
// paid or cancelled invoices.
func EnsureEditable(inv *models.Invoice) error {
	if inv.Status == models.StatusPaid || inv.Status == models.StatusCancelled {
		return &ImmutableStateError{Status: inv.Status}
	}
	return nil
}

// EffectiveStatus is the display status: an unpaid, uncancelled invoice past
// its due date with an open balance reads as overdue. Computed on read so an
// invoice can never be stuck overdue once settled.
func EffectiveStatus(inv *models.Invoice, now time.Time) models.InvoiceStatus {
	switch inv.Status {
	case models.StatusPaid, models.StatusCancelled:
		return inv.Status
	}
	if inv.DueDate != nil && now.After(*inv.DueDate) && inv.BalanceDue.IsPositive() {
		return models.StatusOverdue
	}
	return inv.Status
}
