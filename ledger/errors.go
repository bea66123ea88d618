package ledger

import (
	"fmt"

	"invoicing-backend/models"
)

// The ledger surfaces five distinct, recoverable error kinds. Handlers map
// them to HTTP statuses in the central error handler; the ledger itself never
// retries or coerces them.

// NotFoundError: the referenced invoice/payment/client does not exist or does
// not belong to the requesting user.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InvalidTransitionError: the requested status change is not permitted from
// the invoice's current status.
type InvalidTransitionError struct {
	From models.InvoiceStatus
	To   models.InvoiceStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// ImmutableStateError: an attempt to edit items, payments, or core monetary
// inputs on a paid or cancelled invoice.
type ImmutableStateError struct {
	Status models.InvoiceStatus
}

func (e *ImmutableStateError) Error() string {
	return fmt.Sprintf("invoice in status %s cannot be modified", e.Status)
}

// ValidationError: malformed input (negative amounts, empty description,
// unsupported discount type, ...).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AllocationError: invoice-number allocation could not complete atomically.
// Invoice creation is aborted entirely when this occurs.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("invoice number allocation failed: %v", e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }
