package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusSent      InvoiceStatus = "sent"
	StatusViewed    InvoiceStatus = "viewed"
	StatusPaid      InvoiceStatus = "paid"
	StatusOverdue   InvoiceStatus = "overdue" // derived on read, never stored
	StatusCancelled InvoiceStatus = "cancelled"
)

// DiscountType selects how DiscountValue is applied to the subtotal.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DueTerms drives DueDate derivation from IssueDate.
type DueTerms string

const (
	DueOnReceipt DueTerms = "due_on_receipt"
	DueNet7      DueTerms = "net_7"
	DueNet15     DueTerms = "net_15"
	DueNet30     DueTerms = "net_30"
	DueNet60     DueTerms = "net_60"
	DueCustom    DueTerms = "custom"
)

// Invoice is the current/live state of a billable document.
// Monetary fields are stored at 2 decimal places; they are derived by the
// ledger package and must never be written directly by handlers.
type Invoice struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	UserID        string `json:"-" gorm:"size:36;not null;uniqueIndex:idx_invoices_user_number,priority:1"`
	InvoiceNumber string `json:"invoice_number" gorm:"size:32;not null;uniqueIndex:idx_invoices_user_number,priority:2"`
	PublicToken   string `json:"public_token" gorm:"size:36;uniqueIndex"`

	ClientID uint   `json:"client_id" gorm:"not null;index"`
	Client   Client `json:"client" gorm:"foreignKey:ClientID;references:ID"`

	Status   InvoiceStatus `json:"status" gorm:"size:12;not null;default:'draft';index"`
	Currency string        `json:"currency" gorm:"size:3;not null;default:'EUR'"` // label only, never converted

	IssueDate time.Time  `json:"issue_date" gorm:"not null"`
	DueTerms  DueTerms   `json:"due_terms" gorm:"size:16;not null;default:'net_30'"`
	DueDate   *time.Time `json:"due_date"`

	// Live items and payments (owned; removed with the invoice)
	Items    []LineItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments []Payment  `json:"payments" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	DiscountType   DiscountType    `json:"discount_type" gorm:"size:12;not null;default:'none'"`
	DiscountValue  decimal.Decimal `json:"discount_value" gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2)"`
	TaxRate        decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,2)"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`

	// Payments rollup
	AmountPaid decimal.Decimal `json:"amount_paid" gorm:"type:numeric(12,2)"`
	BalanceDue decimal.Decimal `json:"balance_due" gorm:"type:numeric(12,2)"`

	Notes string `json:"notes"`
	Terms string `json:"terms"`

	// Set once on first entry into the matching status; PaidAt is cleared
	// again when a payment reversal drops the invoice below paid.
	SentAt   *time.Time `json:"sent_at"`
	ViewedAt *time.Time `json:"viewed_at"`
	PaidAt   *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineItem is one billable row on an invoice. Amount is computed and stored
// at item-write time (quantity x rate, rounded), not recomputed lazily.
type LineItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	InvoiceID   uint            `json:"-" gorm:"index"`
	Description string          `json:"description" gorm:"not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(10,2);not null"`
	Rate        decimal.Decimal `json:"rate" gorm:"type:numeric(12,2);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	SortOrder   int             `json:"sort_order" gorm:"not null;default:0"`
}

// Payment is immutable once recorded; the only mutation is deletion (reversal).
type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	InvoiceID   uint            `json:"invoice_id" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentDate time.Time       `json:"payment_date" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvoiceSequence is the per-user invoice number counter. One row per user,
// created lazily on first allocation. NextNumber only ever moves forward;
// prefix/padding changes affect future allocations only.
type InvoiceSequence struct {
	UserID     string    `json:"-" gorm:"primaryKey;size:36"`
	Prefix     string    `json:"prefix" gorm:"size:10;not null;default:'INV'"`
	NextNumber int64     `json:"next_number" gorm:"not null;default:1"`
	Padding    int       `json:"padding" gorm:"not null;default:4"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InvoiceEvent is an append-only audit entry carrying a snapshot of the
// invoice's monetary state at the time of the mutation.
type InvoiceEvent struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	InvoiceID uint           `json:"invoice_id" gorm:"index"`
	Kind      string         `json:"kind" gorm:"size:32;not null"`
	Snapshot  datatypes.JSON `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}
