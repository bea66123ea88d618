package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"invoicing-backend/models"
)

// Service is the invoice ledger engine. Every mutation runs inside one
// transaction: a failed step rolls the whole mutation back, so a partially
// updated invoice is never visible.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LineItemInput is one row of a create/replace item list. Amount, when set,
// overrides the computed quantity x rate.
type LineItemInput struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Rate        decimal.Decimal  `json:"rate"`
	Amount      *decimal.Decimal `json:"amount"`
}

type CreateInvoiceInput struct {
	ClientID      uint                `json:"client_id"`
	IssueDate     time.Time           `json:"issue_date"`
	DueTerms      models.DueTerms     `json:"due_terms"`
	DueDate       *time.Time          `json:"due_date"` // required for custom terms
	Currency      string              `json:"currency"`
	TaxRate       decimal.Decimal     `json:"tax_rate"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	Notes         string              `json:"notes"`
	Terms         string              `json:"terms"`
	Items         []LineItemInput     `json:"items"`
}

// UpdateInvoiceInput carries only the fields the caller wants changed; nil
// pointers keep the stored value. A non-nil Items slice replaces the full
// item list.
type UpdateInvoiceInput struct {
	ClientID      *uint                `json:"client_id"`
	IssueDate     *time.Time           `json:"issue_date"`
	DueTerms      *models.DueTerms     `json:"due_terms"`
	DueDate       *time.Time           `json:"due_date"`
	Currency      *string              `json:"currency"`
	TaxRate       *decimal.Decimal     `json:"tax_rate"`
	DiscountType  *models.DiscountType `json:"discount_type"`
	DiscountValue *decimal.Decimal     `json:"discount_value"`
	Notes         *string              `json:"notes"`
	Terms         *string              `json:"terms"`
	Items         *[]LineItemInput     `json:"items"`
}

type PaymentInput struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// CreateInvoice allocates a number, computes initial totals, and persists the
// invoice in draft. Allocation failure aborts the whole creation.
func (s *Service) CreateInvoice(ctx context.Context, userID string, in CreateInvoiceInput) (*models.Invoice, error) {
	if err := validateInvoiceInputs(in.TaxRate, in.DiscountType, in.DiscountValue); err != nil {
		return nil, err
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.IssueDate.IsZero() {
		return nil, &ValidationError{Field: "issue_date", Reason: "required"}
	}
	dueTerms := in.DueTerms
	if dueTerms == "" {
		dueTerms = models.DueNet30
	}
	dueDate, err := deriveDueDate(in.IssueDate, dueTerms, in.DueDate)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "EUR"
	}

	var inv models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("user_id = ?", userID).First(&client, in.ClientID).Error; err != nil {
			return &NotFoundError{Resource: "client"}
		}

		number, err := AllocateNumber(tx, userID)
		if err != nil {
			return err
		}

		inv = models.Invoice{
			UserID:        userID,
			InvoiceNumber: number,
			PublicToken:   uuid.NewString(),
			ClientID:      client.ID,
			Status:        models.StatusDraft,
			Currency:      currency,
			IssueDate:     in.IssueDate,
			DueTerms:      dueTerms,
			DueDate:       dueDate,
			Items:         items,
			DiscountType:  discountTypeOrNone(in.DiscountType),
			DiscountValue: in.DiscountValue,
			TaxRate:       in.TaxRate,
			Notes:         in.Notes,
			Terms:         in.Terms,
		}
		applyTotals(&inv, ComputeTotals(items, inv.TaxRate, inv.DiscountType, inv.DiscountValue, decimal.Zero))

		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		return appendEvent(tx, &inv, "created")
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice edits core fields and optionally replaces the item list.
// Rejected outright on paid/cancelled invoices.
func (s *Service) UpdateInvoice(ctx context.Context, userID string, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = loadInvoice(tx, userID, id)
		if err != nil {
			return err
		}
		if err := EnsureEditable(inv); err != nil {
			return err
		}

		if in.ClientID != nil {
			var client models.Client
			if err := tx.Where("user_id = ?", userID).First(&client, *in.ClientID).Error; err != nil {
				return &NotFoundError{Resource: "client"}
			}
			inv.ClientID = client.ID
		}
		if in.IssueDate != nil {
			inv.IssueDate = *in.IssueDate
		}
		if in.DueTerms != nil {
			inv.DueTerms = *in.DueTerms
		}
		if in.TaxRate != nil {
			inv.TaxRate = *in.TaxRate
		}
		if in.DiscountType != nil {
			inv.DiscountType = *in.DiscountType
		}
		if in.DiscountValue != nil {
			inv.DiscountValue = *in.DiscountValue
		}
		if in.Currency != nil {
			inv.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
		}
		if in.Notes != nil {
			inv.Notes = *in.Notes
		}
		if in.Terms != nil {
			inv.Terms = *in.Terms
		}
		if err := validateInvoiceInputs(inv.TaxRate, inv.DiscountType, inv.DiscountValue); err != nil {
			return err
		}

		// Re-derive the due date whenever its inputs moved.
		if in.IssueDate != nil || in.DueTerms != nil || in.DueDate != nil {
			dueDate, err := deriveDueDate(inv.IssueDate, inv.DueTerms, in.DueDate)
			if err != nil {
				return err
			}
			inv.DueDate = dueDate
		}

		if in.Items != nil {
			items, err := buildItems(*in.Items)
			if err != nil {
				return err
			}
			// All-or-nothing replacement: the surrounding transaction makes
			// the delete visible only if every insert succeeds.
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].InvoiceID = inv.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			inv.Items = items
		}

		applyTotals(inv, ComputeTotals(inv.Items, inv.TaxRate, inv.DiscountType, inv.DiscountValue, inv.AmountPaid))

		if err := tx.Model(inv).Select("*").Omit("Items", "Payments", "Client", "CreatedAt").Updates(inv).Error; err != nil {
			return err
		}
		if in.Items != nil {
			return appendEvent(tx, inv, "items_replaced")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// SetStatus applies an explicit status change per the transition table.
// Setting the current status again is a no-op.
func (s *Service) SetStatus(ctx context.Context, userID string, id uint, to models.InvoiceStatus) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = loadInvoice(tx, userID, id)
		if err != nil {
			return err
		}
		prev := inv.Status
		if err := ApplyStatus(inv, to, time.Now().UTC()); err != nil {
			return err
		}
		if inv.Status == prev {
			return nil // idempotent set, nothing to persist
		}
		if err := tx.Model(inv).Select(
			"status", "amount_paid", "balance_due", "sent_at", "viewed_at", "paid_at",
		).Updates(inv).Error; err != nil {
			return err
		}
		return appendEvent(tx, inv, "status_changed")
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// AddPayment records a payment and recomputes the rollup; reaching a zero
// balance settles the invoice as paid. Overpayment is allowed.
func (s *Service) AddPayment(ctx context.Context, userID string, invoiceID uint, in PaymentInput) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadInvoice(tx, userID, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == models.StatusCancelled {
			return &ImmutableStateError{Status: inv.Status}
		}
		if !in.Amount.IsPositive() {
			return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
		}
		when := in.PaymentDate
		if when.IsZero() {
			when = time.Now().UTC()
		}

		payment = models.Payment{
			InvoiceID:   inv.ID,
			Amount:      round2(in.Amount),
			PaymentDate: when,
			Method:      in.Method,
			Reference:   in.Reference,
			Notes:       in.Notes,
		}
		if payment.Reference == "" {
			payment.Reference = uuid.NewString()
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := recomputePayments(tx, inv); err != nil {
			return err
		}
		if !inv.BalanceDue.IsPositive() {
			settle(inv, time.Now().UTC())
		}
		if err := tx.Model(inv).Select(
			"status", "amount_paid", "balance_due", "paid_at",
		).Updates(inv).Error; err != nil {
			return err
		}
		return appendEvent(tx, inv, "payment_added")
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment reverses a recorded payment. If that reopens the balance of a
// paid invoice, the status reverts to sent (if ever sent) or draft, and
// PaidAt is cleared.
func (s *Service) DeletePayment(ctx context.Context, userID string, invoiceID, paymentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadInvoice(tx, userID, invoiceID)
		if err != nil {
			return err
		}
		var payment models.Payment
		if err := tx.Where("invoice_id = ?", inv.ID).First(&payment, paymentID).Error; err != nil {
			return &NotFoundError{Resource: "payment"}
		}
		if err := tx.Delete(&payment).Error; err != nil {
			return err
		}

		if err := recomputePayments(tx, inv); err != nil {
			return err
		}
		if inv.Status == models.StatusPaid && inv.BalanceDue.IsPositive() {
			revertFromPaid(inv)
		}
		if err := tx.Model(inv).Select(
			"status", "amount_paid", "balance_due", "paid_at",
		).Updates(inv).Error; err != nil {
			return err
		}
		return appendEvent(tx, inv, "payment_deleted")
	})
}

// DuplicateInvoice copies client, items, and tax/discount settings onto a
// fresh draft with a newly allocated number and today's dates. Payments and
// lifecycle timestamps do not carry over.
func (s *Service) DuplicateInvoice(ctx context.Context, userID string, id uint) (*models.Invoice, error) {
	var dup models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		src, err := loadInvoice(tx, userID, id)
		if err != nil {
			return err
		}

		number, err := AllocateNumber(tx, userID)
		if err != nil {
			return err
		}

		today := time.Now().UTC().Truncate(24 * time.Hour)
		dueDate, err := deriveDueDate(today, src.DueTerms, nil)
		if err != nil {
			// Custom terms have no derivable date on a fresh issue date.
			dueDate = nil
		}

		items := make([]models.LineItem, len(src.Items))
		for i, it := range src.Items {
			items[i] = models.LineItem{
				Description: it.Description,
				Quantity:    it.Quantity,
				Rate:        it.Rate,
				Amount:      it.Amount,
				SortOrder:   i,
			}
		}

		dup = models.Invoice{
			UserID:        userID,
			InvoiceNumber: number,
			PublicToken:   uuid.NewString(),
			ClientID:      src.ClientID,
			Status:        models.StatusDraft,
			Currency:      src.Currency,
			IssueDate:     today,
			DueTerms:      src.DueTerms,
			DueDate:       dueDate,
			Items:         items,
			DiscountType:  src.DiscountType,
			DiscountValue: src.DiscountValue,
			TaxRate:       src.TaxRate,
			Notes:         src.Notes,
			Terms:         src.Terms,
		}
		applyTotals(&dup, ComputeTotals(items, dup.TaxRate, dup.DiscountType, dup.DiscountValue, decimal.Zero))

		if err := tx.Create(&dup).Error; err != nil {
			return err
		}
		return appendEvent(tx, &dup, "duplicated")
	})
	if err != nil {
		return nil, err
	}
	return &dup, nil
}

// DeleteInvoice removes the invoice and its owned items/payments. The
// allocated number is never reused.
func (s *Service) DeleteInvoice(ctx context.Context, userID string, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadInvoice(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(inv).Error
	})
}

// GetInvoice loads one invoice with its items, payments, and client.
func (s *Service) GetInvoice(ctx context.Context, userID string, id uint) (*models.Invoice, error) {
	return loadInvoice(s.db.WithContext(ctx), userID, id)
}

// MarkViewedByToken resolves a share token and records the first view.
// Paid and cancelled invoices are returned untouched.
func (s *Service) MarkViewedByToken(ctx context.Context, token string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("Client").
			Where("public_token = ?", token).First(&inv).Error; err != nil {
			return &NotFoundError{Resource: "invoice"}
		}
		if !CanTransition(inv.Status, models.StatusViewed) {
			return nil
		}
		if err := ApplyStatus(&inv, models.StatusViewed, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Model(&inv).Select("status", "viewed_at").Updates(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Events returns the invoice's audit trail, oldest first.
func (s *Service) Events(ctx context.Context, userID string, invoiceID uint) ([]models.InvoiceEvent, error) {
	if _, err := loadInvoice(s.db.WithContext(ctx), userID, invoiceID); err != nil {
		return nil, err
	}
	var events []models.InvoiceEvent
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).Order("id asc").Find(&events).Error
	return events, err
}

// ---- internals ----

func loadInvoice(tx *gorm.DB, userID string, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_date asc, id asc") }).
		Preload("Client").
		Where("user_id = ?", userID).First(&inv, id).Error
	if err != nil {
		return nil, &NotFoundError{Resource: "invoice"}
	}
	return &inv, nil
}

// recomputePayments refreshes AmountPaid/BalanceDue from the surviving
// payment rows via the totals calculator.
func recomputePayments(tx *gorm.DB, inv *models.Invoice) error {
	var payments []models.Payment
	if err := tx.Where("invoice_id = ?", inv.ID).Find(&payments).Error; err != nil {
		return err
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	inv.AmountPaid = paid
	inv.Payments = payments
	applyTotals(inv, ComputeTotals(inv.Items, inv.TaxRate, inv.DiscountType, inv.DiscountValue, paid))
	return nil
}

func buildItems(in []LineItemInput) ([]models.LineItem, error) {
	items := make([]models.LineItem, 0, len(in))
	for i, it := range in {
		if strings.TrimSpace(it.Description) == "" {
			return nil, &ValidationError{Field: "items", Reason: "description must not be empty"}
		}
		if !it.Quantity.IsPositive() {
			return nil, &ValidationError{Field: "items", Reason: "quantity must be greater than zero"}
		}
		if it.Rate.IsNegative() {
			return nil, &ValidationError{Field: "items", Reason: "rate must not be negative"}
		}
		amount := LineAmount(it.Quantity, it.Rate)
		if it.Amount != nil {
			if it.Amount.IsNegative() {
				return nil, &ValidationError{Field: "items", Reason: "amount must not be negative"}
			}
			amount = round2(*it.Amount)
		}
		items = append(items, models.LineItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      amount,
			SortOrder:   i,
		})
	}
	return items, nil
}

func validateInvoiceInputs(taxRate decimal.Decimal, discountType models.DiscountType, discountValue decimal.Decimal) error {
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return &ValidationError{Field: "tax_rate", Reason: "must be between 0 and 100"}
	}
	switch discountType {
	case "", models.DiscountNone, models.DiscountPercentage, models.DiscountFixed:
	default:
		return &ValidationError{Field: "discount_type", Reason: "must be none, percentage, or fixed"}
	}
	if discountValue.IsNegative() {
		return &ValidationError{Field: "discount_value", Reason: "must not be negative"}
	}
	return nil
}

func discountTypeOrNone(t models.DiscountType) models.DiscountType {
	if t == "" {
		return models.DiscountNone
	}
	return t
}

func deriveDueDate(issueDate time.Time, terms models.DueTerms, custom *time.Time) (*time.Time, error) {
	var days int
	switch terms {
	case models.DueOnReceipt:
		days = 0
	case models.DueNet7:
		days = 7
	case models.DueNet15:
		days = 15
	case models.DueNet30:
		days = 30
	case models.DueNet60:
		days = 60
	case models.DueCustom:
		if custom == nil {
			return nil, &ValidationError{Field: "due_date", Reason: "required for custom due terms"}
		}
		d := *custom
		return &d, nil
	default:
		return nil, &ValidationError{Field: "due_terms", Reason: "unsupported value"}
	}
	d := issueDate.AddDate(0, 0, days)
	return &d, nil
}

// appendEvent records an audit entry with the invoice's monetary snapshot.
func appendEvent(tx *gorm.DB, inv *models.Invoice, kind string) error {
	snap, err := json.Marshal(map[string]any{
		"status":          inv.Status,
		"subtotal":        inv.Subtotal,
		"discount_amount": inv.DiscountAmount,
		"tax_amount":      inv.TaxAmount,
		"total":           inv.Total,
		"amount_paid":     inv.AmountPaid,
		"balance_due":     inv.BalanceDue,
	})
	if err != nil {
		return err
	}
	return tx.Create(&models.InvoiceEvent{
		InvoiceID: inv.ID,
		Kind:      kind,
		Snapshot:  snap,
	}).Error
}
