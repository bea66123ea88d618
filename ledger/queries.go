package ledger

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicing-backend/models"
)

// ListQuery captures filter, paging, and sorting options for listing invoices.
type ListQuery struct {
	Status   string // effective status filter, including "overdue"
	ClientID uint
	Limit    int    // page size (1-200); defaults to 50 when out of range
	Cursor   string // offset cursor encoded as a string: "0", "50", ...
}

// ListInvoices returns a page of the user's invoices with the next cursor.
// Overdue filtering works on the effective (derived) status, so it is applied
// after the fetch rather than in SQL.
func (s *Service) ListInvoices(ctx context.Context, userID string, q ListQuery) ([]models.Invoice, string, error) {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	offset := 0
	if q.Cursor != "" {
		if n, err := strconv.Atoi(q.Cursor); err == nil && n >= 0 {
			offset = n
		}
	}

	db := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Preload("Client").
		Where("user_id = ?", userID)

	status := strings.TrimSpace(q.Status)
	switch status {
	case "", string(models.StatusOverdue):
		// overdue is derived; filter below
	default:
		db = db.Where("status = ?", status)
	}
	if q.ClientID != 0 {
		db = db.Where("client_id = ?", q.ClientID)
	}

	var invs []models.Invoice
	if err := db.Order("issue_date desc, id desc").
		Offset(offset).Limit(q.Limit + 1).Find(&invs).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(invs) > q.Limit {
		invs = invs[:q.Limit]
		nextCursor = strconv.Itoa(offset + q.Limit)
	}

	now := time.Now().UTC()
	if status == string(models.StatusOverdue) {
		filtered := invs[:0]
		for i := range invs {
			if EffectiveStatus(&invs[i], now) == models.StatusOverdue {
				filtered = append(filtered, invs[i])
			}
		}
		invs = filtered
	}
	return invs, nextCursor, nil
}

// DashboardSummary aggregates the user's invoices with the effective-status
// rule. Read-only; it never mutates monetary fields.
type DashboardSummary struct {
	Counts      map[models.InvoiceStatus]int `json:"counts"`
	Outstanding decimal.Decimal              `json:"outstanding"`
	Overdue     decimal.Decimal              `json:"overdue"`
	PaidTotal   decimal.Decimal              `json:"paid_total"`
}

func (s *Service) Dashboard(ctx context.Context, userID string) (*DashboardSummary, error) {
	var invs []models.Invoice
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&invs).Error; err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sum := &DashboardSummary{
		Counts:      make(map[models.InvoiceStatus]int),
		Outstanding: decimal.Zero,
		Overdue:     decimal.Zero,
		PaidTotal:   decimal.Zero,
	}
	for i := range invs {
		inv := &invs[i]
		eff := EffectiveStatus(inv, now)
		sum.Counts[eff]++
		switch eff {
		case models.StatusCancelled:
		case models.StatusPaid:
			sum.PaidTotal = sum.PaidTotal.Add(inv.AmountPaid)
		case models.StatusOverdue:
			sum.Overdue = sum.Overdue.Add(inv.BalanceDue)
			sum.Outstanding = sum.Outstanding.Add(inv.BalanceDue)
		default:
			sum.Outstanding = sum.Outstanding.Add(inv.BalanceDue)
			sum.PaidTotal = sum.PaidTotal.Add(inv.AmountPaid)
		}
	}
	return sum, nil
}

// GetSequence returns the user's invoice sequence, creating it with defaults
// on first access.
func (s *Service) GetSequence(ctx context.Context, userID string) (*models.InvoiceSequence, error) {
	seq := models.InvoiceSequence{UserID: userID, Prefix: "INV", NextNumber: 1, Padding: 4}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).First(&seq).Error
	})
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// UpdateSequence changes prefix/padding for future allocations only; numbers
// already issued are never reformatted, and NextNumber is not settable.
func (s *Service) UpdateSequence(ctx context.Context, userID, prefix string, padding int) (*models.InvoiceSequence, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || len(prefix) > 10 {
		return nil, &ValidationError{Field: "prefix", Reason: "must be 1-10 characters"}
	}
	if padding < 1 || padding > 10 {
		return nil, &ValidationError{Field: "padding", Reason: "must be between 1 and 10"}
	}
	var seq *models.InvoiceSequence
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.InvoiceSequence{UserID: userID, Prefix: prefix, NextNumber: 1, Padding: padding}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.InvoiceSequence{}).Where("user_id = ?", userID).
			Updates(map[string]any{"prefix": prefix, "padding": padding}).Error; err != nil {
			return err
		}
		seq = &models.InvoiceSequence{}
		return tx.Where("user_id = ?", userID).First(seq).Error
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}
