package ledger

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicing-backend/models"
)

// AllocateNumber hands out the next invoice number for the user and advances
// the counter. Must be called inside the invoice-creation transaction: if the
// surrounding creation fails the increment rolls back, keeping the sequence
// gapless.
//
// The read-and-increment is a single conditional UPDATE ... RETURNING, never
// a separate read followed by a write, so two concurrent creations for the
// same user cannot receive the same number.
func AllocateNumber(tx *gorm.DB, userID string) (string, error) {
	// Lazy-create the sequence row with defaults; an existing row wins.
	seq := models.InvoiceSequence{UserID: userID, Prefix: "INV", NextNumber: 1, Padding: 4}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return "", &AllocationError{Err: err}
	}

	var row struct {
		Number  int64
		Prefix  string
		Padding int
	}
	res := tx.Raw(
		`UPDATE invoice_sequences
		 SET next_number = next_number + 1, updated_at = ?
		 WHERE user_id = ?
		 RETURNING next_number - 1 AS number, prefix, padding`,
		time.Now().UTC(), userID,
	).Scan(&row)
	if res.Error != nil {
		return "", &AllocationError{Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return "", &AllocationError{Err: gorm.ErrRecordNotFound}
	}

	return FormatNumber(row.Prefix, row.Number, row.Padding), nil
}

// FormatNumber renders prefix + zero-padded counter, e.g. ("INV", 7, 4) -> "INV0007".
// Numbers wider than the padding are not truncated.
func FormatNumber(prefix string, n int64, padding int) string {
	return fmt.Sprintf("%s%0*d", prefix, padding, n)
}
