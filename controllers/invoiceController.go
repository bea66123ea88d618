package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"invoicing-backend/ledger"
	"invoicing-backend/models"
	"invoicing-backend/utils"
)

func CreateInvoice(c *fiber.Ctx) error {
	var in ledger.CreateInvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	inv, err := svc().CreateInvoice(c.Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func GetInvoices(c *fiber.Ctx) error {
	q := ledger.ListQuery{
		Status: c.Query("status"),
		Limit:  utils.ParseIntDefault(c.Query("limit"), 50),
		Cursor: c.Query("cursor"),
	}
	if cid := utils.ParseIntDefault(c.Query("client_id"), 0); cid > 0 {
		q.ClientID = uint(cid)
	}
	invs, next, err := svc().ListInvoices(c.Context(), userID(c), q)
	if err != nil {
		return err
	}

	// Decorate with the display status (overdue is derived, never stored).
	now := time.Now().UTC()
	out := make([]fiber.Map, len(invs))
	for i := range invs {
		out[i] = fiber.Map{
			"invoice":          invs[i],
			"effective_status": ledger.EffectiveStatus(&invs[i], now),
		}
	}
	return c.JSON(fiber.Map{"invoices": out, "next_cursor": next})
}

func GetInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	inv, err := svc().GetInvoice(c.Context(), userID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoice":          inv,
		"effective_status": ledger.EffectiveStatus(inv, time.Now().UTC()),
	})
}

func UpdateInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in ledger.UpdateInvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	inv, err := svc().UpdateInvoice(c.Context(), userID(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

func DeleteInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := svc().DeleteInvoice(c.Context(), userID(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}

type setStatusRequest struct {
	Status models.InvoiceStatus `json:"status" validate:"required"`
}

func SetInvoiceStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	inv, err := svc().SetStatus(c.Context(), userID(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

func DuplicateInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	inv, err := svc().DuplicateInvoice(c.Context(), userID(c), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func GetInvoiceEvents(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	events, err := svc().Events(c.Context(), userID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"events": events})
}

// ViewPublicInvoice serves the client-facing share link and records the first
// view. Unauthenticated by design; the uuid token is the capability.
func ViewPublicInvoice(c *fiber.Ctx) error {
	token := c.Params("token")
	inv, err := svc().MarkViewedByToken(c.Context(), token)
	if err != nil {
		return err
	}
	// Read-only projection; payments and internal notes stay private.
	return c.JSON(fiber.Map{
		"invoice_number": inv.InvoiceNumber,
		"client":         inv.Client.CompanyName,
		"status":         ledger.EffectiveStatus(inv, time.Now().UTC()),
		"currency":       inv.Currency,
		"issue_date":     inv.IssueDate,
		"due_date":       inv.DueDate,
		"items":          inv.Items,
		"subtotal":       inv.Subtotal,
		"discount":       inv.DiscountAmount,
		"tax":            inv.TaxAmount,
		"total":          inv.Total,
		"balance_due":    inv.BalanceDue,
		"terms":          inv.Terms,
	})
}
