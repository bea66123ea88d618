package controllers

import (
	"github.com/gofiber/fiber/v2"

	"invoicing-backend/ledger"
)

func CreatePayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in ledger.PaymentInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	payment, err := svc().AddPayment(c.Context(), userID(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func ListPayments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	inv, err := svc().GetInvoice(c.Context(), userID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"payments":    inv.Payments,
		"amount_paid": inv.AmountPaid,
		"balance_due": inv.BalanceDue,
	})
}

func DeletePayment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	paymentID, err := idParam(c, "paymentId")
	if err != nil {
		return err
	}
	if err := svc().DeletePayment(c.Context(), userID(c), id, paymentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}
