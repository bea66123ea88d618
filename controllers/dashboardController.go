package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// GetDashboard returns aggregate counts and sums across the user's invoices.
// Read-only collaborator of the ledger; it never mutates monetary fields.
func GetDashboard(c *fiber.Ctx) error {
	sum, err := svc().Dashboard(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(sum)
}
