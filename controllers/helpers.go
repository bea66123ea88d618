package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"invoicing-backend/database"
	"invoicing-backend/ledger"
)

// svc returns the ledger engine bound to the shared DB handle. Each engine
// mutation opens its own transaction, so no per-request state is needed here.
func svc() *ledger.Service {
	return ledger.NewService(database.DB)
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(n), nil
}
