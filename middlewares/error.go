package middlewares

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"invoicing-backend/ledger"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
// Ledger errors map to distinct statuses so callers can react per kind.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Ledger error taxonomy
	var nfe *ledger.NotFoundError
	if errors.As(err, &nfe) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nfe.Error()})
	}
	var ite *ledger.InvalidTransitionError
	if errors.As(err, &ite) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": ite.Error()})
	}
	var ise *ledger.ImmutableStateError
	if errors.As(err, &ise) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": ise.Error()})
	}
	var lve *ledger.ValidationError
	if errors.As(err, &lve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": lve.Error()})
	}
	var ae *ledger.AllocationError
	if errors.As(err, &ae) {
		log.Error().Err(err).Msg("invoice number allocation failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "could not allocate invoice number"})
	}

	// 3) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 4) Unknown errors (500)
	log.Error().Err(err).Str("path", c.Path()).Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
