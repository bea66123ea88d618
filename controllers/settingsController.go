package controllers

import (
	"github.com/gofiber/fiber/v2"

	"invoicing-backend/middlewares"
)

func GetSequenceSettings(c *fiber.Ctx) error {
	seq, err := svc().GetSequence(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(seq)
}

type updateSequenceRequest struct {
	Prefix  string `json:"prefix" validate:"required,max=10"`
	Padding int    `json:"padding" validate:"required,min=1,max=10"`
}

// UpdateSequenceSettings changes prefix/padding for future invoice numbers.
// Already-issued numbers are never reformatted.
func UpdateSequenceSettings(c *fiber.Ctx) error {
	var req updateSequenceRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	seq, err := svc().UpdateSequence(c.Context(), userID(c), req.Prefix, req.Padding)
	if err != nil {
		return err
	}
	return c.JSON(seq)
}
