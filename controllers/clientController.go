package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"invoicing-backend/database"
	"invoicing-backend/middlewares"
	"invoicing-backend/models"
	"invoicing-backend/utils"
)

type createClientRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Zip         string `json:"zip"`
	VatID       string `json:"vat_id"`
	Notes       string `json:"notes"`
}

func CreateClient(c *fiber.Ctx) error {
	var req createClientRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	utils.NormalizeDTO(&req)

	client := models.Client{
		UserID:      userID(c),
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Zip:         req.Zip,
		VatID:       req.VatID,
		Notes:       req.Notes,
		Active:      true,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&client).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create client")
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func GetClients(c *fiber.Ctx) error {
	var clients []models.Client
	if err := database.DB.Where("user_id = ? AND active = ?", userID(c), true).
		Order("company_name asc").Find(&clients).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clients": clients})
}

func GetClient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var client models.Client
	if err := database.DB.Where("user_id = ?", userID(c)).First(&client, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}
	return c.JSON(client)
}

type updateClientRequest struct {
	CompanyName *string `json:"company_name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	Zip         *string `json:"zip"`
	VatID       *string `json:"vat_id"`
	Notes       *string `json:"notes"`
}

func UpdateClient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req updateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&req)

	var client models.Client
	if err := database.DB.Where("user_id = ?", userID(c)).First(&client, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}

	updates := utils.UpdatesFromPtrDTO(&req, nil)
	if len(updates) == 0 {
		return c.JSON(client)
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&client).Updates(updates).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update client")
	}
	return c.JSON(client)
}

// DeleteClient deactivates a client; clients with invoices stay resolvable
// for historical records, so this is a soft delete.
func DeleteClient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var client models.Client
	if err := database.DB.Where("user_id = ?", userID(c)).First(&client, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&client).Update("active", false).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not delete client")
	}
	return c.JSON(fiber.Map{"message": "success"})
}
