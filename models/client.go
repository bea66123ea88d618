package models

import "time"

// Client is an entry in a user's client directory. Invoices reference clients
// but clients carry no billing logic of their own.
type Client struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UserID      string `json:"-" gorm:"size:36;not null;index"`
	CompanyName string `json:"company_name" gorm:"not null"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" gorm:"not null"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Zip         string `json:"zip"`
	VatID       string `json:"vat_id"`
	Notes       string `json:"notes"`
	Active      bool   `json:"-" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
