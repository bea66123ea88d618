package routes

import (
	"github.com/gofiber/fiber/v2"

	"invoicing-backend/controllers"
	"invoicing-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Client-facing share links (uuid token is the capability)
	api.Get("/public/invoices/:token", controllers.ViewPublicInvoice)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (its records must survive handler failures)
	protected.Use(middlewares.Idempotency())

	// Clients
	protected.Post("/clients", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/clients/:id", controllers.GetClient)
	protected.Put("/clients/:id", controllers.UpdateClient)
	protected.Delete("/clients/:id", controllers.DeleteClient)

	// Invoices (ledger engine)
	protected.Post("/invoices", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Put("/invoices/:id", controllers.UpdateInvoice)
	protected.Delete("/invoices/:id", controllers.DeleteInvoice)
	protected.Put("/invoices/:id/status", controllers.SetInvoiceStatus)
	protected.Post("/invoices/:id/duplicate", controllers.DuplicateInvoice)
	protected.Get("/invoices/:id/events", controllers.GetInvoiceEvents)

	// Payments
	protected.Post("/invoices/:id/payments", controllers.CreatePayment)
	protected.Get("/invoices/:id/payments", controllers.ListPayments)
	protected.Delete("/invoices/:id/payments/:paymentId", controllers.DeletePayment)

	// Settings & dashboard
	protected.Get("/settings/sequence", controllers.GetSequenceSettings)
	protected.Put("/settings/sequence", controllers.UpdateSequenceSettings)
	protected.Get("/dashboard", controllers.GetDashboard)
}
