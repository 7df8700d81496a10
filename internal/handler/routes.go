package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/middleware"
)

// RegisterRoutes mounts the public, webhook, partner and admin routes.
func RegisterRoutes(app *fiber.App, h *Handler, adminHandler *AdminHandler, admins middleware.AdminChecker) {
	// Health check
	app.Get("/health", h.Health)

	// Public tracking endpoint
	app.Post("/api/track/visit", h.TrackVisit)

	// Webhooks from the marketplace backend
	webhooks := app.Group("/webhook", middleware.WebhookSecret(h.cfg.Server.WebhookSecret))
	webhooks.Post("/registration", h.RegistrationWebhook)
	webhooks.Post("/purchase", h.PurchaseWebhook)

	// Partner routes
	partner := app.Group("/api/partner", middleware.JWTAuth(h.cfg.Server.JWTSecret))
	partner.Post("/enroll", h.Enroll)
	partner.Get("/me", h.GetMe)
	partner.Get("/stats", h.GetStats)
	partner.Get("/ledger", h.GetLedger)
	partner.Get("/balance", h.GetBalance)
	partner.Post("/withdrawals", h.CreateWithdrawal)
	partner.Get("/withdrawals", h.ListWithdrawals)

	// Admin routes
	admin := app.Group("/api/admin", middleware.JWTAuth(h.cfg.Server.JWTSecret), middleware.AdminAuth(admins))
	admin.Get("/withdrawals", adminHandler.ListWithdrawals)
	admin.Get("/withdrawals/:id", adminHandler.GetWithdrawal)
	admin.Post("/withdrawals/:id/transition", adminHandler.TransitionWithdrawal)
	admin.Post("/partners/:partner_id/adjustments", adminHandler.AdjustBalance)
	admin.Get("/partners/:partner_id/stats", adminHandler.GetPartnerStats)
	admin.Get("/logs", adminHandler.GetLogs)
	admin.Get("/settings/commission", adminHandler.GetCommission)
	admin.Post("/settings/commission", adminHandler.SetCommission)
}
