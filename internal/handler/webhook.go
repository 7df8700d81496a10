package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

// Webhooks answer 200 for every condition the sender should not retry:
// duplicates, unattributed users and unknown codes. 5xx means retry.

type RegistrationWebhookPayload struct {
	UserID       uuid.UUID `json:"user_id"`
	ReferralCode string    `json:"referral_code"`
	VisitorID    string    `json:"visitor_id"`
	Timestamp    time.Time `json:"timestamp"`
}

type PurchaseWebhookPayload struct {
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	EventRef  string          `json:"event_ref"`
	Timestamp time.Time       `json:"timestamp"`
}

func (h *Handler) RegistrationWebhook(c *fiber.Ctx) error {
	var req RegistrationWebhookPayload
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == uuid.Nil {
		return badRequest(c, "user_id is required")
	}
	// Most users register without a referral code.
	if req.ReferralCode == "" {
		return c.JSON(fiber.Map{"status": "ignored", "reason": "no referral code"})
	}

	result, err := h.attributionSvc.LinkRegistration(c.UserContext(), service.Registration{
		UserID:       req.UserID,
		ReferralCode: req.ReferralCode,
		VisitorID:    req.VisitorID,
		At:           req.Timestamp,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownPartner) ||
			errors.Is(err, service.ErrSelfReferral) ||
			errors.Is(err, service.ErrAlreadyAttributed) {
			return c.JSON(fiber.Map{"status": "ignored", "reason": err.Error()})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":     result.Ingest.Outcome,
		"partner_id": result.Click.PartnerID,
		"click_id":   result.Click.ID,
	})
}

func (h *Handler) PurchaseWebhook(c *fiber.Ctx) error {
	var req PurchaseWebhookPayload
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == uuid.Nil {
		return badRequest(c, "user_id is required")
	}

	result, err := h.ingestSvc.IngestPurchase(c.UserContext(), service.PurchaseEvent{
		UserID:     req.UserID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		EventRef:   req.EventRef,
		OccurredAt: req.Timestamp,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":     result.Outcome,
		"partner_id": result.PartnerID,
	})
}
