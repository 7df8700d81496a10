package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/middleware"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

type TrackVisitRequest struct {
	ReferralCode string `json:"referral_code"`
	VisitorID    string `json:"visitor_id"`
	LandingPath  string `json:"landing_path"`
}

// TrackVisit records a click on a referral link. Unknown codes are not
// reported to the visitor.
func (h *Handler) TrackVisit(c *fiber.Ctx) error {
	var req TrackVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.ReferralCode) == "" {
		return badRequest(c, "referral_code is required")
	}
	if req.VisitorID == "" {
		req.VisitorID = c.IP()
	}

	click, err := h.attributionSvc.RecordVisit(c.UserContext(), service.Visit{
		ReferralCode: req.ReferralCode,
		VisitorID:    req.VisitorID,
		LandingPath:  req.LandingPath,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownPartner) {
			return c.JSON(fiber.Map{"tracked": false})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"tracked":  true,
		"click_id": click.ID,
	})
}

// Enroll opts the authenticated user into the partner program.
func (h *Handler) Enroll(c *fiber.Ctx) error {
	partner, err := h.partnerSvc.Enroll(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(partner)
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	profile, err := h.partnerSvc.Profile(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetStats returns the partner dashboard numbers.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	partner, err := h.currentPartner(c)
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.statsSvc.Dashboard(c.UserContext(), partner.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
