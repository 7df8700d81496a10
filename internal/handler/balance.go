package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	partner, err := h.currentPartner(c)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.balanceSvc.Summary(c.UserContext(), partner.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetLedger returns the partner's reward history, newest first.
func (h *Handler) GetLedger(c *fiber.Ctx) error {
	partner, err := h.currentPartner(c)
	if err != nil {
		return respondError(c, err)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	filter := model.LedgerFilter{Limit: limit, Offset: offset}

	if v := c.Query("type"); v != "" {
		t := model.RewardType(v)
		if !t.Valid() {
			return badRequest(c, "invalid type")
		}
		filter.Type = &t
	}
	if v := c.Query("status"); v != "" {
		s := model.RewardStatus(v)
		if !s.Valid() {
			return badRequest(c, "invalid status")
		}
		filter.Status = &s
	}

	page, err := h.ledgerSvc.List(c.UserContext(), partner.ID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
