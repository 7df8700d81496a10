package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

type CreateWithdrawalRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentDetails string          `json:"payment_details"`
	Contact        *string         `json:"contact"`
}

func (h *Handler) CreateWithdrawal(c *fiber.Ctx) error {
	partner, err := h.currentPartner(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := h.withdrawalSvc.Request(c.UserContext(), partner.ID, service.WithdrawalRequest{
		Amount:         req.Amount,
		PaymentDetails: req.PaymentDetails,
		Contact:        req.Contact,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

func (h *Handler) ListWithdrawals(c *fiber.Ctx) error {
	partner, err := h.currentPartner(c)
	if err != nil {
		return respondError(c, err)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	withdrawals, err := h.withdrawalSvc.List(c.UserContext(), partner.ID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"withdrawals": withdrawals})
}
