package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/middleware"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

// AdminHandler handles back-office requests
type AdminHandler struct {
	adminSvc      *service.AdminService
	partnerSvc    *service.PartnerService
	withdrawalSvc *service.WithdrawalService
	statsSvc      *service.StatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService, partnerSvc *service.PartnerService, withdrawalSvc *service.WithdrawalService, statsSvc *service.StatsService) *AdminHandler {
	return &AdminHandler{
		adminSvc:      adminSvc,
		partnerSvc:    partnerSvc,
		withdrawalSvc: withdrawalSvc,
		statsSvc:      statsSvc,
	}
}

// --- Withdrawals ---

type ListWithdrawalsResponse struct {
	Withdrawals []model.Withdrawal `json:"withdrawals"`
	Total       int                `json:"total"`
}

// ListWithdrawals lists withdrawal requests, optionally by status
func (h *AdminHandler) ListWithdrawals(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var status *model.WithdrawalStatus
	if v := c.Query("status"); v != "" {
		s := model.WithdrawalStatus(v)
		status = &s
	}

	withdrawals, total, err := h.withdrawalSvc.ListByStatus(c.UserContext(), status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ListWithdrawalsResponse{
		Withdrawals: withdrawals,
		Total:       total,
	})
}

// GetWithdrawal returns one withdrawal request
func (h *AdminHandler) GetWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid withdrawal id")
	}

	w, err := h.withdrawalSvc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

type TransitionRequest struct {
	Status         model.WithdrawalStatus  `json:"status"`
	AdminNotes     *string                 `json:"admin_notes"`
	ExpectedStatus *model.WithdrawalStatus `json:"expected_status"`
}

// TransitionWithdrawal approves, pays or rejects a withdrawal
func (h *AdminHandler) TransitionWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid withdrawal id")
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := h.withdrawalSvc.Transition(c.UserContext(), service.TransitionInput{
		WithdrawalID: id,
		AdminID:      middleware.GetAdminID(c),
		To:           req.Status,
		AdminNotes:   req.AdminNotes,
		Expected:     req.ExpectedStatus,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// --- Ledger adjustments ---

type AdjustBalanceRequest struct {
	Type        model.RewardType `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
}

// AdjustBalance writes a manual_add or manual_remove entry
func (h *AdminHandler) AdjustBalance(c *fiber.Ctx) error {
	partnerID, err := uuid.Parse(c.Params("partner_id"))
	if err != nil {
		return badRequest(c, "invalid partner_id")
	}

	var req AdjustBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	entry, err := h.adminSvc.ManualAdjust(c.UserContext(), middleware.GetAdminID(c), partnerID, req.Type, req.Amount, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetPartnerStats returns the dashboard of any partner
func (h *AdminHandler) GetPartnerStats(c *fiber.Ctx) error {
	partnerID, err := uuid.Parse(c.Params("partner_id"))
	if err != nil {
		return badRequest(c, "invalid partner_id")
	}

	if _, err := h.partnerSvc.GetByID(c.UserContext(), partnerID); err != nil {
		return respondError(c, err)
	}

	stats, err := h.statsSvc.Dashboard(c.UserContext(), partnerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// --- Admin Logs ---

// GetLogs retrieves admin action logs
func (h *AdminHandler) GetLogs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var partnerID *uuid.UUID
	if v := c.Query("partner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid partner_id")
		}
		partnerID = &id
	}

	logs, err := h.adminSvc.GetLogs(c.UserContext(), partnerID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"logs": logs})
}

// --- Settings Management ---

// GetCommission returns the commission schedule in force
func (h *AdminHandler) GetCommission(c *fiber.Ctx) error {
	schedule, err := h.adminSvc.GetCommission(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(schedule)
}

type SetCommissionRequest struct {
	Mode  string          `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// SetCommission stores a new commission schedule
func (h *AdminHandler) SetCommission(c *fiber.Ctx) error {
	var req SetCommissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	schedule, err := h.adminSvc.SetCommission(c.UserContext(), middleware.GetAdminID(c), req.Mode, req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(schedule)
}
