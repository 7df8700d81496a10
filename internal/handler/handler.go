package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/config"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/middleware"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

type Handler struct {
	cfg            *config.Config
	repo           *repository.Repository
	partnerSvc     *service.PartnerService
	attributionSvc *service.AttributionService
	ingestSvc      *service.IngestService
	ledgerSvc      *service.LedgerService
	balanceSvc     *service.BalanceService
	withdrawalSvc  *service.WithdrawalService
	statsSvc       *service.StatsService
}

func New(
	cfg *config.Config,
	repo *repository.Repository,
	partnerSvc *service.PartnerService,
	attributionSvc *service.AttributionService,
	ingestSvc *service.IngestService,
	ledgerSvc *service.LedgerService,
	balanceSvc *service.BalanceService,
	withdrawalSvc *service.WithdrawalService,
	statsSvc *service.StatsService,
) *Handler {
	return &Handler{
		cfg:            cfg,
		repo:           repo,
		partnerSvc:     partnerSvc,
		attributionSvc: attributionSvc,
		ingestSvc:      ingestSvc,
		ledgerSvc:      ledgerSvc,
		balanceSvc:     balanceSvc,
		withdrawalSvc:  withdrawalSvc,
		statsSvc:       statsSvc,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.repo.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  "database unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// ErrorHandler renders errors that escape a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// currentPartner loads the partner record of the authenticated user.
func (h *Handler) currentPartner(c *fiber.Ctx) (*model.Partner, error) {
	return h.partnerSvc.GetByUser(c.UserContext(), middleware.GetUserID(c))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingEventRef),
		errors.Is(err, service.ErrMissingPaymentDetails),
		errors.Is(err, service.ErrMissingDescription),
		errors.Is(err, service.ErrMissingVisitor),
		errors.Is(err, service.ErrInvalidRewardType),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidCommission):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrPartnerNotFound),
		errors.Is(err, service.ErrWithdrawalNotFound),
		errors.Is(err, service.ErrUnknownPartner):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrCurrencyMismatch):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// respondError maps service errors to status codes. Unknown errors are
// logged and reported as a generic failure.
func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
