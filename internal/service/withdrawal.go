package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

var (
	ErrInvalidTransition     = errors.New("invalid withdrawal status transition")
	ErrWithdrawalNotFound    = repository.ErrWithdrawalNotFound
	ErrMissingPaymentDetails = errors.New("payment details are required")
	ErrInvalidStatus         = errors.New("invalid withdrawal status")
)

type WithdrawalRequest struct {
	Amount         decimal.Decimal
	PaymentDetails string
	Contact        *string
}

type TransitionInput struct {
	WithdrawalID uuid.UUID
	AdminID      uuid.UUID
	To           model.WithdrawalStatus
	AdminNotes   *string
	// Expected, when set, must match the status the admin saw.
	Expected *model.WithdrawalStatus
}

// WithdrawalNotifier is told about every new request.
type WithdrawalNotifier interface {
	WithdrawalRequested(ctx context.Context, w *model.Withdrawal) error
}

type WithdrawalService struct {
	repo     *repository.Repository
	notifier WithdrawalNotifier
	now      func() time.Time
}

func NewWithdrawalService(repo *repository.Repository) *WithdrawalService {
	return &WithdrawalService{repo: repo, now: utcNow}
}

// SetNotifier enables admin notifications. Delivery failures are logged and
// never fail the request.
func (s *WithdrawalService) SetNotifier(n WithdrawalNotifier) {
	s.notifier = n
}

// Request files a pending withdrawal. The balance check and the insert run
// atomically per partner.
func (s *WithdrawalService) Request(ctx context.Context, partnerID uuid.UUID, req WithdrawalRequest) (*model.Withdrawal, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	details := strings.TrimSpace(req.PaymentDetails)
	if details == "" {
		return nil, ErrMissingPaymentDetails
	}

	now := s.now()
	w := &model.Withdrawal{
		ID:             uuid.New(),
		PartnerID:      partnerID,
		Amount:         amount,
		PaymentDetails: details,
		Contact:        req.Contact,
		Status:         model.WithdrawalStatusPending,
		RequestedAt:    now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateWithdrawal(ctx, w); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "withdrawal requested",
		"withdrawal_id", w.ID,
		"partner_id", partnerID,
		"amount", w.Amount.String(),
	)
	if s.notifier != nil {
		if err := s.notifier.WithdrawalRequested(ctx, w); err != nil {
			slog.WarnContext(ctx, "failed to notify admins", "error", err, "withdrawal_id", w.ID)
		}
	}
	return w, nil
}

// Transition moves a withdrawal along one of the allowed edges. The update
// only applies if the status has not changed since it was read; losing that
// race is reported as ErrInvalidTransition.
func (s *WithdrawalService) Transition(ctx context.Context, in TransitionInput) (*model.Withdrawal, error) {
	if !in.To.Valid() {
		return nil, ErrInvalidStatus
	}

	w, err := s.repo.GetWithdrawal(ctx, in.WithdrawalID)
	if err != nil {
		return nil, err
	}
	from := w.Status
	if in.Expected != nil && *in.Expected != from {
		return nil, ErrInvalidTransition
	}
	if !from.CanTransitionTo(in.To) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	var processedAt *time.Time
	if in.To.Terminal() {
		processedAt = &now
	}

	err = s.repo.TransitionWithdrawal(ctx, w.ID, from, in.To, in.AdminNotes, processedAt, now)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	details := map[string]interface{}{
		"withdrawal_id": w.ID,
		"from":          from,
		"to":            in.To,
		"amount":        w.Amount.String(),
	}
	if in.AdminNotes != nil {
		details["admin_notes"] = *in.AdminNotes
	}
	if err := s.repo.LogAdminAction(ctx, in.AdminID, model.WithdrawalAction(in.To), &w.PartnerID, details); err != nil {
		slog.ErrorContext(ctx, "failed to write admin log", "error", err, "withdrawal_id", w.ID)
	}

	slog.InfoContext(ctx, "withdrawal transitioned",
		"withdrawal_id", w.ID,
		"from", from,
		"to", in.To,
		"admin_id", in.AdminID,
	)
	return s.repo.GetWithdrawal(ctx, w.ID)
}

func (s *WithdrawalService) Get(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	return s.repo.GetWithdrawal(ctx, id)
}

func (s *WithdrawalService) List(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]model.Withdrawal, error) {
	limit, offset = normalizePage(limit, offset, defaultPageLimit)
	return s.repo.ListWithdrawalsByPartner(ctx, partnerID, limit, offset)
}

// ListByStatus is the back-office view. A nil status lists everything.
func (s *WithdrawalService) ListByStatus(ctx context.Context, status *model.WithdrawalStatus, limit, offset int) ([]model.Withdrawal, int, error) {
	if status != nil && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	limit, offset = normalizePage(limit, offset, 50)
	return s.repo.ListWithdrawals(ctx, status, limit, offset)
}
