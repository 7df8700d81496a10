package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

// CommissionSchedule is the commission rule currently in force. Source is
// "settings" when an admin stored one and "config" otherwise.
type CommissionSchedule struct {
	Mode   string          `json:"mode"`
	Value  decimal.Decimal `json:"value"`
	Source string          `json:"source"`
}

type AdminService struct {
	repo     *repository.Repository
	ledger   *LedgerService
	fallback CommissionSchedule
}

func NewAdminService(repo *repository.Repository, ledger *LedgerService, fallbackMode string, fallbackValue decimal.Decimal) *AdminService {
	return &AdminService{
		repo:   repo,
		ledger: ledger,
		fallback: CommissionSchedule{
			Mode:   fallbackMode,
			Value:  fallbackValue,
			Source: "config",
		},
	}
}

// IsAdmin checks if user is listed as an admin
func (s *AdminService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

// ManualAdjust writes a manual_add or manual_remove entry and records it in
// the audit log. Removals fail with ErrInsufficientFunds when they would
// overdraw the balance.
func (s *AdminService) ManualAdjust(ctx context.Context, adminID, partnerID uuid.UUID, entryType model.RewardType, amount decimal.Decimal, description string) (*model.LedgerEntry, error) {
	if !entryType.Manual() {
		return nil, ErrInvalidRewardType
	}
	if _, err := s.repo.GetPartner(ctx, partnerID); err != nil {
		return nil, err
	}

	entry, err := s.ledger.Credit(ctx, CreditInput{
		PartnerID:   partnerID,
		Type:        entryType,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	action := model.AdminActionManualAdd
	if entryType.IsDebit() {
		action = model.AdminActionManualRemove
	}
	details := map[string]interface{}{
		"entry_id":    entry.ID,
		"amount":      entry.Amount.String(),
		"description": description,
	}
	if err := s.repo.LogAdminAction(ctx, adminID, action, &partnerID, details); err != nil {
		slog.ErrorContext(ctx, "failed to write admin log", "error", err, "entry_id", entry.ID)
	}

	slog.InfoContext(ctx, "manual ledger adjustment",
		"admin_id", adminID,
		"partner_id", partnerID,
		"type", entryType,
		"amount", entry.Amount.String(),
	)
	return entry, nil
}

// GetLogs returns the audit log, newest first.
func (s *AdminService) GetLogs(ctx context.Context, partnerID *uuid.UUID, limit, offset int) ([]model.AdminLog, error) {
	limit, offset = normalizePage(limit, offset, 50)
	if partnerID != nil {
		return s.repo.GetAdminLogsByTarget(ctx, *partnerID, limit, offset)
	}
	return s.repo.GetAdminLogs(ctx, limit, offset)
}

// GetCommission returns the stored schedule, or the configured one when
// none has been stored.
func (s *AdminService) GetCommission(ctx context.Context) (*CommissionSchedule, error) {
	schedule, err := loadCommissionSchedule(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		fallback := s.fallback
		return &fallback, nil
	}
	return schedule, nil
}

// SetCommission stores a new schedule. Mode and value are written together
// and apply to purchases ingested afterwards; existing entries are not
// touched.
func (s *AdminService) SetCommission(ctx context.Context, adminID uuid.UUID, mode string, value decimal.Decimal) (*CommissionSchedule, error) {
	if _, err := NewCommissionRule(mode, value); err != nil {
		return nil, err
	}
	err := s.repo.SetSettings(ctx, map[string]string{
		SettingCommissionMode:  mode,
		SettingCommissionValue: value.String(),
	})
	if err != nil {
		return nil, err
	}

	details := map[string]interface{}{"mode": mode, "value": value.String()}
	if err := s.repo.LogAdminAction(ctx, adminID, model.AdminActionSetCommission, nil, details); err != nil {
		slog.ErrorContext(ctx, "failed to write admin log", "error", err)
	}
	return &CommissionSchedule{Mode: mode, Value: value, Source: "settings"}, nil
}
