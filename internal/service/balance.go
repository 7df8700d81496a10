package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

// BalanceService derives balances from the ledger and withdrawals on every
// call.
type BalanceService struct {
	repo *repository.Repository
}

func NewBalanceService(repo *repository.Repository) *BalanceService {
	return &BalanceService{repo: repo}
}

func (s *BalanceService) AvailableBalance(ctx context.Context, partnerID uuid.UUID) (decimal.Decimal, error) {
	totals, err := s.repo.GetBalanceTotals(ctx, partnerID)
	if err != nil {
		return decimal.Zero, err
	}
	return totals.Available(), nil
}

func (s *BalanceService) Summary(ctx context.Context, partnerID uuid.UUID) (*model.BalanceSummary, error) {
	totals, err := s.repo.GetBalanceTotals(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	summary := totals.Summary()
	return &summary, nil
}
