package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

// StatsService assembles the partner dashboard from click aggregates, the
// ledger and the derived balance.
type StatsService struct {
	repo   *repository.Repository
	levels *LevelClassifier
}

func NewStatsService(repo *repository.Repository, levels *LevelClassifier) *StatsService {
	return &StatsService{repo: repo, levels: levels}
}

func (s *StatsService) Dashboard(ctx context.Context, partnerID uuid.UUID) (*model.DashboardStats, error) {
	clicks, err := s.repo.GetClickStats(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.CountLedgerEntries(ctx, partnerID, model.RewardTypePurchase)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.GetBalanceTotals(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		PartnerID: partnerID.String(),
		Visits: model.VisitStats{
			Total:  clicks.TotalVisits,
			Unique: clicks.UniqueVisits,
		},
		Registrations: model.ConversionStats{
			Total:      clicks.Registrations,
			Conversion: percentage(clicks.Registrations, clicks.UniqueVisits),
		},
		Purchases: model.ConversionStats{
			Total:      purchases,
			Conversion: percentage(clicks.Purchasers, clicks.Registrations),
		},
		Balance: totals.Summary(),
		Level:   s.levels.Classify(clicks.Registrations, totals.Earnings),
	}, nil
}

// percentage returns part/whole*100 rounded to two decimals, or 0 when
// whole is 0.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).
		Float64()
	return p
}
