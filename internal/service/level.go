package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

// LevelClassifier derives a partner's level from referrals and lifetime
// earnings. Levels are never stored.
type LevelClassifier struct {
	repo  *repository.Repository
	tiers []model.LevelTier
}

func NewLevelClassifier(repo *repository.Repository, tiers []model.LevelTier) *LevelClassifier {
	if len(tiers) == 0 {
		tiers = model.DefaultLevelTiers
	}
	return &LevelClassifier{repo: repo, tiers: tiers}
}

// Classify returns the highest tier whose thresholds are both met.
func (c *LevelClassifier) Classify(referrals int, earnings decimal.Decimal) model.Level {
	level := model.LevelNovice
	for _, t := range c.tiers {
		if referrals < t.MinReferrals || earnings.LessThan(t.MinEarnings) {
			continue
		}
		if t.Level.Rank() > level.Rank() {
			level = t.Level
		}
	}
	return level
}

func (c *LevelClassifier) Level(ctx context.Context, partnerID uuid.UUID) (model.Level, error) {
	referrals, err := c.repo.CountReferrals(ctx, partnerID)
	if err != nil {
		return "", err
	}
	totals, err := c.repo.GetBalanceTotals(ctx, partnerID)
	if err != nil {
		return "", err
	}
	return c.Classify(referrals, totals.Earnings), nil
}
