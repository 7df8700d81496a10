package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

// Settings keys for the admin-editable commission schedule.
const (
	SettingCommissionMode  = "referral_commission_mode"
	SettingCommissionValue = "referral_commission_value"
)

const (
	CommissionModePercent = "percent"
	CommissionModeFlat    = "flat"
)

var ErrInvalidCommission = errors.New("invalid commission schedule")

var hundred = decimal.NewFromInt(100)

// CommissionRule computes the partner reward for a purchase amount.
type CommissionRule interface {
	Commission(ctx context.Context, purchase decimal.Decimal) (decimal.Decimal, error)
}

// PercentCommission pays Percent percent of the purchase amount.
type PercentCommission struct {
	Percent decimal.Decimal
}

func (c PercentCommission) Commission(_ context.Context, purchase decimal.Decimal) (decimal.Decimal, error) {
	return purchase.Mul(c.Percent).Div(hundred).Round(2), nil
}

// FlatCommission pays a fixed amount per purchase.
type FlatCommission struct {
	Amount decimal.Decimal
}

func (c FlatCommission) Commission(_ context.Context, _ decimal.Decimal) (decimal.Decimal, error) {
	return c.Amount.Round(2), nil
}

// NewCommissionRule builds a static rule from a mode and value.
func NewCommissionRule(mode string, value decimal.Decimal) (CommissionRule, error) {
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: negative value", ErrInvalidCommission)
	}
	switch mode {
	case CommissionModePercent:
		if value.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: percent above 100", ErrInvalidCommission)
		}
		return PercentCommission{Percent: value}, nil
	case CommissionModeFlat:
		return FlatCommission{Amount: value}, nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidCommission, mode)
}

// SettingsCommission reads the schedule from the settings table on every
// call and uses Fallback while no schedule has been stored.
type SettingsCommission struct {
	repo     *repository.Repository
	Fallback CommissionRule
}

func NewSettingsCommission(repo *repository.Repository, fallback CommissionRule) *SettingsCommission {
	return &SettingsCommission{repo: repo, Fallback: fallback}
}

func (c *SettingsCommission) Commission(ctx context.Context, purchase decimal.Decimal) (decimal.Decimal, error) {
	rule, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return rule.Commission(ctx, purchase)
}

func (c *SettingsCommission) current(ctx context.Context) (CommissionRule, error) {
	schedule, err := loadCommissionSchedule(ctx, c.repo)
	if errors.Is(err, ErrInvalidCommission) {
		slog.WarnContext(ctx, "stored commission schedule is invalid, using fallback", "error", err)
		return c.Fallback, nil
	}
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return c.Fallback, nil
	}

	rule, err := NewCommissionRule(schedule.Mode, schedule.Value)
	if err != nil {
		slog.WarnContext(ctx, "stored commission schedule is invalid, using fallback", "error", err)
		return c.Fallback, nil
	}
	return rule, nil
}

// loadCommissionSchedule reads mode and value in one query. It returns nil
// unless both keys are stored.
func loadCommissionSchedule(ctx context.Context, repo *repository.Repository) (*CommissionSchedule, error) {
	values, err := repo.GetSettings(ctx, SettingCommissionMode, SettingCommissionValue)
	if err != nil {
		return nil, err
	}
	mode, okMode := values[SettingCommissionMode]
	raw, okValue := values[SettingCommissionValue]
	if !okMode || !okValue {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommission, err)
	}
	return &CommissionSchedule{Mode: mode, Value: value, Source: "settings"}, nil
}
