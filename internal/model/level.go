package model

import "github.com/shopspring/decimal"

type Level string

const (
	LevelNovice       Level = "novice"
	LevelActive       Level = "active"
	LevelProfessional Level = "professional"
	LevelExpert       Level = "expert"
)

func (l Level) Valid() bool {
	switch l {
	case LevelNovice, LevelActive, LevelProfessional, LevelExpert:
		return true
	}
	return false
}

// Rank orders levels from novice (0) to expert (3). Unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case LevelNovice:
		return 0
	case LevelActive:
		return 1
	case LevelProfessional:
		return 2
	case LevelExpert:
		return 3
	}
	return -1
}

// LevelTier is one row of the threshold table. A partner reaches the tier when
// both minimums are met.
type LevelTier struct {
	Level        Level           `json:"level"`
	MinReferrals int             `json:"min_referrals"`
	MinEarnings  decimal.Decimal `json:"min_earnings"`
}

// DefaultLevelTiers is used when no tiers file is configured.
var DefaultLevelTiers = []LevelTier{
	{Level: LevelNovice, MinReferrals: 0, MinEarnings: decimal.Zero},
	{Level: LevelActive, MinReferrals: 5, MinEarnings: decimal.Zero},
	{Level: LevelProfessional, MinReferrals: 20, MinEarnings: decimal.NewFromInt(500)},
	{Level: LevelExpert, MinReferrals: 50, MinEarnings: decimal.NewFromInt(2000)},
}

type PartnerProfile struct {
	Partner
	Level Level `json:"level"`
}

type VisitStats struct {
	Total  int `json:"total"`
	Unique int `json:"unique"`
}

type ConversionStats struct {
	Total      int     `json:"total"`
	Conversion float64 `json:"conversion"`
}

// DashboardStats is what the partner-facing statistics page renders.
type DashboardStats struct {
	PartnerID     string          `json:"partner_id"`
	Visits        VisitStats      `json:"visits"`
	Registrations ConversionStats `json:"registrations"`
	Purchases     ConversionStats `json:"purchases"`
	Balance       BalanceSummary  `json:"balance"`
	Level         Level           `json:"level"`
}
