package model

import (
	"time"

	"github.com/google/uuid"
)

type Partner struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	ReferralCode string    `json:"referral_code" db:"referral_code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type ClickStatus string

const (
	ClickStatusVisitor    ClickStatus = "visitor"
	ClickStatusRegistered ClickStatus = "registered"
	ClickStatusPurchased  ClickStatus = "purchased"
)

// Click is one tracked visit against a partner's referral code. UserID is
// set once, when the visitor registers, and never reassigned.
type Click struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	PartnerID    uuid.UUID   `json:"partner_id" db:"partner_id"`
	VisitorID    string      `json:"visitor_id" db:"visitor_id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty" db:"user_id"`
	Status       ClickStatus `json:"status" db:"status"`
	LandingPath  string      `json:"landing_path" db:"landing_path"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	RegisteredAt *time.Time  `json:"registered_at,omitempty" db:"registered_at"`
}

type ClickStats struct {
	TotalVisits   int `db:"total_visits"`
	UniqueVisits  int `db:"unique_visits"`
	Registrations int `db:"registrations"`
	Purchasers    int `db:"purchasers"`
}
