package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RewardType string

const (
	RewardTypeVisit        RewardType = "visit"
	RewardTypeRegistration RewardType = "registration"
	RewardTypePurchase     RewardType = "purchase"
	RewardTypeManualAdd    RewardType = "manual_add"
	RewardTypeManualRemove RewardType = "manual_remove"
)

func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeVisit, RewardTypeRegistration, RewardTypePurchase, RewardTypeManualAdd, RewardTypeManualRemove:
		return true
	}
	return false
}

// Idempotent reports whether at most one entry per (partner, type, event_ref)
// may exist. Backed by a unique index on the ledger table.
func (t RewardType) Idempotent() bool {
	return t == RewardTypeRegistration || t == RewardTypePurchase
}

func (t RewardType) Manual() bool {
	return t == RewardTypeManualAdd || t == RewardTypeManualRemove
}

// IsDebit reports whether the entry amount is subtracted from earnings.
func (t RewardType) IsDebit() bool {
	return t == RewardTypeManualRemove
}

type RewardStatus string

const (
	RewardStatusPending  RewardStatus = "pending"
	RewardStatusApproved RewardStatus = "approved"
	RewardStatusPaid     RewardStatus = "paid"
	RewardStatusRejected RewardStatus = "rejected"
)

func (s RewardStatus) Valid() bool {
	switch s {
	case RewardStatusPending, RewardStatusApproved, RewardStatusPaid, RewardStatusRejected:
		return true
	}
	return false
}

// LedgerEntry is an immutable accounting fact. Amount is never negative; the
// sign comes from the type.
type LedgerEntry struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	PartnerID      uuid.UUID       `json:"partner_id" db:"partner_id"`
	Type           RewardType      `json:"type" db:"type"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Status         RewardStatus    `json:"status" db:"status"`
	Description    string          `json:"description" db:"description"`
	EventRef       *string         `json:"event_ref,omitempty" db:"event_ref"`
	ReferredUserID *uuid.UUID      `json:"referred_user_id,omitempty" db:"referred_user_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// SignedAmount returns the entry's effect on earnings.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Type.IsDebit() {
		return e.Amount.Neg()
	}
	return e.Amount
}

type LedgerFilter struct {
	Type   *RewardType
	Status *RewardStatus
	Limit  int
	Offset int
}

type LedgerPage struct {
	Entries []LedgerEntry `json:"entries"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// BalanceTotals are the raw aggregates read from the ledger and withdrawal
// tables. Nothing here is persisted.
type BalanceTotals struct {
	Earnings  decimal.Decimal `db:"earnings"`
	Withdrawn decimal.Decimal `db:"withdrawn"`
	Pending   decimal.Decimal `db:"pending"`
}

// Available is earnings minus every withdrawal that is not rejected.
func (t BalanceTotals) Available() decimal.Decimal {
	return t.Earnings.Sub(t.Withdrawn).Sub(t.Pending)
}

type BalanceSummary struct {
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Withdrawn      decimal.Decimal `json:"withdrawn"`
	Pending        decimal.Decimal `json:"pending"`
}

func (t BalanceTotals) Summary() BalanceSummary {
	return BalanceSummary{
		TotalEarnings:  t.Earnings,
		CurrentBalance: t.Available(),
		Withdrawn:      t.Withdrawn,
		Pending:        t.Pending,
	}
}
