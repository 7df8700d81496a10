package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusPaid     WithdrawalStatus = "paid"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalStatusPending:  {WithdrawalStatusApproved, WithdrawalStatusRejected},
	WithdrawalStatusApproved: {WithdrawalStatusPaid, WithdrawalStatusRejected},
}

func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusApproved, WithdrawalStatusPaid, WithdrawalStatusRejected:
		return true
	}
	return false
}

func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	for _, allowed := range withdrawalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal statuses stamp processed_at.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalStatusPaid || s == WithdrawalStatusRejected
}

type Withdrawal struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	PartnerID      uuid.UUID        `json:"partner_id" db:"partner_id"`
	Amount         decimal.Decimal  `json:"amount" db:"amount"`
	PaymentDetails string           `json:"payment_details" db:"payment_details"`
	Contact        *string          `json:"contact,omitempty" db:"contact"`
	Status         WithdrawalStatus `json:"status" db:"status"`
	AdminNotes     *string          `json:"admin_notes,omitempty" db:"admin_notes"`
	RequestedAt    time.Time        `json:"requested_at" db:"requested_at"`
	ProcessedAt    *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}
