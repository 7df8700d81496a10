package model

import (
	"time"

	"github.com/google/uuid"
)

type AdminRole string

const (
	AdminRoleAdmin AdminRole = "admin"
)

type Admin struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Role      AdminRole  `json:"role" db:"role"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
}

type AdminLog struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	AdminID         uuid.UUID  `json:"admin_id" db:"admin_id"`
	Action          string     `json:"action" db:"action"`
	TargetPartnerID *uuid.UUID `json:"target_partner_id,omitempty" db:"target_partner_id"`
	Details         string     `json:"details,omitempty" db:"details"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Admin action constants
const (
	AdminActionManualAdd         = "ledger_manual_add"
	AdminActionManualRemove      = "ledger_manual_remove"
	AdminActionWithdrawalApprove = "withdrawal_approve"
	AdminActionWithdrawalPay     = "withdrawal_pay"
	AdminActionWithdrawalReject  = "withdrawal_reject"
	AdminActionSetCommission     = "set_commission"
)

// WithdrawalAction maps a target status to its audit action name.
func WithdrawalAction(to WithdrawalStatus) string {
	switch to {
	case WithdrawalStatusApproved:
		return AdminActionWithdrawalApprove
	case WithdrawalStatusPaid:
		return AdminActionWithdrawalPay
	default:
		return AdminActionWithdrawalReject
	}
}
