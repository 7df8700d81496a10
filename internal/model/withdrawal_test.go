package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalTransitions(t *testing.T) {
	tests := []struct {
		from, to WithdrawalStatus
		want     bool
	}{
		{WithdrawalStatusPending, WithdrawalStatusApproved, true},
		{WithdrawalStatusPending, WithdrawalStatusRejected, true},
		{WithdrawalStatusPending, WithdrawalStatusPaid, false},
		{WithdrawalStatusApproved, WithdrawalStatusPaid, true},
		{WithdrawalStatusApproved, WithdrawalStatusRejected, true},
		{WithdrawalStatusApproved, WithdrawalStatusPending, false},
		{WithdrawalStatusPaid, WithdrawalStatusRejected, false},
		{WithdrawalStatusRejected, WithdrawalStatusPending, false},
		{WithdrawalStatusRejected, WithdrawalStatusApproved, false},
	}
	for _, tt := range tests {
		require.Equalf(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	require.True(t, WithdrawalStatusPaid.Terminal())
	require.True(t, WithdrawalStatusRejected.Terminal())
	require.False(t, WithdrawalStatusApproved.Terminal())
	require.False(t, WithdrawalStatus("cancelled").Valid())
	require.Equal(t, AdminActionWithdrawalPay, WithdrawalAction(WithdrawalStatusPaid))
}

func TestBalanceTotals(t *testing.T) {
	totals := BalanceTotals{
		Earnings:  decimal.RequireFromString("20"),
		Withdrawn: decimal.RequireFromString("4.50"),
		Pending:   decimal.RequireFromString("10"),
	}
	require.True(t, totals.Available().Equal(decimal.RequireFromString("5.5")))

	summary := totals.Summary()
	require.True(t, summary.CurrentBalance.Equal(totals.Available()))
	require.True(t, summary.TotalEarnings.Equal(totals.Earnings))

	remove := LedgerEntry{Type: RewardTypeManualRemove, Amount: decimal.NewFromInt(3)}
	require.True(t, remove.SignedAmount().Equal(decimal.NewFromInt(-3)))
	require.True(t, RewardTypePurchase.Idempotent())
	require.False(t, RewardTypeVisit.Idempotent())
	require.Equal(t, 3, LevelExpert.Rank())
	require.Equal(t, -1, Level("guru").Rank())
}
