package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

func TestDashboardEmpty(t *testing.T) {
	env := newEnv(t)
	partner := env.enroll(t)

	stats, err := env.stats.Dashboard(context.Background(), partner.ID)
	require.NoError(t, err)
	require.Equal(t, partner.ID.String(), stats.PartnerID)
	require.Zero(t, stats.Visits.Total)
	require.Zero(t, stats.Registrations.Conversion)
	require.Zero(t, stats.Purchases.Conversion)
	require.Equal(t, model.LevelNovice, stats.Level)
	requireDecimal(t, "0", stats.Balance.CurrentBalance)
}

func TestDashboardConversions(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)

	// Six unique visitors, one of them twice.
	for i := 0; i < 6; i++ {
		_, err := env.attribution.RecordVisit(ctx, service.Visit{
			ReferralCode: partner.ReferralCode,
			VisitorID:    fmt.Sprintf("visitor-%d", i),
		})
		require.NoError(t, err)
	}
	_, err := env.attribution.RecordVisit(ctx, service.Visit{
		ReferralCode: partner.ReferralCode,
		VisitorID:    "visitor-0",
	})
	require.NoError(t, err)

	// Three of them register, one buys twice.
	users := make([]uuid.UUID, 3)
	for i := range users {
		users[i] = uuid.New()
		_, err := env.attribution.LinkRegistration(ctx, service.Registration{
			UserID:       users[i],
			ReferralCode: partner.ReferralCode,
			VisitorID:    fmt.Sprintf("visitor-%d", i),
		})
		require.NoError(t, err)
	}
	for _, ref := range []string{"order-1", "order-2"} {
		_, err := env.ingest.IngestPurchase(ctx, service.PurchaseEvent{
			UserID:   users[0],
			Amount:   dec("50"),
			Currency: "EUR",
			EventRef: ref,
		})
		require.NoError(t, err)
	}

	stats, err := env.stats.Dashboard(ctx, partner.ID)
	require.NoError(t, err)
	require.Equal(t, 7, stats.Visits.Total)
	require.Equal(t, 6, stats.Visits.Unique)
	require.Equal(t, 3, stats.Registrations.Total)
	require.Equal(t, 50.0, stats.Registrations.Conversion)
	require.Equal(t, 2, stats.Purchases.Total)
	require.Equal(t, 33.33, stats.Purchases.Conversion)
	requireDecimal(t, "10", stats.Balance.TotalEarnings)
	requireDecimal(t, "10", stats.Balance.CurrentBalance)
}
