package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

func purchaseEntries(t *testing.T, env *testEnv, partnerID uuid.UUID) []model.LedgerEntry {
	t.Helper()
	purchase := model.RewardTypePurchase
	page, err := env.ledger.List(context.Background(), partnerID, model.LedgerFilter{Type: &purchase})
	require.NoError(t, err)
	return page.Entries
}

func TestIngestPurchaseCreditsCommissionOnce(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	ev := service.PurchaseEvent{
		UserID:   userID,
		Amount:   dec("199.90"),
		Currency: "EUR",
		EventRef: "order-1",
	}

	first, err := env.ingest.IngestPurchase(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeCredited, first.Outcome)
	require.NotNil(t, first.Entry)
	requireDecimal(t, "19.99", first.Entry.Amount)

	second, err := env.ingest.IngestPurchase(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeDuplicate, second.Outcome)
	require.Nil(t, second.Entry)

	entries := purchaseEntries(t, env, partner.ID)
	require.Len(t, entries, 1)
	require.Equal(t, "order-1", *entries[0].EventRef)
	require.Equal(t, userID, *entries[0].ReferredUserID)
	requireDecimal(t, "19.99", env.available(t, partner.ID))
}

func TestIngestPurchaseConcurrentDuplicates(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	const workers = 8
	var wg sync.WaitGroup
	outcomes := make([]service.IngestOutcome, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := env.ingest.IngestPurchase(ctx, service.PurchaseEvent{
				UserID:   userID,
				Amount:   dec("200"),
				EventRef: "order-concurrent",
			})
			errs[i] = err
			if res != nil {
				outcomes[i] = res.Outcome
			}
		}(i)
	}
	wg.Wait()

	credited := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if outcomes[i] == service.OutcomeCredited {
			credited++
		} else {
			require.Equal(t, service.OutcomeDuplicate, outcomes[i])
		}
	}
	require.Equal(t, 1, credited)
	require.Len(t, purchaseEntries(t, env, partner.ID), 1)
	requireDecimal(t, "20", env.available(t, partner.ID))
}

func TestIngestPurchaseNotAttributed(t *testing.T) {
	env := newEnv(t)

	res, err := env.ingest.IngestPurchase(context.Background(), service.PurchaseEvent{
		UserID:   uuid.New(),
		Amount:   dec("50"),
		EventRef: "order-anon",
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeNotAttributed, res.Outcome)
	require.Nil(t, res.PartnerID)
}

func TestIngestPurchaseValidation(t *testing.T) {
	env := newEnv(t)
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	tests := []struct {
		name string
		ev   service.PurchaseEvent
		err  error
	}{
		{
			name: "zero amount",
			ev:   service.PurchaseEvent{UserID: userID, Amount: dec("0"), EventRef: "o-1"},
			err:  service.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			ev:   service.PurchaseEvent{UserID: userID, Amount: dec("-5"), EventRef: "o-2"},
			err:  service.ErrInvalidAmount,
		},
		{
			name: "missing event ref",
			ev:   service.PurchaseEvent{UserID: userID, Amount: dec("5"), EventRef: "  "},
			err:  service.ErrMissingEventRef,
		},
		{
			name: "other currency",
			ev:   service.PurchaseEvent{UserID: userID, Amount: dec("5"), Currency: "USD", EventRef: "o-3"},
			err:  service.ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ingest.IngestPurchase(context.Background(), tt.ev)
			require.ErrorIs(t, err, tt.err)
		})
	}
	require.Empty(t, purchaseEntries(t, env, partner.ID))
}

func TestIngestPurchaseCurrencyIsCaseInsensitive(t *testing.T) {
	env := newEnv(t)
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	res, err := env.ingest.IngestPurchase(context.Background(), service.PurchaseEvent{
		UserID:   userID,
		Amount:   dec("10"),
		Currency: "eur",
		EventRef: "order-lower",
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeCredited, res.Outcome)
}

func TestIngestPurchaseMarksClickPurchased(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	_, err := env.ingest.IngestPurchase(ctx, service.PurchaseEvent{UserID: userID, Amount: dec("10"), EventRef: "order-2"})
	require.NoError(t, err)

	click, err := env.ingest.Attribution(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, model.ClickStatusPurchased, click.Status)
	require.Equal(t, userID, *click.UserID)
}

func TestIngestPurchaseFlatCommission(t *testing.T) {
	env := newEnv(t, withCommission(service.FlatCommission{Amount: dec("7.5")}))
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	res, err := env.ingest.IngestPurchase(context.Background(), service.PurchaseEvent{
		UserID:   userID,
		Amount:   dec("1000"),
		EventRef: "order-flat",
	})
	require.NoError(t, err)
	requireDecimal(t, "7.5", res.Entry.Amount)
}

func TestIngestRegistrationIsIdempotent(t *testing.T) {
	env := newEnv(t, withRegistrationReward("2"))
	ctx := context.Background()
	partner := env.enroll(t)
	userID := env.referredUser(t, partner)

	res, err := env.ingest.IngestRegistration(ctx, userID, partner.ID)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeDuplicate, res.Outcome)

	registration := model.RewardTypeRegistration
	page, err := env.ledger.List(ctx, partner.ID, model.LedgerFilter{Type: &registration})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	require.Equal(t, userID.String(), *page.Entries[0].EventRef)
	requireDecimal(t, "2", env.available(t, partner.ID))
}
