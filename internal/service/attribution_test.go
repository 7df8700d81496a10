package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
)

func TestRecordVisitUnknownCode(t *testing.T) {
	env := newEnv(t)

	_, err := env.attribution.RecordVisit(context.Background(), service.Visit{
		ReferralCode: "nosuchcd",
		VisitorID:    "visitor-1",
	})
	require.ErrorIs(t, err, service.ErrUnknownPartner)

	_, err = env.attribution.RecordVisit(context.Background(), service.Visit{VisitorID: "visitor-1"})
	require.ErrorIs(t, err, service.ErrUnknownPartner)
}

func TestRecordVisit(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)

	click, err := env.attribution.RecordVisit(ctx, service.Visit{
		ReferralCode: strings.ToUpper(partner.ReferralCode),
		VisitorID:    " visitor-1 ",
		LandingPath:  "/courses/" + strings.Repeat("x", 600),
	})
	require.NoError(t, err)
	require.Equal(t, partner.ID, click.PartnerID)
	require.Equal(t, "visitor-1", click.VisitorID)
	require.Equal(t, model.ClickStatusVisitor, click.Status)
	require.Nil(t, click.UserID)
	require.Len(t, click.LandingPath, 512)

	_, err = env.attribution.RecordVisit(ctx, service.Visit{ReferralCode: partner.ReferralCode})
	require.ErrorIs(t, err, service.ErrMissingVisitor)

	// No visit reward is configured, so the ledger stays empty.
	page, err := env.ledger.List(ctx, partner.ID, model.LedgerFilter{})
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestRecordVisitCreditsVisitReward(t *testing.T) {
	env := newEnv(t, withVisitReward("0.05"))
	ctx := context.Background()
	partner := env.enroll(t)

	for i := 0; i < 3; i++ {
		_, err := env.attribution.RecordVisit(ctx, service.Visit{
			ReferralCode: partner.ReferralCode,
			VisitorID:    "visitor-1",
		})
		require.NoError(t, err)
	}

	visit := model.RewardTypeVisit
	page, err := env.ledger.List(ctx, partner.ID, model.LedgerFilter{Type: &visit})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	requireDecimal(t, "0.15", env.available(t, partner.ID))
}

func TestLinkRegistrationClaimsLatestVisit(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var latest *model.Click
	for i := 0; i < 3; i++ {
		click, err := env.attribution.RecordVisit(ctx, service.Visit{
			ReferralCode: partner.ReferralCode,
			VisitorID:    "visitor-1",
			At:           base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		latest = click
	}

	userID := uuid.New()
	res, err := env.attribution.LinkRegistration(ctx, service.Registration{
		UserID:       userID,
		ReferralCode: partner.ReferralCode,
		VisitorID:    "visitor-1",
		At:           base.Add(5 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, latest.ID, res.Click.ID)
	require.Equal(t, userID, *res.Click.UserID)
	require.Equal(t, model.ClickStatusRegistered, res.Click.Status)
	require.Equal(t, service.OutcomeCredited, res.Ingest.Outcome)

	stats, err := env.stats.Dashboard(ctx, partner.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Visits.Total)
	require.Equal(t, 1, stats.Visits.Unique)
	require.Equal(t, 1, stats.Registrations.Total)
}

func TestLinkRegistrationWithoutVisit(t *testing.T) {
	env := newEnv(t, withRegistrationReward("2.50"))
	ctx := context.Background()
	partner := env.enroll(t)

	userID := env.referredUser(t, partner)

	click, err := env.ingest.Attribution(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, partner.ID, click.PartnerID)
	require.Equal(t, userID.String(), click.VisitorID)
	requireDecimal(t, "2.5", env.available(t, partner.ID))
}

func TestLinkRegistrationRejectsSelfReferral(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	partner := env.enroll(t)

	_, err := env.attribution.LinkRegistration(ctx, service.Registration{
		UserID:       partner.UserID,
		ReferralCode: partner.ReferralCode,
	})
	require.ErrorIs(t, err, service.ErrSelfReferral)

	_, err = env.ingest.Attribution(ctx, partner.UserID)
	require.ErrorIs(t, err, service.ErrNotAttributed)
}

func TestLinkRegistrationFirstPartnerWins(t *testing.T) {
	env := newEnv(t, withRegistrationReward("1"))
	ctx := context.Background()
	first := env.enroll(t)
	second := env.enroll(t)

	userID := env.referredUser(t, first)

	res, err := env.attribution.LinkRegistration(ctx, service.Registration{
		UserID:       userID,
		ReferralCode: second.ReferralCode,
	})
	require.ErrorIs(t, err, service.ErrAlreadyAttributed)
	require.Equal(t, first.ID, res.Click.PartnerID)

	click, err := env.ingest.Attribution(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, first.ID, click.PartnerID)
	requireDecimal(t, "1", env.available(t, first.ID))
	requireDecimal(t, "0", env.available(t, second.ID))
}

func TestLinkRegistrationReplayIsIdempotent(t *testing.T) {
	env := newEnv(t, withRegistrationReward("1"))
	ctx := context.Background()
	partner := env.enroll(t)

	userID := env.referredUser(t, partner)

	res, err := env.attribution.LinkRegistration(ctx, service.Registration{
		UserID:       userID,
		ReferralCode: partner.ReferralCode,
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeDuplicate, res.Ingest.Outcome)

	registration := model.RewardTypeRegistration
	page, err := env.ledger.List(ctx, partner.ID, model.LedgerFilter{Type: &registration})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	requireDecimal(t, "1", env.available(t, partner.ID))
}

func TestLinkRegistrationConcurrentPartners(t *testing.T) {
	env := newEnv(t, withRegistrationReward("1"))
	ctx := context.Background()
	partners := []*model.Partner{env.enroll(t), env.enroll(t)}
	userID := uuid.New()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.attribution.LinkRegistration(ctx, service.Registration{
				UserID:       userID,
				ReferralCode: partners[i%2].ReferralCode,
			})
		}(i)
	}
	wg.Wait()

	click, err := env.ingest.Attribution(ctx, userID)
	require.NoError(t, err)

	for i, err := range errs {
		if partners[i%2].ID == click.PartnerID {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, service.ErrAlreadyAttributed)
		}
	}

	registration := model.RewardTypeRegistration
	entries := 0
	for _, p := range partners {
		page, err := env.ledger.List(ctx, p.ID, model.LedgerFilter{Type: &registration})
		require.NoError(t, err)
		entries += page.Total
	}
	require.Equal(t, 1, entries)
	requireDecimal(t, "1", env.available(t, click.PartnerID))
}
