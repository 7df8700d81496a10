package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/service"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/testutil"
)

type testEnv struct {
	repo        *repository.Repository
	partners    *service.PartnerService
	ledger      *service.LedgerService
	balance     *service.BalanceService
	withdrawals *service.WithdrawalService
	levels      *service.LevelClassifier
	ingest      *service.IngestService
	attribution *service.AttributionService
	stats       *service.StatsService
	admin       *service.AdminService
}

type envOptions struct {
	commission         service.CommissionRule
	registrationReward decimal.Decimal
	visitReward        decimal.Decimal
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newEnv wires the services the way cmd/server does, against SQLite. The
// default commission is 10 percent.
func newEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()

	o := envOptions{commission: service.PercentCommission{Percent: dec("10")}}
	for _, opt := range opts {
		opt(&o)
	}

	repo := testutil.NewRepository(t)
	ledger := service.NewLedgerService(repo)
	levels := service.NewLevelClassifier(repo, nil)
	partners := service.NewPartnerService(repo)
	partners.SetLevelClassifier(levels)
	ingest := service.NewIngestService(repo, ledger, o.commission, service.IngestConfig{
		Currency:           "EUR",
		RegistrationReward: o.registrationReward,
	})

	return &testEnv{
		repo:        repo,
		partners:    partners,
		ledger:      ledger,
		balance:     service.NewBalanceService(repo),
		withdrawals: service.NewWithdrawalService(repo),
		levels:      levels,
		ingest:      ingest,
		attribution: service.NewAttributionService(repo, partners, ledger, ingest, o.visitReward),
		stats:       service.NewStatsService(repo, levels),
		admin:       service.NewAdminService(repo, ledger, service.CommissionModePercent, dec("10")),
	}
}

func withRegistrationReward(v string) func(*envOptions) {
	return func(o *envOptions) { o.registrationReward = dec(v) }
}

func withVisitReward(v string) func(*envOptions) {
	return func(o *envOptions) { o.visitReward = dec(v) }
}

func withCommission(rule service.CommissionRule) func(*envOptions) {
	return func(o *envOptions) { o.commission = rule }
}

func (e *testEnv) enroll(t *testing.T) *model.Partner {
	t.Helper()
	partner, err := e.partners.Enroll(context.Background(), uuid.New())
	require.NoError(t, err)
	return partner
}

// referredUser registers a new user through the partner's code.
func (e *testEnv) referredUser(t *testing.T, partner *model.Partner) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := e.attribution.LinkRegistration(context.Background(), service.Registration{
		UserID:       userID,
		ReferralCode: partner.ReferralCode,
	})
	require.NoError(t, err)
	return userID
}

// earn credits the partner a purchase commission of exactly amount under
// the default 10 percent rule.
func (e *testEnv) earn(t *testing.T, partner *model.Partner, amount string) {
	t.Helper()
	userID := e.referredUser(t, partner)
	res, err := e.ingest.IngestPurchase(context.Background(), service.PurchaseEvent{
		UserID:   userID,
		Amount:   dec(amount).Mul(decimal.NewFromInt(10)),
		Currency: "EUR",
		EventRef: "order-" + uuid.NewString(),
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeCredited, res.Outcome)
}

func (e *testEnv) available(t *testing.T, partnerID uuid.UUID) decimal.Decimal {
	t.Helper()
	v, err := e.balance.AvailableBalance(context.Background(), partnerID)
	require.NoError(t, err)
	return v
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
