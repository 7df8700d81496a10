package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

var (
	ErrNotAttributed    = errors.New("user is not attributed to a partner")
	ErrCurrencyMismatch = errors.New("currency does not match the program currency")
)

type IngestOutcome string

const (
	OutcomeCredited      IngestOutcome = "credited"
	OutcomeDuplicate     IngestOutcome = "duplicate"
	OutcomeNotAttributed IngestOutcome = "not_attributed"
)

// IngestResult reports what an ingested event did. Duplicate and
// not-attributed events are successful no-ops.
type IngestResult struct {
	Outcome   IngestOutcome      `json:"outcome"`
	PartnerID *uuid.UUID         `json:"partner_id,omitempty"`
	Entry     *model.LedgerEntry `json:"entry,omitempty"`
}

type PurchaseEvent struct {
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Currency   string
	EventRef   string
	OccurredAt time.Time
}

type IngestConfig struct {
	Currency           string
	RegistrationReward decimal.Decimal
}

// IngestService turns registration and purchase events into ledger credits.
type IngestService struct {
	repo       *repository.Repository
	ledger     *LedgerService
	commission CommissionRule
	cfg        IngestConfig
}

func NewIngestService(repo *repository.Repository, ledger *LedgerService, commission CommissionRule, cfg IngestConfig) *IngestService {
	cfg.Currency = strings.ToUpper(cfg.Currency)
	return &IngestService{repo: repo, ledger: ledger, commission: commission, cfg: cfg}
}

// Attribution returns the click that links userID to a partner.
func (s *IngestService) Attribution(ctx context.Context, userID uuid.UUID) (*model.Click, error) {
	click, err := s.repo.GetAttribution(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrClickNotFound) {
			return nil, ErrNotAttributed
		}
		return nil, err
	}
	return click, nil
}

// IngestPurchase credits the attributed partner's commission once per
// event_ref. Retrying the same event is safe.
func (s *IngestService) IngestPurchase(ctx context.Context, ev PurchaseEvent) (*IngestResult, error) {
	if !ev.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(ev.EventRef) == "" {
		return nil, ErrMissingEventRef
	}
	if ev.Currency != "" && !strings.EqualFold(ev.Currency, s.cfg.Currency) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrCurrencyMismatch, ev.Currency, s.cfg.Currency)
	}

	click, err := s.Attribution(ctx, ev.UserID)
	if errors.Is(err, ErrNotAttributed) {
		return &IngestResult{Outcome: OutcomeNotAttributed}, nil
	}
	if err != nil {
		return nil, err
	}

	amount, err := s.commission.Commission(ctx, ev.Amount)
	if err != nil {
		return nil, fmt.Errorf("compute commission: %w", err)
	}

	userID := ev.UserID
	entry, err := s.ledger.Credit(ctx, CreditInput{
		PartnerID:      click.PartnerID,
		Type:           model.RewardTypePurchase,
		Amount:         amount,
		EventRef:       ev.EventRef,
		Description:    fmt.Sprintf("Commission for purchase %s (%s %s)", ev.EventRef, ev.Amount.StringFixed(2), s.cfg.Currency),
		ReferredUserID: &userID,
	})
	result := &IngestResult{PartnerID: &click.PartnerID}
	switch {
	case err == nil:
		result.Outcome = OutcomeCredited
		result.Entry = entry
	case errors.Is(err, ErrDuplicateEvent):
		result.Outcome = OutcomeDuplicate
	default:
		return nil, err
	}

	if err := s.repo.MarkClickPurchased(ctx, click.ID); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "purchase ingested",
		"partner_id", click.PartnerID,
		"event_ref", ev.EventRef,
		"occurred_at", ev.OccurredAt,
		"outcome", result.Outcome,
	)
	return result, nil
}

// IngestRegistration credits the registration reward. The user id is the
// event reference, so a user earns its partner at most one registration
// entry.
func (s *IngestService) IngestRegistration(ctx context.Context, userID, partnerID uuid.UUID) (*IngestResult, error) {
	entry, err := s.ledger.Credit(ctx, CreditInput{
		PartnerID:      partnerID,
		Type:           model.RewardTypeRegistration,
		Amount:         s.cfg.RegistrationReward,
		EventRef:       userID.String(),
		Description:    "Referred user registered",
		ReferredUserID: &userID,
	})
	result := &IngestResult{PartnerID: &partnerID}
	switch {
	case err == nil:
		result.Outcome = OutcomeCredited
		result.Entry = entry
	case errors.Is(err, ErrDuplicateEvent):
		result.Outcome = OutcomeDuplicate
	default:
		return nil, err
	}
	return result, nil
}
