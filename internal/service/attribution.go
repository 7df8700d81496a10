package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

var (
	ErrAlreadyAttributed = repository.ErrAlreadyAttributed
	ErrSelfReferral      = errors.New("partners cannot refer themselves")
	ErrMissingVisitor    = errors.New("visitor id is required")
)

const maxLandingPath = 512

type Visit struct {
	ReferralCode string
	VisitorID    string
	LandingPath  string
	At           time.Time
}

type Registration struct {
	UserID       uuid.UUID
	ReferralCode string
	VisitorID    string
	At           time.Time
}

// RegistrationResult is the linked click plus what the registration credit
// did.
type RegistrationResult struct {
	Click  *model.Click  `json:"click"`
	Ingest *IngestResult `json:"ingest,omitempty"`
}

// AttributionService records visits and links registering users to the
// partner whose code brought them in.
type AttributionService struct {
	repo        *repository.Repository
	partners    *PartnerService
	ledger      *LedgerService
	ingest      *IngestService
	visitReward decimal.Decimal
	now         func() time.Time
}

func NewAttributionService(repo *repository.Repository, partners *PartnerService, ledger *LedgerService, ingest *IngestService, visitReward decimal.Decimal) *AttributionService {
	return &AttributionService{
		repo:        repo,
		partners:    partners,
		ledger:      ledger,
		ingest:      ingest,
		visitReward: visitReward,
		now:         utcNow,
	}
}

// RecordVisit stores one click. Visits are not deduplicated.
func (s *AttributionService) RecordVisit(ctx context.Context, v Visit) (*model.Click, error) {
	partner, err := s.partners.Resolve(ctx, v.ReferralCode)
	if err != nil {
		return nil, err
	}
	visitor := strings.TrimSpace(v.VisitorID)
	if visitor == "" {
		return nil, ErrMissingVisitor
	}

	path := v.LandingPath
	if len(path) > maxLandingPath {
		path = path[:maxLandingPath]
	}

	click := &model.Click{
		ID:          uuid.New(),
		PartnerID:   partner.ID,
		VisitorID:   visitor,
		Status:      model.ClickStatusVisitor,
		LandingPath: path,
		CreatedAt:   s.at(v.At),
	}
	if err := s.repo.CreateClick(ctx, click); err != nil {
		return nil, err
	}

	if s.visitReward.IsPositive() {
		_, err := s.ledger.Credit(ctx, CreditInput{
			PartnerID:   partner.ID,
			Type:        model.RewardTypeVisit,
			Amount:      s.visitReward,
			EventRef:    click.ID.String(),
			Description: "Referral link visit",
		})
		if err != nil {
			return nil, err
		}
	}
	return click, nil
}

// LinkRegistration attributes a new user to the partner behind the code and
// credits the registration reward. The first attribution wins: a user
// already linked to another partner is left alone and ErrAlreadyAttributed
// is returned. A repeat for the same partner retries the credit, which is
// idempotent.
func (s *AttributionService) LinkRegistration(ctx context.Context, r Registration) (*RegistrationResult, error) {
	partner, err := s.partners.Resolve(ctx, r.ReferralCode)
	if err != nil {
		return nil, err
	}
	if partner.UserID == r.UserID {
		return nil, ErrSelfReferral
	}

	click, err := s.repo.LinkRegistration(ctx, partner.ID, r.UserID, strings.TrimSpace(r.VisitorID), s.at(r.At))
	if err != nil {
		if !errors.Is(err, repository.ErrAlreadyAttributed) || click == nil {
			return nil, err
		}
		if click.PartnerID != partner.ID {
			slog.InfoContext(ctx, "registration ignored, user already attributed",
				"user_id", r.UserID,
				"partner_id", click.PartnerID,
			)
			return &RegistrationResult{Click: click}, ErrAlreadyAttributed
		}
	}

	ingest, err := s.ingest.IngestRegistration(ctx, r.UserID, partner.ID)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "registration attributed",
		"user_id", r.UserID,
		"partner_id", partner.ID,
		"outcome", ingest.Outcome,
	)
	return &RegistrationResult{Click: click, Ingest: ingest}, nil
}

func (s *AttributionService) at(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t.UTC()
}
