package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

var (
	ErrDuplicateEvent     = repository.ErrDuplicateEvent
	ErrInsufficientFunds  = repository.ErrInsufficientFunds
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidRewardType  = errors.New("invalid reward type")
	ErrMissingEventRef    = errors.New("event reference is required")
	ErrMissingDescription = errors.New("description is required for manual entries")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type CreditInput struct {
	PartnerID      uuid.UUID
	Type           model.RewardType
	Amount         decimal.Decimal
	EventRef       string
	Description    string
	ReferredUserID *uuid.UUID
}

// LedgerService appends reward entries. Entries are never updated or
// deleted.
type LedgerService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewLedgerService(repo *repository.Repository) *LedgerService {
	return &LedgerService{repo: repo, now: utcNow}
}

// Credit appends an entry. For registration and purchase entries a repeated
// event_ref returns ErrDuplicateEvent, which callers treat as success.
func (s *LedgerService) Credit(ctx context.Context, in CreditInput) (*model.LedgerEntry, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidRewardType
	}
	amount := in.Amount.Round(2)
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if in.Type.Idempotent() && in.EventRef == "" {
		return nil, ErrMissingEventRef
	}
	if in.Type.Manual() {
		if in.Description == "" {
			return nil, ErrMissingDescription
		}
		if !amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
	}

	entry := &model.LedgerEntry{
		ID:             uuid.New(),
		PartnerID:      in.PartnerID,
		Type:           in.Type,
		Amount:         amount,
		Status:         model.RewardStatusApproved,
		Description:    in.Description,
		ReferredUserID: in.ReferredUserID,
		CreatedAt:      s.now(),
	}
	if in.EventRef != "" {
		ref := in.EventRef
		entry.EventRef = &ref
	}

	var err error
	if in.Type.IsDebit() {
		err = s.repo.CreateDebitEntry(ctx, entry)
	} else {
		err = s.repo.CreateLedgerEntry(ctx, entry)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries newest first. Limit defaults to 20 and is capped at 100.
func (s *LedgerService) List(ctx context.Context, partnerID uuid.UUID, filter model.LedgerFilter) (*model.LedgerPage, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset, defaultPageLimit)
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, ErrInvalidRewardType
	}

	entries, total, err := s.repo.ListLedgerEntries(ctx, partnerID, filter)
	if err != nil {
		return nil, err
	}
	return &model.LedgerPage{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func normalizePage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
