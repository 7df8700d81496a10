package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

var (
	ErrUnknownPartner  = errors.New("unknown referral code")
	ErrPartnerNotFound = repository.ErrPartnerNotFound
)

const maxCodeAttempts = 5

// PartnerCache caches referral code lookups. GetPartnerByCode returns nil
// without error on a miss.
type PartnerCache interface {
	GetPartnerByCode(ctx context.Context, code string) (*model.Partner, error)
	SetPartner(ctx context.Context, partner *model.Partner) error
}

type PartnerService struct {
	repo   *repository.Repository
	cache  PartnerCache
	levels *LevelClassifier
	now    func() time.Time
}

func NewPartnerService(repo *repository.Repository) *PartnerService {
	return &PartnerService{repo: repo, now: utcNow}
}

// SetCache enables the referral code cache.
func (s *PartnerService) SetCache(cache PartnerCache) {
	s.cache = cache
}

// SetLevelClassifier sets the level classifier (to avoid circular deps)
func (s *PartnerService) SetLevelClassifier(levels *LevelClassifier) {
	s.levels = levels
}

// Enroll opts a user into the partner program. Enrolling twice returns the
// existing partner.
func (s *PartnerService) Enroll(ctx context.Context, userID uuid.UUID) (*model.Partner, error) {
	existing, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrPartnerNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}

		partner := &model.Partner{
			ID:           uuid.New(),
			UserID:       userID,
			ReferralCode: code,
			CreatedAt:    s.now(),
		}
		err = s.repo.CreatePartner(ctx, partner)
		switch {
		case err == nil:
			slog.InfoContext(ctx, "partner enrolled", "partner_id", partner.ID, "user_id", userID)
			return partner, nil
		case errors.Is(err, repository.ErrPartnerExists):
			return s.repo.GetPartnerByUserID(ctx, userID)
		case errors.Is(err, repository.ErrReferralCodeTaken):
			continue
		default:
			return nil, err
		}
	}
	return nil, errors.New("could not allocate a unique referral code")
}

func (s *PartnerService) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Partner, error) {
	return s.repo.GetPartnerByUserID(ctx, userID)
}

func (s *PartnerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	return s.repo.GetPartner(ctx, id)
}

// Profile returns the partner with its current level.
func (s *PartnerService) Profile(ctx context.Context, userID uuid.UUID) (*model.PartnerProfile, error) {
	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.PartnerProfile{Partner: *partner, Level: model.LevelNovice}
	if s.levels != nil {
		level, err := s.levels.Level(ctx, partner.ID)
		if err != nil {
			return nil, err
		}
		profile.Level = level
	}
	return profile, nil
}

// Resolve maps a referral code to its partner, going through the cache
// when one is configured. Cache failures fall back to the database.
func (s *PartnerService) Resolve(ctx context.Context, code string) (*model.Partner, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrUnknownPartner
	}

	if s.cache != nil {
		partner, err := s.cache.GetPartnerByCode(ctx, code)
		if err != nil {
			slog.WarnContext(ctx, "partner cache read failed", "error", err)
		} else if partner != nil {
			return partner, nil
		}
	}

	partner, err := s.repo.GetPartnerByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			return nil, ErrUnknownPartner
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPartner(ctx, partner); err != nil {
			slog.WarnContext(ctx, "partner cache write failed", "error", err)
		}
	}
	return partner, nil
}

func generateReferralCode() (string, error) {
	bytes := make([]byte, 5)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	code := base32.StdEncoding.EncodeToString(bytes)
	code = strings.TrimRight(code, "=")
	return strings.ToLower(code[:8]), nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
