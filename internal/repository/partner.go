package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

var (
	ErrPartnerNotFound   = errors.New("partner not found")
	ErrPartnerExists     = errors.New("partner already exists")
	ErrReferralCodeTaken = errors.New("referral code already taken")
)

func (r *Repository) GetPartner(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.GetContext(ctx, &partner, r.db.Rebind("SELECT * FROM partners WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}

func (r *Repository) GetPartnerByUserID(ctx context.Context, userID uuid.UUID) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.GetContext(ctx, &partner, r.db.Rebind("SELECT * FROM partners WHERE user_id = ?"), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}

func (r *Repository) GetPartnerByReferralCode(ctx context.Context, code string) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.GetContext(ctx, &partner, r.db.Rebind("SELECT * FROM partners WHERE referral_code = ?"), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}

// CreatePartner inserts a partner. A clash on user_id returns
// ErrPartnerExists, a clash on the code ErrReferralCodeTaken.
func (r *Repository) CreatePartner(ctx context.Context, partner *model.Partner) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO partners (id, user_id, referral_code, created_at)
		VALUES (?, ?, ?, ?)`),
		partner.ID, partner.UserID, partner.ReferralCode, partner.CreatedAt)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}
	if _, lookupErr := r.GetPartnerByUserID(ctx, partner.UserID); lookupErr == nil {
		return ErrPartnerExists
	}
	return ErrReferralCodeTaken
}
