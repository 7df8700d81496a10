package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

var (
	ErrClickNotFound     = errors.New("click not found")
	ErrAlreadyAttributed = errors.New("user already attributed")
)

func (r *Repository) CreateClick(ctx context.Context, click *model.Click) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO clicks (id, partner_id, visitor_id, user_id, status, landing_path, created_at, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		click.ID,
		click.PartnerID,
		click.VisitorID,
		click.UserID,
		click.Status,
		click.LandingPath,
		click.CreatedAt,
		click.RegisteredAt,
	)
	return err
}

// GetAttribution returns the click a user was attributed through.
func (r *Repository) GetAttribution(ctx context.Context, userID uuid.UUID) (*model.Click, error) {
	return getClickByUser(ctx, r.db, userID)
}

func getClickByUser(ctx context.Context, q queryer, userID uuid.UUID) (*model.Click, error) {
	var click model.Click
	err := sqlx.GetContext(ctx, q, &click, q.Rebind("SELECT * FROM clicks WHERE user_id = ?"), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClickNotFound
		}
		return nil, err
	}
	return &click, nil
}

// LinkRegistration attributes userID to partnerID. The most recent unlinked
// click of the same visitor is claimed; without one a linked click is
// inserted. If the user is already attributed, the existing click is
// returned together with ErrAlreadyAttributed.
func (r *Repository) LinkRegistration(ctx context.Context, partnerID, userID uuid.UUID, visitorID string, at time.Time) (*model.Click, error) {
	var linked *model.Click
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := getClickByUser(ctx, tx, userID)
		if err == nil {
			linked = existing
			return ErrAlreadyAttributed
		}
		if !errors.Is(err, ErrClickNotFound) {
			return err
		}

		if visitorID != "" {
			var click model.Click
			err := tx.GetContext(ctx, &click, tx.Rebind(`
				SELECT * FROM clicks
				WHERE partner_id = ? AND visitor_id = ? AND user_id IS NULL
				ORDER BY created_at DESC
				LIMIT 1`), partnerID, visitorID)
			switch {
			case err == nil:
				res, err := tx.ExecContext(ctx, tx.Rebind(`
					UPDATE clicks SET user_id = ?, status = ?, registered_at = ?
					WHERE id = ? AND user_id IS NULL`),
					userID, model.ClickStatusRegistered, at, click.ID)
				if err != nil {
					return err
				}
				if n, _ := res.RowsAffected(); n == 1 {
					click.UserID = &userID
					click.Status = model.ClickStatusRegistered
					click.RegisteredAt = &at
					linked = &click
					return nil
				}
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		if visitorID == "" {
			visitorID = userID.String()
		}
		click := &model.Click{
			ID:           uuid.New(),
			PartnerID:    partnerID,
			VisitorID:    visitorID,
			UserID:       &userID,
			Status:       model.ClickStatusRegistered,
			CreatedAt:    at,
			RegisteredAt: &at,
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO clicks (id, partner_id, visitor_id, user_id, status, landing_path, created_at, registered_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			click.ID, click.PartnerID, click.VisitorID, click.UserID, click.Status, click.LandingPath, click.CreatedAt, click.RegisteredAt)
		if err != nil {
			return err
		}
		linked = click
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrAlreadyAttributed) {
			return linked, ErrAlreadyAttributed
		}
		// A concurrent registration of the same user won the unique index.
		if isUniqueViolation(err) {
			existing, lookupErr := r.GetAttribution(ctx, userID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return existing, ErrAlreadyAttributed
		}
		return nil, err
	}
	return linked, nil
}

// MarkClickPurchased moves an attributed click to purchased. Repeated calls
// are no-ops.
func (r *Repository) MarkClickPurchased(ctx context.Context, clickID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE clicks SET status = ?
		WHERE id = ? AND status <> ?`),
		model.ClickStatusPurchased, clickID, model.ClickStatusPurchased)
	return err
}

func (r *Repository) GetClickStats(ctx context.Context, partnerID uuid.UUID) (*model.ClickStats, error) {
	var stats model.ClickStats
	err := r.db.GetContext(ctx, &stats, r.db.Rebind(`
		SELECT
			COUNT(*) AS total_visits,
			COUNT(DISTINCT visitor_id) AS unique_visits,
			COUNT(user_id) AS registrations,
			COALESCE(SUM(CASE WHEN status = 'purchased' THEN 1 ELSE 0 END), 0) AS purchasers
		FROM clicks
		WHERE partner_id = ?`), partnerID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CountReferrals returns the number of distinct users attributed to a partner.
func (r *Repository) CountReferrals(ctx context.Context, partnerID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(
		"SELECT COUNT(DISTINCT user_id) FROM clicks WHERE partner_id = ?"), partnerID)
	return count, err
}
