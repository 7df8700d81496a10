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
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrStatusConflict     = errors.New("withdrawal status changed concurrently")
)

// CreateWithdrawal checks the partner's available balance and inserts the
// request in one transaction holding the partner lock, so concurrent
// requests cannot both spend the same balance.
func (r *Repository) CreateWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockPartner(ctx, tx, w.PartnerID); err != nil {
			return err
		}

		totals, err := balanceTotals(ctx, tx, w.PartnerID)
		if err != nil {
			return err
		}
		if w.Amount.GreaterThan(totals.Available()) {
			return ErrInsufficientFunds
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO withdrawals (id, partner_id, amount, payment_details, contact, status, admin_notes, requested_at, processed_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			w.ID,
			w.PartnerID,
			w.Amount,
			w.PaymentDetails,
			w.Contact,
			w.Status,
			w.AdminNotes,
			w.RequestedAt,
			w.ProcessedAt,
			w.UpdatedAt,
		)
		return err
	})
}

func (r *Repository) GetWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := r.db.GetContext(ctx, &w, r.db.Rebind("SELECT * FROM withdrawals WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &w, nil
}

// TransitionWithdrawal is a compare-and-swap on status: the row is only
// updated while it is still in the from status.
func (r *Repository) TransitionWithdrawal(ctx context.Context, id uuid.UUID, from, to model.WithdrawalStatus, adminNotes *string, processedAt *time.Time, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE withdrawals
		SET status = ?, admin_notes = COALESCE(?, admin_notes), processed_at = COALESCE(?, processed_at), updated_at = ?
		WHERE id = ? AND status = ?`),
		to, adminNotes, processedAt, at, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *Repository) ListWithdrawalsByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]model.Withdrawal, error) {
	withdrawals := []model.Withdrawal{}
	err := r.db.SelectContext(ctx, &withdrawals, r.db.Rebind(`
		SELECT * FROM withdrawals
		WHERE partner_id = ?
		ORDER BY requested_at DESC, id DESC
		LIMIT ? OFFSET ?`),
		partnerID, limit, offset)
	return withdrawals, err
}

// ListWithdrawals lists requests for the back-office, optionally filtered
// by status.
func (r *Repository) ListWithdrawals(ctx context.Context, status *model.WithdrawalStatus, limit, offset int) ([]model.Withdrawal, int, error) {
	cond := "1 = 1"
	args := []interface{}{}
	if status != nil {
		cond = "status = ?"
		args = append(args, *status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM withdrawals WHERE "+cond), args...); err != nil {
		return nil, 0, err
	}

	withdrawals := []model.Withdrawal{}
	err := r.db.SelectContext(ctx, &withdrawals, r.db.Rebind(`
		SELECT * FROM withdrawals
		WHERE `+cond+`
		ORDER BY requested_at DESC, id DESC
		LIMIT ? OFFSET ?`),
		append(args, limit, offset)...)
	return withdrawals, total, err
}
