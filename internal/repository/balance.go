package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

var (
	ErrDuplicateEvent    = errors.New("duplicate ledger event")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

const insertLedgerEntry = `
	INSERT INTO reward_ledger (id, partner_id, type, amount, status, description, event_ref, referred_user_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateLedgerEntry appends an entry. For idempotent types the insert is
// guarded by the (partner_id, type, event_ref) unique index: when a row for
// the same event already exists nothing is written and ErrDuplicateEvent is
// returned.
func (r *Repository) CreateLedgerEntry(ctx context.Context, entry *model.LedgerEntry) error {
	query := insertLedgerEntry
	if entry.Type.Idempotent() {
		query += " ON CONFLICT DO NOTHING"
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		entry.ID,
		entry.PartnerID,
		entry.Type,
		entry.Amount,
		entry.Status,
		entry.Description,
		entry.EventRef,
		entry.ReferredUserID,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEvent
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

// CreateDebitEntry appends a debit under the partner lock and refuses it when
// the available balance would go below zero.
func (r *Repository) CreateDebitEntry(ctx context.Context, entry *model.LedgerEntry) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockPartner(ctx, tx, entry.PartnerID); err != nil {
			return err
		}

		totals, err := balanceTotals(ctx, tx, entry.PartnerID)
		if err != nil {
			return err
		}
		if entry.Amount.GreaterThan(totals.Available()) {
			return ErrInsufficientFunds
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(insertLedgerEntry),
			entry.ID,
			entry.PartnerID,
			entry.Type,
			entry.Amount,
			entry.Status,
			entry.Description,
			entry.EventRef,
			entry.ReferredUserID,
			entry.CreatedAt,
		)
		return err
	})
}

// ListLedgerEntries returns a page of entries, newest first, and the total
// number of entries matching the filter.
func (r *Repository) ListLedgerEntries(ctx context.Context, partnerID uuid.UUID, filter model.LedgerFilter) ([]model.LedgerEntry, int, error) {
	where := []string{"partner_id = ?"}
	args := []interface{}{partnerID}
	if filter.Type != nil {
		where = append(where, "type = ?")
		args = append(args, *filter.Type)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM reward_ledger WHERE "+cond), args...); err != nil {
		return nil, 0, err
	}

	entries := []model.LedgerEntry{}
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(`
		SELECT * FROM reward_ledger
		WHERE `+cond+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`),
		append(args, filter.Limit, filter.Offset)...)
	return entries, total, err
}

// GetBalanceTotals aggregates the ledger and withdrawals for one partner.
// It is the only source for balances; nothing is cached.
func (r *Repository) GetBalanceTotals(ctx context.Context, partnerID uuid.UUID) (*model.BalanceTotals, error) {
	return balanceTotals(ctx, r.db, partnerID)
}

func balanceTotals(ctx context.Context, q queryer, partnerID uuid.UUID) (*model.BalanceTotals, error) {
	var totals model.BalanceTotals
	err := sqlx.GetContext(ctx, q, &totals, q.Rebind(`
		SELECT
			(SELECT COALESCE(SUM(CASE WHEN type = 'manual_remove' THEN -amount ELSE amount END), 0)
				FROM reward_ledger WHERE partner_id = ?) AS earnings,
			(SELECT COALESCE(SUM(amount), 0)
				FROM withdrawals WHERE partner_id = ? AND status = 'paid') AS withdrawn,
			(SELECT COALESCE(SUM(amount), 0)
				FROM withdrawals WHERE partner_id = ? AND status IN ('pending', 'approved')) AS pending`),
		partnerID, partnerID, partnerID)
	if err != nil {
		return nil, err
	}
	// SQLite sums NUMERIC columns as floats; amounts carry two decimals.
	totals.Earnings = totals.Earnings.Round(2)
	totals.Withdrawn = totals.Withdrawn.Round(2)
	totals.Pending = totals.Pending.Round(2)
	return &totals, nil
}

func (r *Repository) CountLedgerEntries(ctx context.Context, partnerID uuid.UUID, entryType model.RewardType) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(
		"SELECT COUNT(*) FROM reward_ledger WHERE partner_id = ? AND type = ?"), partnerID, entryType)
	return count, err
}
