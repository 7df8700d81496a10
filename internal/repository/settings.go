package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// GetSettings reads several keys in one query. Missing keys are absent from
// the result.
func (r *Repository) GetSettings(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}
	query, args, err := sqlx.In("SELECT key, value FROM settings WHERE key IN (?)", keys)
	if err != nil {
		return nil, err
	}
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	return r.SetSettings(ctx, map[string]string{key: value})
}

// SetSettings upserts all values in one transaction.
func (r *Repository) SetSettings(ctx context.Context, values map[string]string) error {
	now := time.Now().UTC()
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for key, value := range values {
			_, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`), key, value, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
