// Package testutil provides database fixtures backed by a throwaway SQLite
// file with the real migrations applied.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/repository"
)

func NewRepository(t testing.TB) *repository.Repository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "referrals.db")
	repo, err := repository.New(repository.DriverSQLite, "file:"+path+"?_time_format=sqlite")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Migrate())
	return repo
}

// NewPartner inserts a partner for a fresh user.
func NewPartner(t testing.TB, repo *repository.Repository, code string) *model.Partner {
	t.Helper()

	partner := &model.Partner{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		ReferralCode: code,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.CreatePartner(context.Background(), partner))
	return partner
}
