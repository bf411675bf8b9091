package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"budgetapi/internal/storage"
	"budgetapi/internal/storage/storagetest"
)

func TestSQLiteStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "budget.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budget.db")

	s, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	acc, err := s.GetOrCreateAccount(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Migrations are a no-op the second time.
	s, err = storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	again, err := s.GetOrCreateAccount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, acc.ID, again.ID)
	require.NoError(t, s.Ping(ctx))
}
