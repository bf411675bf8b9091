// Package storagetest holds the behaviour every storage.Store backend must
// share. Backend tests call Run with a constructor for a fresh store.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetapi/internal/core"
	"budgetapi/internal/storage"
)

// Run exercises newStore against the storage.Store contract.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("account is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.GetOrCreateAccount(ctx, "alice")
		require.NoError(t, err)
		b, err := s.GetOrCreateAccount(ctx, "alice")
		require.NoError(t, err)
		c, err := s.GetOrCreateAccount(ctx, "Alice")
		require.NoError(t, err)

		assert.Equal(t, a.ID, b.ID)
		assert.NotEqual(t, a.ID, c.ID, "usernames are case-sensitive")
		assert.Equal(t, "alice", a.Username)
	})

	t.Run("missing ledger is not found", func(t *testing.T) {
		s := newStore(t)
		_, _, err := s.GetLedger(context.Background(), "nobody", "2025-08")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("new ledger starts zeroed", func(t *testing.T) {
		s := newStore(t)
		var seen core.MonthLedger
		got, err := s.UpdateLedger(context.Background(), "alice", "2025-08", func(ctx context.Context, tx storage.LedgerTx) error {
			seen = tx.Ledger()
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, core.MonthKey("2025-08"), seen.Month)
		assert.NotZero(t, seen.ID)
		assert.Zero(t, seen.SalaryPlanned)
		assert.False(t, seen.SalaryActualSet)
		assert.Zero(t, seen.TotalPlanned)
		assert.Equal(t, seen.ID, got.ID)
	})

	t.Run("replace line items", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpdateLedger(ctx, "alice", "2025-08", plan(3000,
			core.ExpenseItem{Name: "Rent", Amount: 1200, Category: "housing"},
			core.ExpenseItem{Name: "Food", Amount: 300, Category: "groceries"},
		))
		require.NoError(t, err)

		got, err := s.UpdateLedger(ctx, "alice", "2025-08", plan(3000,
			core.ExpenseItem{Name: "Gym", Amount: 40, Category: "health"},
		))
		require.NoError(t, err)
		assert.Equal(t, 40.0, got.TotalPlanned)
		assert.Equal(t, 2960.0, got.RemainingPlanned)

		ledger, items, err := s.GetLedger(ctx, "alice", "2025-08")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Gym", items[0].Name)
		assert.Equal(t, 40.0, items[0].PlannedAmount)
		assert.Zero(t, items[0].ActualAmount)
		assert.Equal(t, 3000.0, ledger.SalaryPlanned)
		assert.Equal(t, 40.0, ledger.TotalPlanned)
	})

	t.Run("actuals overwrite and insert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpdateLedger(ctx, "alice", "2025-08", plan(3000,
			core.ExpenseItem{Name: "Rent", Amount: 1200, Category: "housing"},
		))
		require.NoError(t, err)

		_, err = s.UpdateLedger(ctx, "alice", "2025-08", actuals(
			core.ExpenseItem{Name: "Rent", Amount: 1000, Category: "housing"},
			core.ExpenseItem{Name: "Taxi", Amount: 25, Category: "transport"},
		))
		require.NoError(t, err)
		got, err := s.UpdateLedger(ctx, "alice", "2025-08", actuals(
			core.ExpenseItem{Name: "Rent", Amount: 1100, Category: "housing"},
		))
		require.NoError(t, err)

		assert.Equal(t, 1125.0, got.TotalActual)
		assert.Equal(t, 1875.0, got.RemainingActual)

		_, items, err := s.GetLedger(ctx, "alice", "2025-08")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, core.LineItem{ID: items[0].ID, LedgerID: items[0].LedgerID,
			Name: "Rent", Category: "housing", PlannedAmount: 1200, ActualAmount: 1100}, items[0])
		assert.Equal(t, "Taxi", items[1].Name)
		assert.Zero(t, items[1].PlannedAmount)
		assert.Equal(t, 25.0, items[1].ActualAmount)
	})

	t.Run("same key twice in one submission converges", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpdateLedger(ctx, "alice", "2025-09", actuals(
			core.ExpenseItem{Name: "Coffee", Amount: 3, Category: "food"},
			core.ExpenseItem{Name: "Coffee", Amount: 5, Category: "food"},
		))
		require.NoError(t, err)

		_, items, err := s.GetLedger(ctx, "alice", "2025-09")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 5.0, items[0].ActualAmount)
	})

	t.Run("actual salary round trips", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpdateLedger(ctx, "alice", "2025-08", func(ctx context.Context, tx storage.LedgerTx) error {
			l := tx.Ledger()
			l.SalaryPlanned = 3000
			l.SalaryActual = 0
			l.SalaryActualSet = true
			return tx.SaveLedger(ctx, l)
		})
		require.NoError(t, err)

		ledger, _, err := s.GetLedger(ctx, "alice", "2025-08")
		require.NoError(t, err)
		assert.True(t, ledger.SalaryActualSet)
		assert.Zero(t, ledger.SalaryActual)
		assert.Equal(t, 3000.0, ledger.SalaryPlanned)
	})

	t.Run("failed update rolls back", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		boom := errors.New("boom")

		_, err := s.UpdateLedger(ctx, "alice", "2025-10", func(ctx context.Context, tx storage.LedgerTx) error {
			require.NoError(t, tx.ReplaceLineItems(ctx, []core.ExpenseItem{{Name: "x", Amount: 1, Category: "y"}}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, _, err = s.GetLedger(ctx, "alice", "2025-10")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.UpdateLedger(ctx, "alice", "2025-10", plan(100,
			core.ExpenseItem{Name: "kept", Amount: 10, Category: "c"},
		))
		require.NoError(t, err)

		_, err = s.UpdateLedger(ctx, "alice", "2025-10", func(ctx context.Context, tx storage.LedgerTx) error {
			require.NoError(t, tx.ReplaceLineItems(ctx, nil))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, items, err := s.GetLedger(ctx, "alice", "2025-10")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "kept", items[0].Name)
	})

	t.Run("list ledgers for year", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, m := range []core.MonthKey{"2025-11", "2025-02", "2024-12", "2026-01"} {
			_, err := s.UpdateLedger(ctx, "alice", m, plan(1000))
			require.NoError(t, err)
		}
		_, err := s.UpdateLedger(ctx, "bob", "2025-05", plan(1000))
		require.NoError(t, err)

		ledgers, err := s.ListLedgersForYear(ctx, "alice", 2025)
		require.NoError(t, err)
		require.Len(t, ledgers, 2)
		assert.Equal(t, core.MonthKey("2025-02"), ledgers[0].Month)
		assert.Equal(t, core.MonthKey("2025-11"), ledgers[1].Month)

		none, err := s.ListLedgersForYear(ctx, "carol", 2025)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("concurrent updates to one ledger serialize", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		const writers = 8

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.UpdateLedger(ctx, "alice", "2025-08", actuals(
					core.ExpenseItem{Name: fmt.Sprintf("item-%d", i), Amount: 10, Category: "misc"},
				))
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		ledger, items, err := s.GetLedger(ctx, "alice", "2025-08")
		require.NoError(t, err)
		assert.Len(t, items, writers)
		assert.Equal(t, float64(10*writers), ledger.TotalActual)
	})
}

func recompute(ctx context.Context, tx storage.LedgerTx, l core.MonthLedger) error {
	items, err := tx.LineItems(ctx)
	if err != nil {
		return err
	}
	return tx.SaveLedger(ctx, core.RecomputeTotals(l, items))
}

func plan(salary float64, items ...core.ExpenseItem) storage.UpdateFunc {
	return func(ctx context.Context, tx storage.LedgerTx) error {
		l := tx.Ledger()
		l.SalaryPlanned = salary
		if err := tx.ReplaceLineItems(ctx, items); err != nil {
			return err
		}
		return recompute(ctx, tx, l)
	}
}

func actuals(items ...core.ExpenseItem) storage.UpdateFunc {
	return func(ctx context.Context, tx storage.LedgerTx) error {
		if err := tx.UpsertActuals(ctx, items); err != nil {
			return err
		}
		return recompute(ctx, tx, tx.Ledger())
	}
}
