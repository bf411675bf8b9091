// Package memory is an in-process storage.Store for development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"budgetapi/internal/core"
	"budgetapi/internal/storage"
)

type ledgerKey struct {
	username string
	month    core.MonthKey
}

// entry holds one ledger. mu is the per-ledger transaction lock.
type entry struct {
	mu        sync.Mutex
	committed bool
	ledger    core.MonthLedger
	items     []core.LineItem
}

type Store struct {
	mu       sync.Mutex
	accounts map[string]core.Account
	ledgers  map[ledgerKey]*entry

	nextAccountID int64
	nextLedgerID  int64
	nextItemID    atomic.Int64
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: make(map[string]core.Account),
		ledgers:  make(map[ledgerKey]*entry),
	}
}

func (s *Store) GetOrCreateAccount(_ context.Context, username string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountLocked(username), nil
}

func (s *Store) accountLocked(username string) core.Account {
	if acc, ok := s.accounts[username]; ok {
		return acc
	}
	s.nextAccountID++
	acc := core.Account{ID: s.nextAccountID, Username: username}
	s.accounts[username] = acc
	return acc
}

func (s *Store) UpdateLedger(ctx context.Context, username string, month core.MonthKey, fn storage.UpdateFunc) (core.MonthLedger, error) {
	s.mu.Lock()
	acc := s.accountLocked(username)
	key := ledgerKey{username: username, month: month}
	e, ok := s.ledgers[key]
	if !ok {
		s.nextLedgerID++
		e = &entry{ledger: core.MonthLedger{
			ID:        s.nextLedgerID,
			AccountID: acc.ID,
			Month:     month,
			CreatedAt: time.Now().UTC(),
		}}
		s.ledgers[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return core.MonthLedger{}, err
	}

	tx := &ledgerTx{store: s, ledger: e.ledger, items: cloneItems(e.items)}
	if err := fn(ctx, tx); err != nil {
		return core.MonthLedger{}, err
	}

	// Commit.
	e.ledger = tx.ledger
	e.items = tx.items
	e.committed = true
	return e.ledger, nil
}

func (s *Store) GetLedger(_ context.Context, username string, month core.MonthKey) (core.MonthLedger, []core.LineItem, error) {
	s.mu.Lock()
	e, ok := s.ledgers[ledgerKey{username: username, month: month}]
	s.mu.Unlock()
	if !ok {
		return core.MonthLedger{}, nil, storage.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.committed {
		return core.MonthLedger{}, nil, storage.ErrNotFound
	}
	return e.ledger, cloneItems(e.items), nil
}

func (s *Store) ListLedgersForYear(_ context.Context, username string, year int) ([]core.MonthLedger, error) {
	prefix := core.YearPrefix(year)

	s.mu.Lock()
	var entries []*entry
	for k, e := range s.ledgers {
		if k.username == username && strings.HasPrefix(string(k.month), prefix) {
			entries = append(entries, e)
		}
	}
	s.mu.Unlock()

	ledgers := make([]core.MonthLedger, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.committed {
			ledgers = append(ledgers, e.ledger)
		}
		e.mu.Unlock()
	}
	sort.Slice(ledgers, func(i, j int) bool { return ledgers[i].Month < ledgers[j].Month })
	return ledgers, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// ledgerTx works on private copies that UpdateLedger swaps in on success.
type ledgerTx struct {
	store  *Store
	ledger core.MonthLedger
	items  []core.LineItem
}

func (t *ledgerTx) Ledger() core.MonthLedger {
	return t.ledger
}

func (t *ledgerTx) ReplaceLineItems(_ context.Context, items []core.ExpenseItem) error {
	t.items = make([]core.LineItem, 0, len(items))
	for _, it := range items {
		t.items = append(t.items, core.LineItem{
			ID:            t.store.nextItemID.Add(1),
			LedgerID:      t.ledger.ID,
			Name:          it.Name,
			Category:      it.Category,
			PlannedAmount: it.Amount,
		})
	}
	return nil
}

func (t *ledgerTx) UpsertActuals(_ context.Context, items []core.ExpenseItem) error {
	index := core.IndexItems(t.items)
	for _, it := range items {
		if i, ok := index[it.Key()]; ok {
			t.items[i].ActualAmount = it.Amount
			continue
		}
		t.items = append(t.items, core.LineItem{
			ID:           t.store.nextItemID.Add(1),
			LedgerID:     t.ledger.ID,
			Name:         it.Name,
			Category:     it.Category,
			ActualAmount: it.Amount,
		})
		index[it.Key()] = len(t.items) - 1
	}
	return nil
}

func (t *ledgerTx) LineItems(context.Context) ([]core.LineItem, error) {
	return cloneItems(t.items), nil
}

func (t *ledgerTx) SaveLedger(_ context.Context, l core.MonthLedger) error {
	l.ID, l.AccountID, l.Month, l.CreatedAt = t.ledger.ID, t.ledger.AccountID, t.ledger.Month, t.ledger.CreatedAt
	t.ledger = l
	return nil
}

func cloneItems(in []core.LineItem) []core.LineItem {
	out := make([]core.LineItem, len(in))
	copy(out, in)
	return out
}
