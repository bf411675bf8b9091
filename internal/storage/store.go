// Package storage persists accounts, month ledgers and their line items.
//
// Every mutation of a ledger happens inside UpdateLedger, which holds a
// transaction scoped to that one (account, month) ledger for the whole
// read-modify-write. Derived totals are never computed here: callers
// reload LineItems and write them back with SaveLedger.
package storage

import (
	"context"
	"errors"

	"budgetapi/internal/core"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=storage

// ErrNotFound is returned by reads when the account or ledger does not
// exist yet. It is not a failure from the API's point of view.
var ErrNotFound = errors.New("not found")

// UpdateFunc runs inside a ledger transaction. Returning an error rolls
// back every change made through tx, including ledger creation.
type UpdateFunc func(ctx context.Context, tx LedgerTx) error

type Store interface {
	// GetOrCreateAccount is idempotent.
	GetOrCreateAccount(ctx context.Context, username string) (core.Account, error)

	// UpdateLedger gets or creates the account and its ledger for month,
	// then runs fn while holding that ledger exclusively. The returned
	// ledger is the committed state.
	UpdateLedger(ctx context.Context, username string, month core.MonthKey, fn UpdateFunc) (core.MonthLedger, error)

	// GetLedger returns the ledger and its items, or ErrNotFound.
	GetLedger(ctx context.Context, username string, month core.MonthKey) (core.MonthLedger, []core.LineItem, error)

	// ListLedgersForYear returns the user's ledgers whose key starts with
	// the four-digit year, ordered by month. Unknown users get none.
	ListLedgersForYear(ctx context.Context, username string, year int) ([]core.MonthLedger, error)

	Ping(ctx context.Context) error
	Close() error
}

// LedgerTx is the view of one locked ledger inside UpdateLedger.
type LedgerTx interface {
	// Ledger returns the ledger as last saved in this transaction. A
	// newly created ledger has every amount zeroed.
	Ledger() core.MonthLedger

	// ReplaceLineItems deletes every item of the ledger and inserts items
	// as planned amounts with a zero actual amount.
	ReplaceLineItems(ctx context.Context, items []core.ExpenseItem) error

	// UpsertActuals overwrites the actual amount of the item matching each
	// incoming (name, category), inserting a zero-planned item when there
	// is no match.
	UpsertActuals(ctx context.Context, items []core.ExpenseItem) error

	// LineItems reloads the ledger's items in insertion order.
	LineItems(ctx context.Context) ([]core.LineItem, error)

	// SaveLedger persists salaries and derived totals.
	SaveLedger(ctx context.Context, ledger core.MonthLedger) error
}
