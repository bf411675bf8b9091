package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetapi/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) GetOrCreateAccount(ctx context.Context, username string) (core.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	acc, err := pgAccount(ctx, tx, username)
	if err != nil {
		return core.Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return core.Account{}, fmt.Errorf("commit account: %w", err)
	}
	return acc, nil
}

func pgAccount(ctx context.Context, tx pgx.Tx, username string) (core.Account, error) {
	if _, err := tx.Exec(ctx,
		`INSERT INTO accounts (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`, username); err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	acc := core.Account{Username: username}
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE username = $1`, username).Scan(&acc.ID); err != nil {
		return core.Account{}, fmt.Errorf("select account: %w", err)
	}
	return acc, nil
}

func (s *PostgresStore) UpdateLedger(ctx context.Context, username string, month core.MonthKey, fn UpdateFunc) (core.MonthLedger, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	acc, err := pgAccount(ctx, tx, username)
	if err != nil {
		return core.MonthLedger{}, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO month_ledgers (account_id, month) VALUES ($1, $2)
		 ON CONFLICT (account_id, month) DO NOTHING`, acc.ID, string(month)); err != nil {
		return core.MonthLedger{}, fmt.Errorf("insert ledger: %w", err)
	}

	// Row lock held until commit serializes writers of this ledger.
	ledger, err := scanPgLedger(tx.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM month_ledgers l
		 WHERE l.account_id = $1 AND l.month = $2 FOR UPDATE`, acc.ID, string(month)))
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("lock ledger: %w", err)
	}

	ltx := &pgLedgerTx{tx: tx, ledger: ledger}
	if err := fn(ctx, ltx); err != nil {
		return core.MonthLedger{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return core.MonthLedger{}, fmt.Errorf("commit ledger: %w", err)
	}

	slog.DebugContext(ctx, "Ledger committed to Postgres",
		"ledger_id", ltx.ledger.ID,
		"month", string(month))

	return ltx.ledger, nil
}

func (s *PostgresStore) GetLedger(ctx context.Context, username string, month core.MonthKey) (core.MonthLedger, []core.LineItem, error) {
	ledger, err := scanPgLedger(s.pool.QueryRow(ctx,
		`SELECT `+ledgerColumns+`
		 FROM month_ledgers l JOIN accounts a ON a.id = l.account_id
		 WHERE a.username = $1 AND l.month = $2`, username, string(month)))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.MonthLedger{}, nil, ErrNotFound
	}
	if err != nil {
		return core.MonthLedger{}, nil, fmt.Errorf("select ledger: %w", err)
	}

	rows, err := s.pool.Query(ctx, lineItemsQuery, ledger.ID)
	if err != nil {
		return core.MonthLedger{}, nil, fmt.Errorf("select line items: %w", err)
	}
	items, err := collectLineItems(rows)
	if err != nil {
		return core.MonthLedger{}, nil, err
	}
	return ledger, items, nil
}

func (s *PostgresStore) ListLedgersForYear(ctx context.Context, username string, year int) ([]core.MonthLedger, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ledgerColumns+`
		 FROM month_ledgers l JOIN accounts a ON a.id = l.account_id
		 WHERE a.username = $1 AND left(l.month, 5) = $2
		 ORDER BY l.month`, username, core.YearPrefix(year))
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	ledgers := make([]core.MonthLedger, 0)
	for rows.Next() {
		l, err := scanPgLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		ledgers = append(ledgers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return ledgers, nil
}

const lineItemsQuery = `SELECT id, ledger_id, name, category, planned_amount, actual_amount
	FROM line_items WHERE ledger_id = $1 ORDER BY id`

func scanPgLedger(row pgx.Row) (core.MonthLedger, error) {
	var (
		l            core.MonthLedger
		month        string
		salaryActual *float64
	)
	err := row.Scan(&l.ID, &l.AccountID, &month, &l.SalaryPlanned, &salaryActual,
		&l.TotalPlanned, &l.TotalActual, &l.RemainingPlanned, &l.RemainingActual, &l.CreatedAt)
	if err != nil {
		return core.MonthLedger{}, err
	}
	l.Month = core.MonthKey(month)
	if salaryActual != nil {
		l.SalaryActual = *salaryActual
		l.SalaryActualSet = true
	}
	return l, nil
}

func collectLineItems(rows pgx.Rows) ([]core.LineItem, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.LineItem, error) {
		var it core.LineItem
		err := row.Scan(&it.ID, &it.LedgerID, &it.Name, &it.Category, &it.PlannedAmount, &it.ActualAmount)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan line items: %w", err)
	}
	return items, nil
}

type pgLedgerTx struct {
	tx     pgx.Tx
	ledger core.MonthLedger
}

func (t *pgLedgerTx) Ledger() core.MonthLedger {
	return t.ledger
}

func (t *pgLedgerTx) ReplaceLineItems(ctx context.Context, items []core.ExpenseItem) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM line_items WHERE ledger_id = $1`, t.ledger.ID); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{t.ledger.ID, it.Name, it.Category, it.Amount, 0.0})
	}
	if _, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"line_items"},
		[]string{"ledger_id", "name", "category", "planned_amount", "actual_amount"},
		pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy line items: %w", err)
	}
	return nil
}

func (t *pgLedgerTx) UpsertActuals(ctx context.Context, items []core.ExpenseItem) error {
	existing, err := t.LineItems(ctx)
	if err != nil {
		return err
	}
	index := core.IndexItems(existing)

	for _, it := range items {
		if i, ok := index[it.Key()]; ok {
			if _, err := t.tx.Exec(ctx,
				`UPDATE line_items SET actual_amount = $1 WHERE id = $2`, it.Amount, existing[i].ID); err != nil {
				return fmt.Errorf("update line item %q: %w", it.Name, err)
			}
			continue
		}

		var id int64
		if err := t.tx.QueryRow(ctx,
			`INSERT INTO line_items (ledger_id, name, category, planned_amount, actual_amount)
			 VALUES ($1, $2, $3, 0, $4) RETURNING id`,
			t.ledger.ID, it.Name, it.Category, it.Amount).Scan(&id); err != nil {
			return fmt.Errorf("insert line item %q: %w", it.Name, err)
		}
		existing = append(existing, core.LineItem{ID: id, LedgerID: t.ledger.ID, Name: it.Name, Category: it.Category})
		index[it.Key()] = len(existing) - 1
	}
	return nil
}

func (t *pgLedgerTx) LineItems(ctx context.Context) ([]core.LineItem, error) {
	rows, err := t.tx.Query(ctx, lineItemsQuery, t.ledger.ID)
	if err != nil {
		return nil, fmt.Errorf("select line items: %w", err)
	}
	return collectLineItems(rows)
}

func (t *pgLedgerTx) SaveLedger(ctx context.Context, l core.MonthLedger) error {
	var salaryActual *float64
	if l.SalaryActualSet {
		salaryActual = &l.SalaryActual
	}
	if _, err := t.tx.Exec(ctx,
		`UPDATE month_ledgers SET
			salary_planned = $1, salary_actual = $2,
			total_planned = $3, total_actual = $4,
			remaining_planned = $5, remaining_actual = $6
		 WHERE id = $7`,
		l.SalaryPlanned, salaryActual,
		l.TotalPlanned, l.TotalActual,
		l.RemainingPlanned, l.RemainingActual,
		t.ledger.ID); err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}

	l.ID, l.AccountID, l.Month, l.CreatedAt = t.ledger.ID, t.ledger.AccountID, t.ledger.Month, t.ledger.CreatedAt
	t.ledger = l
	return nil
}
