package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetapi/internal/core"

	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const ledgerColumns = `l.id, l.account_id, l.month, l.salary_planned, l.salary_actual,
	l.total_planned, l.total_actual, l.remaining_planned, l.remaining_actual, l.created_at`

type SQLiteStore struct {
	db *sql.DB
}

// SQLiteDSN builds the connection string for dbPath. Transactions start
// with BEGIN IMMEDIATE so two writers to the same file serialize instead
// of failing on lock upgrade.
func SQLiteDSN(dbPath string) string {
	return "file:" + dbPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := SQLiteDSN(dbPath)
	if err := RunSQLiteMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) GetOrCreateAccount(ctx context.Context, username string) (core.Account, error) {
	return sqliteAccount(ctx, s.db, username)
}

func sqliteAccount(ctx context.Context, q dbtx, username string) (core.Account, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO accounts (username) VALUES (?) ON CONFLICT (username) DO NOTHING`, username); err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	acc := core.Account{Username: username}
	if err := q.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE username = ?`, username).Scan(&acc.ID); err != nil {
		return core.Account{}, fmt.Errorf("select account: %w", err)
	}
	return acc, nil
}

func (s *SQLiteStore) UpdateLedger(ctx context.Context, username string, month core.MonthKey, fn UpdateFunc) (core.MonthLedger, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	acc, err := sqliteAccount(ctx, tx, username)
	if err != nil {
		return core.MonthLedger{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO month_ledgers (account_id, month, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (account_id, month) DO NOTHING`,
		acc.ID, string(month), time.Now().UTC().Unix()); err != nil {
		return core.MonthLedger{}, fmt.Errorf("insert ledger: %w", err)
	}

	ledger, err := scanSQLiteLedger(tx.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM month_ledgers l WHERE l.account_id = ? AND l.month = ?`,
		acc.ID, string(month)))
	if err != nil {
		return core.MonthLedger{}, fmt.Errorf("select ledger: %w", err)
	}

	ltx := &sqliteLedgerTx{tx: tx, ledger: ledger}
	if err := fn(ctx, ltx); err != nil {
		return core.MonthLedger{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.MonthLedger{}, fmt.Errorf("commit ledger: %w", err)
	}

	slog.DebugContext(ctx, "Ledger committed to SQLite",
		"ledger_id", ltx.ledger.ID,
		"month", string(month),
		"total_planned", ltx.ledger.TotalPlanned,
		"total_actual", ltx.ledger.TotalActual)

	return ltx.ledger, nil
}

func (s *SQLiteStore) GetLedger(ctx context.Context, username string, month core.MonthKey) (core.MonthLedger, []core.LineItem, error) {
	ledger, err := scanSQLiteLedger(s.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+`
		 FROM month_ledgers l JOIN accounts a ON a.id = l.account_id
		 WHERE a.username = ? AND l.month = ?`,
		username, string(month)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthLedger{}, nil, ErrNotFound
	}
	if err != nil {
		return core.MonthLedger{}, nil, fmt.Errorf("select ledger: %w", err)
	}

	items, err := sqliteLineItems(ctx, s.db, ledger.ID)
	if err != nil {
		return core.MonthLedger{}, nil, err
	}
	return ledger, items, nil
}

func (s *SQLiteStore) ListLedgersForYear(ctx context.Context, username string, year int) ([]core.MonthLedger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+`
		 FROM month_ledgers l JOIN accounts a ON a.id = l.account_id
		 WHERE a.username = ? AND substr(l.month, 1, 5) = ?
		 ORDER BY l.month`,
		username, core.YearPrefix(year))
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	ledgers := make([]core.MonthLedger, 0)
	for rows.Next() {
		l, err := scanSQLiteLedger(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLedger(row rowScanner) (core.MonthLedger, error) {
	var (
		l            core.MonthLedger
		month        string
		salaryActual sql.NullFloat64
		createdAt    int64
	)
	err := row.Scan(&l.ID, &l.AccountID, &month, &l.SalaryPlanned, &salaryActual,
		&l.TotalPlanned, &l.TotalActual, &l.RemainingPlanned, &l.RemainingActual, &createdAt)
	if err != nil {
		return core.MonthLedger{}, err
	}
	l.Month = core.MonthKey(month)
	l.SalaryActual = salaryActual.Float64
	l.SalaryActualSet = salaryActual.Valid
	l.CreatedAt = time.Unix(createdAt, 0).UTC()
	return l, nil
}

func sqliteLineItems(ctx context.Context, q dbtx, ledgerID int64) ([]core.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, ledger_id, name, category, planned_amount, actual_amount
		 FROM line_items WHERE ledger_id = ? ORDER BY id`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("select line items: %w", err)
	}
	defer rows.Close()

	items := make([]core.LineItem, 0)
	for rows.Next() {
		var it core.LineItem
		if err := rows.Scan(&it.ID, &it.LedgerID, &it.Name, &it.Category, &it.PlannedAmount, &it.ActualAmount); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return items, nil
}

type sqliteLedgerTx struct {
	tx     *sql.Tx
	ledger core.MonthLedger
}

func (t *sqliteLedgerTx) Ledger() core.MonthLedger {
	return t.ledger
}

func (t *sqliteLedgerTx) ReplaceLineItems(ctx context.Context, items []core.ExpenseItem) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM line_items WHERE ledger_id = ?`, t.ledger.ID); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO line_items (ledger_id, name, category, planned_amount, actual_amount) VALUES (?, ?, ?, ?, 0)`)
	if err != nil {
		return fmt.Errorf("prepare line item insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, t.ledger.ID, it.Name, it.Category, it.Amount); err != nil {
			return fmt.Errorf("insert line item %q: %w", it.Name, err)
		}
	}
	return nil
}

func (t *sqliteLedgerTx) UpsertActuals(ctx context.Context, items []core.ExpenseItem) error {
	existing, err := t.LineItems(ctx)
	if err != nil {
		return err
	}
	index := core.IndexItems(existing)

	for _, it := range items {
		if i, ok := index[it.Key()]; ok {
			if _, err := t.tx.ExecContext(ctx,
				`UPDATE line_items SET actual_amount = ? WHERE id = ?`, it.Amount, existing[i].ID); err != nil {
				return fmt.Errorf("update line item %q: %w", it.Name, err)
			}
			continue
		}

		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO line_items (ledger_id, name, category, planned_amount, actual_amount) VALUES (?, ?, ?, 0, ?)`,
			t.ledger.ID, it.Name, it.Category, it.Amount)
		if err != nil {
			return fmt.Errorf("insert line item %q: %w", it.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("line item id: %w", err)
		}
		existing = append(existing, core.LineItem{ID: id, LedgerID: t.ledger.ID, Name: it.Name, Category: it.Category})
		index[it.Key()] = len(existing) - 1
	}
	return nil
}

func (t *sqliteLedgerTx) LineItems(ctx context.Context) ([]core.LineItem, error) {
	return sqliteLineItems(ctx, t.tx, t.ledger.ID)
}

func (t *sqliteLedgerTx) SaveLedger(ctx context.Context, l core.MonthLedger) error {
	salaryActual := sql.NullFloat64{Float64: l.SalaryActual, Valid: l.SalaryActualSet}
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE month_ledgers SET
			salary_planned = ?, salary_actual = ?,
			total_planned = ?, total_actual = ?,
			remaining_planned = ?, remaining_actual = ?
		 WHERE id = ?`,
		l.SalaryPlanned, salaryActual,
		l.TotalPlanned, l.TotalActual,
		l.RemainingPlanned, l.RemainingActual,
		t.ledger.ID); err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}

	// Identity fields stay as loaded.
	l.ID, l.AccountID, l.Month, l.CreatedAt = t.ledger.ID, t.ledger.AccountID, t.ledger.Month, t.ledger.CreatedAt
	t.ledger = l
	return nil
}
