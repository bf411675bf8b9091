// Package services orchestrates ledger writes and reads across the store,
// the overview cache and the optional event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"budgetapi/internal/amqp"
	"budgetapi/internal/cache"
	"budgetapi/internal/core"
	"budgetapi/internal/log"
	"budgetapi/internal/storage"
)

// EventPublisher announces committed ledger writes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error
	Close() error
}

// TrackerView is the per-category comparison of one month.
type TrackerView struct {
	Month         core.MonthKey
	SalaryPlanned float64
	SalaryActual  float64
	Rows          []core.CategoryRow
}

// Options carries the optional collaborators of a LedgerService.
type Options struct {
	Publisher     EventPublisher
	OverviewCache *cache.LRUCache[core.AnnualOverview]
	Logger        *log.Logger
}

// LedgerService implements the budget operations on top of a storage.Store.
type LedgerService struct {
	store      storage.Store
	publisher  EventPublisher
	overviews  *cache.LRUCache[core.AnnualOverview]
	inflight   singleflight.Group
	writes     atomic.Uint64
	logger     *log.Logger
	structured *log.StructuredLogger
}

func NewLedgerService(store storage.Store, opts Options) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:      store,
		publisher:  opts.Publisher,
		overviews:  opts.OverviewCache,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
	}
}

// SubmitPlanned replaces the month's planned salary and line items and
// returns the committed ledger with the summary of the submission.
func (s *LedgerService) SubmitPlanned(ctx context.Context, user string, month core.MonthKey, salary float64, items []core.ExpenseItem) (core.MonthLedger, core.PlannedSummary, error) {
	if err := core.ValidateSalary(salary); err != nil {
		return core.MonthLedger{}, core.PlannedSummary{}, err
	}
	if err := core.ValidateItems(items); err != nil {
		return core.MonthLedger{}, core.PlannedSummary{}, err
	}

	ledger, err := s.store.UpdateLedger(ctx, user, month, func(ctx context.Context, tx storage.LedgerTx) error {
		l := tx.Ledger()
		l.SalaryPlanned = salary
		if err := tx.ReplaceLineItems(ctx, items); err != nil {
			return fmt.Errorf("replace line items: %w", err)
		}
		_, err := recomputeLedgerTotals(ctx, tx, l)
		return err
	})
	if err != nil {
		return core.MonthLedger{}, core.PlannedSummary{}, fmt.Errorf("submit planned %s: %w", month, err)
	}

	s.afterWrite(ctx, amqp.KindPlanned, user, ledger, len(items))
	return ledger, core.SummarizePlanned(salary, items), nil
}

// SubmitActuals records actual spending. A nil salary leaves the stored
// actual salary untouched. The summary is computed from the persisted
// items, not from the submission.
func (s *LedgerService) SubmitActuals(ctx context.Context, user string, month core.MonthKey, salary *float64, items []core.ExpenseItem) (core.MonthLedger, core.ActualSummary, error) {
	if salary != nil {
		if err := core.ValidateSalary(*salary); err != nil {
			return core.MonthLedger{}, core.ActualSummary{}, err
		}
	}
	if err := core.ValidateItems(items); err != nil {
		return core.MonthLedger{}, core.ActualSummary{}, err
	}

	var persisted []core.LineItem
	ledger, err := s.store.UpdateLedger(ctx, user, month, func(ctx context.Context, tx storage.LedgerTx) error {
		l := tx.Ledger()
		if salary != nil {
			l.SalaryActual = *salary
			l.SalaryActualSet = true
		}
		if len(items) > 0 {
			if err := tx.UpsertActuals(ctx, items); err != nil {
				return fmt.Errorf("upsert actuals: %w", err)
			}
		}
		var err error
		persisted, err = recomputeLedgerTotals(ctx, tx, l)
		return err
	})
	if err != nil {
		return core.MonthLedger{}, core.ActualSummary{}, fmt.Errorf("submit actuals %s: %w", month, err)
	}

	s.afterWrite(ctx, amqp.KindActual, user, ledger, len(items))
	return ledger, core.SummarizeActual(ledger, persisted), nil
}

// MonthlyTracker returns the per-category view of a month. A month with no
// ledger yields zero salaries and no rows.
func (s *LedgerService) MonthlyTracker(ctx context.Context, user string, month core.MonthKey) (TrackerView, error) {
	view := TrackerView{Month: month, Rows: []core.CategoryRow{}}

	ledger, items, err := s.store.GetLedger(ctx, user, month)
	if errors.Is(err, storage.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return TrackerView{}, fmt.Errorf("load ledger %s: %w", month, err)
	}

	view.SalaryPlanned = ledger.SalaryPlanned
	view.SalaryActual = ledger.SalaryActual
	view.Rows = core.CategoryRows(items)
	return view, nil
}

// AnnualOverview rolls the user's ledgers for year into twelve months.
// Results are cached per (user, year) and concurrent misses share one load.
func (s *LedgerService) AnnualOverview(ctx context.Context, user string, year int) (core.AnnualOverview, error) {
	if err := core.ValidateYear(year); err != nil {
		return core.AnnualOverview{}, err
	}

	key := overviewKey(user, year)
	if s.overviews != nil {
		if ov, ok := s.overviews.Get(key); ok {
			return ov, nil
		}
	}

	v, err, _ := s.inflight.Do(key, func() (any, error) {
		gen := s.writes.Load()
		ledgers, err := s.store.ListLedgersForYear(ctx, user, year)
		if err != nil {
			return nil, fmt.Errorf("list ledgers for %d: %w", year, err)
		}
		ov := core.Rollup(year, ledgers)
		// a write that landed during the load may not be reflected
		if s.overviews != nil && s.writes.Load() == gen {
			s.overviews.Set(key, ov)
		}
		return ov, nil
	})
	if err != nil {
		return core.AnnualOverview{}, err
	}
	return v.(core.AnnualOverview), nil
}

// Ping checks the store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// recomputeLedgerTotals reloads the ledger's items, rebuilds the derived
// totals on l and saves it. It returns the reloaded items.
func recomputeLedgerTotals(ctx context.Context, tx storage.LedgerTx, l core.MonthLedger) ([]core.LineItem, error) {
	items, err := tx.LineItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload line items: %w", err)
	}
	if err := tx.SaveLedger(ctx, core.RecomputeTotals(l, items)); err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}
	return items, nil
}

func (s *LedgerService) afterWrite(ctx context.Context, kind, user string, l core.MonthLedger, items int) {
	key := overviewKey(user, l.Month.Year())
	s.writes.Add(1)
	s.inflight.Forget(key)
	if s.overviews != nil {
		s.overviews.Delete(key)
	}

	op := log.OpPlan
	if kind == amqp.KindActual {
		op = log.OpActual
	}
	s.structured.LogLedgerUpdated(ctx, op, user, l.Month.String(), items, l.TotalPlanned, l.TotalActual)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(kind, user, l)); err != nil {
		// the ledger is committed; a lost event is not a failed request
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldUser, user,
			log.FieldMonth, l.Month.String(),
			log.FieldError, err.Error())
	}
}

func overviewKey(user string, year int) string {
	return user + "|" + strconv.Itoa(year)
}

// Close releases the publisher. The store belongs to whoever opened it.
func (s *LedgerService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close ledger service: publisher: %w", err)
	}
	return nil
}
