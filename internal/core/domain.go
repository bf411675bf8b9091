package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type (
	Account struct {
		ID       int64
		Username string
	}

	// MonthLedger is the per-account, per-month summary record. The Total*
	// and Remaining* fields are caches over the owned line items and are
	// only ever written by RecomputeTotals.
	MonthLedger struct {
		ID               int64
		AccountID        int64
		Month            MonthKey
		SalaryPlanned    float64
		SalaryActual     float64
		SalaryActualSet  bool
		TotalPlanned     float64
		TotalActual      float64
		RemainingPlanned float64
		RemainingActual  float64
		CreatedAt        time.Time
	}

	LineItem struct {
		ID            int64
		LedgerID      int64
		Name          string
		Category      string
		PlannedAmount float64
		ActualAmount  float64
	}

	// ExpenseItem is a submitted expense line, planned or actual depending
	// on the endpoint that received it.
	ExpenseItem struct {
		Name     string
		Amount   float64
		Category string
	}

	// ItemKey identifies a line item within a ledger.
	ItemKey struct {
		Name     string
		Category string
	}
)

var (
	ErrInvalidMonth  = errors.New("month must be 'YYYY-MM'")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidSalary = errors.New("invalid salary")
	ErrEmptyName     = errors.New("empty expense name")
	ErrEmptyCategory = errors.New("empty expense category")
	ErrNameTooLong   = errors.New("expense name too long (max 200 characters)")
)

const maxNameLength = 200

func (e ExpenseItem) Key() ItemKey {
	return ItemKey{Name: e.Name, Category: e.Category}
}

func (e ExpenseItem) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > maxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !isFinite(e.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// IsValidation reports whether err stems from rejected input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidMonth, ErrInvalidYear, ErrInvalidAmount, ErrInvalidSalary,
		ErrEmptyName, ErrEmptyCategory, ErrNameTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidateItems returns the first invalid item's error.
func ValidateItems(items []ExpenseItem) error {
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("expenses[%d]: %w", i, err)
		}
	}
	return nil
}

func ValidateSalary(v float64) error {
	if !isFinite(v) {
		return ErrInvalidSalary
	}
	return nil
}

func (li LineItem) Key() ItemKey {
	return ItemKey{Name: li.Name, Category: li.Category}
}

// IndexItems maps each (name, category) pair to the position of its first
// occurrence in items.
func IndexItems(items []LineItem) map[ItemKey]int {
	idx := make(map[ItemKey]int, len(items))
	for i, it := range items {
		if _, ok := idx[it.Key()]; !ok {
			idx[it.Key()] = i
		}
	}
	return idx
}

// EffectiveSalary is the salary actual figures are measured against: the
// submitted actual salary when there is one, otherwise the planned salary.
func (l MonthLedger) EffectiveSalary() float64 {
	if l.SalaryActualSet {
		return l.SalaryActual
	}
	return l.SalaryPlanned
}

// RecomputeTotals rebuilds the ledger's derived totals from its persisted
// line items.
func RecomputeTotals(l MonthLedger, items []LineItem) MonthLedger {
	var planned, actual float64
	for _, it := range items {
		planned += it.PlannedAmount
		actual += it.ActualAmount
	}
	l.TotalPlanned = planned
	l.TotalActual = actual
	l.RemainingPlanned = l.SalaryPlanned - planned
	l.RemainingActual = l.EffectiveSalary() - actual
	return l
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
