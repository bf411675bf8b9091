package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestExpenseItemValidate(t *testing.T) {
	good := ExpenseItem{Name: "Rent", Amount: 1200, Category: "housing"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		item ExpenseItem
		want error
	}{
		{ExpenseItem{Name: " ", Amount: 1, Category: "c"}, ErrEmptyName},
		{ExpenseItem{Name: "n", Amount: 1, Category: ""}, ErrEmptyCategory},
		{ExpenseItem{Name: "n", Amount: math.NaN(), Category: "c"}, ErrInvalidAmount},
		{ExpenseItem{Name: "n", Amount: math.Inf(1), Category: "c"}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		if err := tc.item.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}

	long := ExpenseItem{Name: strings.Repeat("x", 201), Amount: 1, Category: "c"}
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long name")
	}

	if err := ValidateItems([]ExpenseItem{good, {Name: "", Category: "c"}}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("ValidateItems expected ErrEmptyName, got %v", err)
	}
	if err := ValidateSalary(math.NaN()); !errors.Is(err, ErrInvalidSalary) {
		t.Fatalf("ValidateSalary expected ErrInvalidSalary, got %v", err)
	}
}

func TestIndexItemsKeepsFirstMatch(t *testing.T) {
	items := []LineItem{
		{ID: 1, Name: "Rent", Category: "housing"},
		{ID: 2, Name: "Rent", Category: "other"},
		{ID: 3, Name: "Rent", Category: "housing"},
	}
	idx := IndexItems(items)
	if len(idx) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(idx))
	}
	if idx[ItemKey{Name: "Rent", Category: "housing"}] != 0 {
		t.Fatalf("expected first occurrence to win")
	}
	if idx[ItemKey{Name: "Rent", Category: "other"}] != 1 {
		t.Fatalf("unexpected index for other")
	}
}

func TestRecomputeTotals(t *testing.T) {
	l := MonthLedger{SalaryPlanned: 3000, TotalPlanned: 999, TotalActual: 999}
	items := []LineItem{
		{PlannedAmount: 1200, ActualAmount: 1100},
		{PlannedAmount: 300},
	}
	got := RecomputeTotals(l, items)
	if got.TotalPlanned != 1500 || got.RemainingPlanned != 1500 {
		t.Fatalf("planned totals = %v / %v", got.TotalPlanned, got.RemainingPlanned)
	}
	if got.TotalActual != 1100 || got.RemainingActual != 1900 {
		t.Fatalf("actual totals = %v / %v", got.TotalActual, got.RemainingActual)
	}

	got = RecomputeTotals(MonthLedger{SalaryPlanned: 3000, SalaryActual: 2500, SalaryActualSet: true}, items)
	if got.RemainingActual != 1400 {
		t.Fatalf("remaining actual = %v", got.RemainingActual)
	}

	got = RecomputeTotals(l, nil)
	if got.TotalPlanned != 0 || got.TotalActual != 0 || got.RemainingActual != 3000 {
		t.Fatalf("empty recompute = %+v", got)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ValidateItems([]ExpenseItem{{Name: strings.Repeat("x", 201), Category: "c"}})) {
		t.Fatal("long name should classify as validation")
	}
	if _, err := ParseMonthKey("2025-13"); !IsValidation(err) {
		t.Fatalf("bad month should classify as validation, got %v", err)
	}
	if IsValidation(errors.New("disk full")) {
		t.Fatal("unrelated error classified as validation")
	}
}
