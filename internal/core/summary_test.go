package core

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarizePlanned(t *testing.T) {
	items := []ExpenseItem{
		{Name: "Rent", Amount: 1200, Category: "housing"},
		{Name: "Food", Amount: 300, Category: "groceries"},
	}
	s := SummarizePlanned(3000, items)

	if s.Total != 1500 || s.Remaining != 1500 {
		t.Fatalf("total=%v remaining=%v", s.Total, s.Remaining)
	}
	if s.ByCategory["housing"] != 1200 || s.ByCategory["groceries"] != 300 {
		t.Fatalf("by category = %v", s.ByCategory)
	}
	if s.Percentages["housing"] != 40 || s.Percentages["groceries"] != 10 {
		t.Fatalf("percentages = %v", s.Percentages)
	}
	if s.SavingsRate != 50 {
		t.Fatalf("savings rate = %v", s.SavingsRate)
	}
	if len(s.Recommendations) != 1 || s.Recommendations[0] != recommendHealthy {
		t.Fatalf("recommendations = %v", s.Recommendations)
	}
}

func TestSummarizePlannedCategoryTotalsMatch(t *testing.T) {
	items := []ExpenseItem{
		{Name: "a", Amount: 10.1, Category: "x"},
		{Name: "b", Amount: 20.2, Category: "y"},
		{Name: "c", Amount: 30.3, Category: "x"},
		{Name: "d", Amount: 0.07, Category: "z"},
	}
	s := SummarizePlanned(999.99, items)
	var sum float64
	for _, v := range s.ByCategory {
		sum += v
	}
	if !approx(sum, s.Total) {
		t.Fatalf("category sum %v != total %v", sum, s.Total)
	}
	if !approx(s.Total, 999.99-s.Remaining) {
		t.Fatalf("total %v != salary - remaining %v", s.Total, 999.99-s.Remaining)
	}
}

func TestSummarizePlannedZeroSalary(t *testing.T) {
	s := SummarizePlanned(0, []ExpenseItem{{Name: "Rent", Amount: 100, Category: "housing"}})
	if len(s.Percentages) != 0 {
		t.Fatalf("expected no percentages, got %v", s.Percentages)
	}
	if s.SavingsRate != 0 {
		t.Fatalf("expected zero savings rate, got %v", s.SavingsRate)
	}
	if s.Remaining != -100 {
		t.Fatalf("remaining = %v", s.Remaining)
	}
}

func TestSummarizePlannedNoItems(t *testing.T) {
	s := SummarizePlanned(2000, nil)
	if s.Total != 0 || s.Remaining != 2000 || s.SavingsRate != 100 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.ByCategory) != 0 {
		t.Fatalf("expected empty categories")
	}
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		name      string
		salary    float64
		remaining float64
		want      string
	}{
		{"overspend", 1000, -250.5, "You're overspending by £250.50! Consider trimming the largest categories."},
		{"under ten percent", 1000, 99.99, recommendEmergency},
		{"exactly ten percent", 1000, 100, recommendIncrease},
		{"under twenty percent", 1000, 199, recommendIncrease},
		{"twenty percent", 1000, 200, recommendHealthy},
		{"zero salary zero remaining", 0, 0, recommendHealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Recommend(tc.salary, tc.remaining); got != tc.want {
				t.Fatalf("Recommend(%v, %v) = %q, want %q", tc.salary, tc.remaining, got, tc.want)
			}
		})
	}
}

func TestSummarizeActual(t *testing.T) {
	items := []LineItem{
		{Name: "Rent", Category: "housing", PlannedAmount: 1200, ActualAmount: 1100},
		{Name: "Food", Category: "groceries", PlannedAmount: 300},
		{Name: "Bus", Category: "transport", ActualAmount: 45.5},
	}

	t.Run("falls back to planned salary", func(t *testing.T) {
		l := MonthLedger{SalaryPlanned: 3000}
		s := SummarizeActual(l, items)
		if s.Salary != 3000 || s.Total != 1145.5 || s.Remaining != 1854.5 {
			t.Fatalf("unexpected summary %+v", s)
		}
		if s.ByCategory["groceries"] != 0 || s.ByCategory["housing"] != 1100 {
			t.Fatalf("by category = %v", s.ByCategory)
		}
	})

	t.Run("uses actual salary when set", func(t *testing.T) {
		l := MonthLedger{SalaryPlanned: 3000, SalaryActual: 2800, SalaryActualSet: true}
		s := SummarizeActual(l, items)
		if s.Salary != 2800 || s.Remaining != 1654.5 {
			t.Fatalf("unexpected summary %+v", s)
		}
	})

	t.Run("explicit zero actual salary wins", func(t *testing.T) {
		l := MonthLedger{SalaryPlanned: 3000, SalaryActualSet: true}
		s := SummarizeActual(l, items)
		if s.Salary != 0 || s.Remaining != -1145.5 {
			t.Fatalf("unexpected summary %+v", s)
		}
	})

	t.Run("no salary at all", func(t *testing.T) {
		s := SummarizeActual(MonthLedger{}, nil)
		if s.Salary != 0 || s.Total != 0 || s.Remaining != 0 {
			t.Fatalf("unexpected summary %+v", s)
		}
	})
}

func TestCategoryRows(t *testing.T) {
	items := []LineItem{
		{Name: "Rent", Category: "housing", PlannedAmount: 1200, ActualAmount: 1100},
		{Name: "Food", Category: "groceries", PlannedAmount: 300},
		{Name: "Council tax", Category: "housing", PlannedAmount: 150, ActualAmount: 150},
	}
	rows := CategoryRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0] != (CategoryRow{Category: "housing", Projected: 1350, Actual: 1250}) {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1] != (CategoryRow{Category: "groceries", Projected: 300}) {
		t.Fatalf("row 1 = %+v", rows[1])
	}
	if got := CategoryRows(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", got)
	}
}
