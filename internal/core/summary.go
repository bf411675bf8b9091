package core

import "fmt"

const (
	recommendOverspend = "You're overspending by £%s! Consider trimming the largest categories."
	recommendEmergency = "Try to save at least 10% of your income for emergencies."
	recommendIncrease  = "Good job! Consider increasing your savings rate."
	recommendHealthy   = "Excellent! You have a healthy planned surplus."
)

// PlannedSummary is the result of aggregating a planned budget submission.
type PlannedSummary struct {
	Salary          float64
	Total           float64
	Remaining       float64
	ByCategory      map[string]float64
	Percentages     map[string]float64
	Recommendations []string
	SavingsRate     float64
}

// ActualSummary is the result of aggregating a ledger's persisted actuals.
type ActualSummary struct {
	Salary     float64
	Total      float64
	Remaining  float64
	ByCategory map[string]float64
}

// CategoryRow pairs the planned and actual sums of one category.
type CategoryRow struct {
	Category  string
	Projected float64
	Actual    float64
}

// SummarizePlanned aggregates a planned budget. Percentages are only
// computed for a positive salary, and the savings rate is 0 when salary
// is 0.
func SummarizePlanned(salary float64, items []ExpenseItem) PlannedSummary {
	s := PlannedSummary{
		Salary:      salary,
		ByCategory:  make(map[string]float64),
		Percentages: make(map[string]float64),
	}
	for _, it := range items {
		s.Total += it.Amount
		s.ByCategory[it.Category] += it.Amount
	}
	s.Remaining = salary - s.Total

	if salary > 0 {
		for cat, amt := range s.ByCategory {
			s.Percentages[cat] = Percent(amt, salary)
		}
	}
	if salary != 0 {
		s.SavingsRate = Percent(s.Remaining, salary)
	}
	s.Recommendations = []string{Recommend(salary, s.Remaining)}
	return s
}

// Recommend picks the advice line for a planned month. The thresholds are
// evaluated in order and the first match wins.
func Recommend(salary, remaining float64) string {
	switch {
	case remaining < 0:
		return fmt.Sprintf(recommendOverspend, FormatAmount(-remaining))
	case remaining < 0.1*salary:
		return recommendEmergency
	case remaining < 0.2*salary:
		return recommendIncrease
	default:
		return recommendHealthy
	}
}

// SummarizeActual aggregates the actual amounts of a ledger's line items.
// items must be the persisted set, reloaded after any mutation.
func SummarizeActual(l MonthLedger, items []LineItem) ActualSummary {
	s := ActualSummary{
		Salary:     l.EffectiveSalary(),
		ByCategory: make(map[string]float64),
	}
	for _, it := range items {
		s.Total += it.ActualAmount
		s.ByCategory[it.Category] += it.ActualAmount
	}
	s.Remaining = s.Salary - s.Total
	return s
}

// CategoryRows groups line items by category, in order of first
// appearance.
func CategoryRows(items []LineItem) []CategoryRow {
	rows := make([]CategoryRow, 0)
	pos := make(map[string]int)
	for _, it := range items {
		i, ok := pos[it.Category]
		if !ok {
			i = len(rows)
			pos[it.Category] = i
			rows = append(rows, CategoryRow{Category: it.Category})
		}
		rows[i].Projected += it.PlannedAmount
		rows[i].Actual += it.ActualAmount
	}
	return rows
}
