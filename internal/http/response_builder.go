package http

import (
	"budgetapi/internal/core"
	"budgetapi/internal/services"
)

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type verifyResponse struct {
	User           string `json:"user"`
	Authenticated  bool   `json:"authenticated"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

type budgetResponse struct {
	ID                 int64              `json:"id"`
	Month              string             `json:"month"`
	MonthlySalary      float64            `json:"monthly_salary"`
	TotalExpenses      float64            `json:"total_expenses"`
	RemainingBudget    float64            `json:"remaining_budget"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	ExpensePercentages map[string]float64 `json:"expense_percentages"`
	Recommendations    []string           `json:"recommendations"`
	SavingsRate        float64            `json:"savings_rate"`
	User               string             `json:"user"`
}

type actualsResponse struct {
	Month              string             `json:"month"`
	Salary             float64            `json:"salary"`
	TotalActual        float64            `json:"total_actual"`
	RemainingActual    float64            `json:"remaining_actual"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	User               string             `json:"user"`
}

type trackerRow struct {
	Category  string  `json:"category"`
	Projected float64 `json:"projected"`
	Actual    float64 `json:"actual"`
}

type trackerResponse struct {
	Month         string       `json:"month"`
	SalaryPlanned float64      `json:"salary_planned"`
	SalaryActual  float64      `json:"salary_actual"`
	Rows          []trackerRow `json:"rows"`
}

type overviewMonth struct {
	Month           string  `json:"month"`
	PlannedSalary   float64 `json:"planned_salary"`
	ActualSalary    float64 `json:"actual_salary"`
	TotalPlanned    float64 `json:"total_planned"`
	TotalActual     float64 `json:"total_actual"`
	RemainingActual float64 `json:"remaining_actual"`
}

type overviewTotals struct {
	PlannedSalary   float64 `json:"planned_salary"`
	ActualSalary    float64 `json:"actual_salary"`
	TotalPlanned    float64 `json:"total_planned"`
	TotalActual     float64 `json:"total_actual"`
	RemainingActual float64 `json:"remaining_actual"`
}

type overviewResponse struct {
	Year   int             `json:"year"`
	Months []overviewMonth `json:"months"`
	Totals overviewTotals  `json:"totals"`
}

func newBudgetResponse(user string, l core.MonthLedger, s core.PlannedSummary) budgetResponse {
	return budgetResponse{
		ID:                 l.ID,
		Month:              l.Month.String(),
		MonthlySalary:      l.SalaryPlanned,
		TotalExpenses:      s.Total,
		RemainingBudget:    s.Remaining,
		ExpensesByCategory: s.ByCategory,
		ExpensePercentages: s.Percentages,
		Recommendations:    s.Recommendations,
		SavingsRate:        s.SavingsRate,
		User:               user,
	}
}

func newActualsResponse(user string, l core.MonthLedger, s core.ActualSummary) actualsResponse {
	return actualsResponse{
		Month:              l.Month.String(),
		Salary:             s.Salary,
		TotalActual:        l.TotalActual,
		RemainingActual:    l.RemainingActual,
		ExpensesByCategory: s.ByCategory,
		User:               user,
	}
}

func newTrackerResponse(v services.TrackerView) trackerResponse {
	rows := make([]trackerRow, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, trackerRow{Category: r.Category, Projected: r.Projected, Actual: r.Actual})
	}
	return trackerResponse{
		Month:         v.Month.String(),
		SalaryPlanned: v.SalaryPlanned,
		SalaryActual:  v.SalaryActual,
		Rows:          rows,
	}
}

func newOverviewResponse(ov core.AnnualOverview) overviewResponse {
	months := make([]overviewMonth, 0, len(ov.Months))
	for _, m := range ov.Months {
		months = append(months, overviewMonth{
			Month:           m.Month.String(),
			PlannedSalary:   m.PlannedSalary,
			ActualSalary:    m.ActualSalary,
			TotalPlanned:    m.TotalPlanned,
			TotalActual:     m.TotalActual,
			RemainingActual: m.RemainingActual,
		})
	}
	return overviewResponse{
		Year:   ov.Year,
		Months: months,
		Totals: overviewTotals(ov.Totals),
	}
}
