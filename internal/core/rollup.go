package core

// MonthRollup is one month's row in an annual overview.
type MonthRollup struct {
	Month           MonthKey
	PlannedSalary   float64
	ActualSalary    float64
	TotalPlanned    float64
	TotalActual     float64
	RemainingActual float64
}

// RollupTotals sums the MonthRollup columns across a year.
type RollupTotals struct {
	PlannedSalary   float64
	ActualSalary    float64
	TotalPlanned    float64
	TotalActual     float64
	RemainingActual float64
}

type AnnualOverview struct {
	Year   int
	Months []MonthRollup
	Totals RollupTotals
}

// Rollup builds the twelve-month overview of year from whatever ledgers
// exist. Months without a ledger contribute zeros, so the result always
// has twelve entries.
func Rollup(year int, ledgers []MonthLedger) AnnualOverview {
	byMonth := make(map[MonthKey]MonthLedger, len(ledgers))
	for _, l := range ledgers {
		byMonth[l.Month] = l
	}

	ov := AnnualOverview{Year: year, Months: make([]MonthRollup, 0, 12)}
	for m := 1; m <= 12; m++ {
		key := MonthKeyFor(year, m)
		row := MonthRollup{Month: key}
		if l, ok := byMonth[key]; ok {
			row.PlannedSalary = l.SalaryPlanned
			row.ActualSalary = l.SalaryActual
			row.TotalPlanned = l.TotalPlanned
			row.TotalActual = l.TotalActual
			row.RemainingActual = l.RemainingActual
		}
		ov.Months = append(ov.Months, row)

		ov.Totals.PlannedSalary += row.PlannedSalary
		ov.Totals.ActualSalary += row.ActualSalary
		ov.Totals.TotalPlanned += row.TotalPlanned
		ov.Totals.TotalActual += row.TotalActual
		ov.Totals.RemainingActual += row.RemainingActual
	}
	return ov
}
