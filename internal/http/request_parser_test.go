package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetapi/internal/core"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr), "want *apiError, got %v", err)
	return apiErr.Status
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		wantAbsent bool
		wantStatus int
	}{
		{"object", `{"salary": 10, "expenses": []}`, false, false, 0},
		{"empty body allowed", "", true, true, 0},
		{"null body allowed", " null ", true, true, 0},
		{"empty body required", "", false, true, http.StatusUnprocessableEntity},
		{"syntax error", `{"salary":`, false, false, http.StatusBadRequest},
		{"type error", `{"salary": "ten"}`, false, false, http.StatusUnprocessableEntity},
		{"too large", `{"salary": 1, "pad": "` + strings.Repeat("x", maxBodyBytes) + `"}`, false, false, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var req actualsRequest
			absent, err := decodeJSON(w, r, &req, tt.allowEmpty)
			assert.Equal(t, tt.wantAbsent, absent)
			if tt.wantStatus == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantStatus, statusOf(t, err))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestBudgetRequestToCore(t *testing.T) {
	expenses := []expenseRequest{{Name: ptr("Rent"), Amount: ptr(1200.0), Category: ptr("housing")}}

	month, salary, items, err := budgetRequest{
		Month:         ptr("2025-8"),
		MonthlySalary: ptr(3000.0),
		Expenses:      &expenses,
	}.toCore()
	require.NoError(t, err)
	assert.Equal(t, core.MonthKey("2025-08"), month)
	assert.Equal(t, 3000.0, salary)
	assert.Equal(t, []core.ExpenseItem{{Name: "Rent", Amount: 1200, Category: "housing"}}, items)

	_, _, _, err = budgetRequest{MonthlySalary: ptr(1.0), Expenses: &expenses}.toCore()
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, _, _, err = budgetRequest{Month: ptr("2025-08"), Expenses: &expenses}.toCore()
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, _, _, err = budgetRequest{Month: ptr("August"), MonthlySalary: ptr(1.0), Expenses: &expenses}.toCore()
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	missing := []expenseRequest{{Name: ptr("Rent"), Category: ptr("housing")}}
	_, _, _, err = budgetRequest{Month: ptr("2025-08"), MonthlySalary: ptr(1.0), Expenses: &missing}.toCore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses[0].amount")
}

func TestActualsRequestToCore(t *testing.T) {
	salary, items, err := actualsRequest{}.toCore(true)
	require.NoError(t, err)
	assert.Nil(t, salary)
	assert.Empty(t, items)

	_, _, err = actualsRequest{Salary: ptr(10.0)}.toCore(false)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	expenses := []expenseRequest{}
	salary, items, err = actualsRequest{Expenses: &expenses}.toCore(false)
	require.NoError(t, err)
	assert.Nil(t, salary)
	assert.Empty(t, items)
}

func TestParseYear(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 30, 0, 0, time.FixedZone("east", 2*3600))

	year, err := parseYear(url.Values{}, now)
	require.NoError(t, err)
	assert.Equal(t, 2025, year, "default uses the UTC year")

	year, err = parseYear(url.Values{"year": {"2024"}}, now)
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	_, err = parseYear(url.Values{"year": {"abc"}}, now)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, err = parseYear(url.Values{"year": {"0"}}, now)
	assert.ErrorIs(t, err, core.ErrInvalidYear)
}
