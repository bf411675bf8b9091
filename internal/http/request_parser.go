// Package http exposes the budget API as JSON over HTTP.
//
// This file decodes request bodies and query parameters into core types.
// Decoding problems are reported as *apiError so handlers can map them to
// a status without inspecting messages.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budgetapi/internal/core"
)

const maxBodyBytes = 1 << 20

// apiError carries the status and detail of a client error.
type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string { return e.Detail }

func badRequest(format string, args ...any) error {
	return &apiError{Status: http.StatusBadRequest, Detail: fmt.Sprintf(format, args...)}
}

func unprocessable(format string, args ...any) error {
	return &apiError{Status: http.StatusUnprocessableEntity, Detail: fmt.Sprintf(format, args...)}
}

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type expenseRequest struct {
	Name     *string  `json:"name"`
	Amount   *float64 `json:"amount"`
	Category *string  `json:"category"`
}

type budgetRequest struct {
	Month         *string           `json:"month"`
	MonthlySalary *float64          `json:"monthly_salary"`
	Expenses      *[]expenseRequest `json:"expenses"`
}

type actualsRequest struct {
	Salary   *float64          `json:"salary"`
	Expenses *[]expenseRequest `json:"expenses"`
}

// decodeJSON reads r's body into dst. It reports whether the body was
// absent (empty or a bare null); absent bodies are an error unless
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) (bool, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return false, &apiError{Status: http.StatusRequestEntityTooLarge, Detail: "request body too large"}
		}
		return false, badRequest("could not read request body")
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if allowEmpty {
			return true, nil
		}
		return true, unprocessable("request body is required")
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return false, unprocessable("field %q has the wrong type", typeErr.Field)
		}
		return false, badRequest("malformed JSON body")
	}
	return false, nil
}

func (req loginRequest) credentials() (string, string, error) {
	if req.Username == nil || req.Password == nil {
		return "", "", unprocessable("username and password are required")
	}
	return *req.Username, *req.Password, nil
}

func (req budgetRequest) toCore() (core.MonthKey, float64, []core.ExpenseItem, error) {
	if req.Month == nil {
		return "", 0, nil, unprocessable("month is required")
	}
	month, err := core.ParseMonthKey(*req.Month)
	if err != nil {
		return "", 0, nil, err
	}
	if req.MonthlySalary == nil {
		return "", 0, nil, unprocessable("monthly_salary is required")
	}
	if req.Expenses == nil {
		return "", 0, nil, unprocessable("expenses is required")
	}
	items, err := parseExpenses(*req.Expenses)
	if err != nil {
		return "", 0, nil, err
	}
	return month, *req.MonthlySalary, items, nil
}

// toCore converts an actuals body. An absent body means no salary and no
// items; a present body must carry an expenses list.
func (req actualsRequest) toCore(absent bool) (*float64, []core.ExpenseItem, error) {
	if absent {
		return nil, nil, nil
	}
	if req.Expenses == nil {
		return nil, nil, unprocessable("expenses is required")
	}
	items, err := parseExpenses(*req.Expenses)
	if err != nil {
		return nil, nil, err
	}
	return req.Salary, items, nil
}

func parseExpenses(in []expenseRequest) ([]core.ExpenseItem, error) {
	items := make([]core.ExpenseItem, 0, len(in))
	for i, e := range in {
		switch {
		case e.Name == nil:
			return nil, unprocessable("expenses[%d].name is required", i)
		case e.Amount == nil:
			return nil, unprocessable("expenses[%d].amount is required", i)
		case e.Category == nil:
			return nil, unprocessable("expenses[%d].category is required", i)
		}
		items = append(items, core.ExpenseItem{Name: *e.Name, Amount: *e.Amount, Category: *e.Category})
	}
	return items, nil
}

// parseYear reads the "year" query parameter, defaulting to the current
// UTC year.
func parseYear(query url.Values, now time.Time) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return now.UTC().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, unprocessable("year must be an integer")
	}
	if err := core.ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}
