package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"budgetapi/internal/auth"
	"budgetapi/internal/core"
)

func (s *Server) handleCalculateBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())

	var req budgetRequest
	if _, err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	month, salary, items, err := req.toCore()
	if err != nil {
		respondError(w, r, err)
		return
	}

	ledger, summary, err := s.ledger.SubmitPlanned(r.Context(), user, month, salary, items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newBudgetResponse(user, ledger, summary))
}

func (s *Server) handleSaveActuals(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())

	month, err := core.ParseMonthKey(mux.Vars(r)["month"])
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req actualsRequest
	absent, err := decodeJSON(w, r, &req, true)
	if err != nil {
		respondError(w, r, err)
		return
	}
	salary, items, err := req.toCore(absent)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ledger, summary, err := s.ledger.SubmitActuals(r.Context(), user, month, salary, items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newActualsResponse(user, ledger, summary))
}

func (s *Server) handleGetTracker(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())

	month, err := core.ParseMonthKey(mux.Vars(r)["month"])
	if err != nil {
		respondError(w, r, err)
		return
	}

	view, err := s.ledger.MonthlyTracker(r.Context(), user, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTrackerResponse(view))
}

func (s *Server) handleAnnualOverview(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())

	year, err := parseYear(r.URL.Query(), time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	ov, err := s.ledger.AnnualOverview(r.Context(), user, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newOverviewResponse(ov))
}
