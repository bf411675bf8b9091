package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budgetapi/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), func(*http.Request) string { return "203.0.113.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id = %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("response header = %q, context = %q", rec.Header().Get(RequestIDHeader), seen)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMiddleware_ReusesSaneInboundID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "edge-1234")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get(RequestIDHeader); got != "edge-1234" {
		t.Fatalf("request id = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get(RequestIDHeader); !strings.HasPrefix(got, "req_") {
		t.Fatalf("unsafe inbound id was reused: %q", got)
	}
}

func TestMiddleware_Metrics(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	statuses := []int{http.StatusOK, http.StatusUnauthorized, http.StatusUnprocessableEntity, http.StatusInternalServerError}

	for _, code := range statuses {
		code := code
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
			w.WriteHeader(http.StatusTeapot)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 4 || got.ClientErrors != 2 || got.ServerErrors != 1 {
		t.Fatalf("metrics = %+v", got)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetRequestID(r.Context()) != "" {
		t.Fatal("expected empty request id")
	}
}
