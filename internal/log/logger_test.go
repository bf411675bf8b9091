package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Component: ComponentLedger, JSON: true, Output: buf})
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return rec
}

func TestLogger_StampsComponent(t *testing.T) {
	var buf bytes.Buffer
	newBufferLogger(&buf).Info("hello", FieldUser, "alice")

	rec := decodeRecord(t, &buf)
	if rec[FieldComponent] != ComponentLedger {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
	if rec[FieldUser] != "alice" {
		t.Fatalf("user = %v", rec[FieldUser])
	}
}

func TestLogger_WithComponentKeepsHandler(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentAuth)
	l.Warn("denied")

	rec := decodeRecord(t, &buf)
	if rec[FieldComponent] != ComponentAuth {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
	if rec["level"] != "WARN" {
		t.Fatalf("level = %v", rec["level"])
	}
}

func TestFields_KeepOrder(t *testing.T) {
	f := Fields{}.
		Ledger("bob", "2025-03").
		Totals(1500, 1100).
		Error(errors.New("boom")).
		Error(nil)

	want := Fields{
		FieldUser, "bob",
		FieldMonth, "2025-03",
		FieldTotalPlanned, 1500.0,
		FieldTotalActual, 1100.0,
		FieldError, "boom",
	}
	if len(f) != len(want) {
		t.Fatalf("fields = %v, want %v", f, want)
	}
	for i := range want {
		if f[i] != want[i] {
			t.Fatalf("fields[%d] = %v, want %v", i, f[i], want[i])
		}
	}
}

func TestFields_RequestOmitsEmpty(t *testing.T) {
	f := Fields{}.Request("GET", "/", "", "req-1", "")
	if len(f) != 6 {
		t.Fatalf("fields = %v", f)
	}
}

func TestStructuredLogger_LogHTTPEndLevel(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{503, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newBufferLogger(&buf))
		sl.LogHTTPEnd(context.Background(), httptest.NewRequest(http.MethodGet, "/x?y=1", nil), tt.status, 0, "10.0.0.1", "req-1")

		rec := decodeRecord(t, &buf)
		if rec["level"] != tt.level {
			t.Fatalf("status %d: level = %v, want %s", tt.status, rec["level"], tt.level)
		}
		if rec[FieldQuery] != "y=1" || rec[FieldClientIP] != "10.0.0.1" {
			t.Fatalf("status %d: record = %v", tt.status, rec)
		}
	}
}

func TestMiddleware_InjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	var got *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("inside")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil {
		t.Fatal("logger not found in context")
	}
	rec := decodeRecord(t, &buf)
	if rec[FieldRequestID] != "req-1" {
		t.Fatalf("request_id = %v", rec[FieldRequestID])
	}
}

func TestFromContext_Fallback(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("fallback logger = %+v", l)
	}
}

func TestStructuredLogger_LogLedgerUpdated(t *testing.T) {
	var buf bytes.Buffer
	NewStructuredLogger(newBufferLogger(&buf)).
		LogLedgerUpdated(context.Background(), OpPlan, "alice", "2025-03", 2, 1500, 0)

	rec := decodeRecord(t, &buf)
	if rec[FieldOperation] != OpPlan {
		t.Fatalf("operation = %v", rec[FieldOperation])
	}
	if rec[FieldItemCount] != float64(2) {
		t.Fatalf("item_count = %v", rec[FieldItemCount])
	}
	if rec[FieldTotalPlanned] != float64(1500) {
		t.Fatalf("total_planned = %v", rec[FieldTotalPlanned])
	}
}
