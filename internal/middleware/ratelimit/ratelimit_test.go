package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, n int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{Requests: n, Window: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 2)

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("limits are per client")
	}

	*now = now.Add(30 * time.Second)
	if rl.Allow("1.1.1.1") {
		t.Fatal("window has not elapsed yet")
	}
	if got := rl.RetryAfter("1.1.1.1"); got != 30*time.Second {
		t.Fatalf("RetryAfter = %v, want 30s", got)
	}

	*now = now.Add(31 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("new window should allow again")
	}

	if m := rl.GetMetrics(); m.TotalHits != 2 || m.ClientCount != 2 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 5)
	rl.Allow("1.1.1.1")
	*now = now.Add(90 * time.Second)
	rl.Allow("2.2.2.2")
	*now = now.Add(40 * time.Second)

	rl.cleanupStaleEntries()
	if got := rl.ActiveClients(); got != 1 {
		t.Fatalf("ActiveClients = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	extract := func(*http.Request) string { return "9.9.9.9" }
	onLimit := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}
	h := rl.Middleware(extract, onLimit)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
