package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_PerClientBudget(t *testing.T) {
	rl := NewRateLimiter(2)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request within the minute should be limited")
	}
	if !rl.Allow("b") {
		t.Error("another client has its own budget")
	}
	if got := rl.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(10)
	rl.Allow("stale")
	rl.mu.Lock()
	rl.visitors["stale"].lastSeen = time.Now().Add(-2 * visitorTTL)
	rl.mu.Unlock()
	rl.Allow("fresh")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Cleanup(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for rl.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if got := rl.Len(); got != 1 {
		t.Errorf("Len() after cleanup = %d, want 1", got)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1)
	denied := 0
	h := RateLimit(rl, func(w http.ResponseWriter, r *http.Request) {
		denied++
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
	if denied != 1 {
		t.Errorf("deny called %d times, want 1", denied)
	}
}
