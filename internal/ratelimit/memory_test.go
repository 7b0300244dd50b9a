package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryLimiterAllow(t *testing.T) {
	limiter := NewMemoryLimiter("test")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "k", time.Minute, 3)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if remaining != 3-(i+1) {
			t.Fatalf("unexpected remaining: %d", remaining)
		}
	}
	allowed, _, _, err := limiter.Allow(ctx, "k", time.Minute, 3)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("expected fourth request to be rejected")
	}

	allowed, _, _, _ = limiter.Allow(ctx, "other", time.Minute, 3)
	if !allowed {
		t.Fatal("keys must be limited independently")
	}
}

func TestHandlerByClientIP(t *testing.T) {
	handler := Handler{
		Limiter: NewMemoryLimiter("ip"),
		Config:  Config{Key: ByClientIP, Window: time.Minute, Max: 1},
	}
	counted := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/loans/quote", nil)
	first.RemoteAddr = "198.51.100.1:5000"
	rr := httptest.NewRecorder()
	counted.ServeHTTP(rr, first)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	counted.ServeHTTP(rr, first.Clone(first.Context()))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/loans/quote", nil)
	other.RemoteAddr = "198.51.100.2:5000"
	rr = httptest.NewRecorder()
	counted.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Fatalf("different client should not share the limit, got %d", rr.Code)
	}
}
