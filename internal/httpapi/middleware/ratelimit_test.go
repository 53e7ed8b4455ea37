package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	h := RateLimit(60, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("want 200 got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 {
		t.Fatalf("want 429 got %d", rr.Code)
	}

	// other clients have their own bucket
	other := httptest.NewRequest("GET", "/", nil)
	other.RemoteAddr = "5.6.7.8:1234"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	if rr.Code != 200 {
		t.Fatalf("want 200 for other client got %d", rr.Code)
	}
}

func TestLimiter_RefillsAndForgets(t *testing.T) {
	l := newLimiter(60, 1, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if !l.allow("a", now) || l.allow("a", now) {
		t.Fatalf("want one token then empty")
	}
	if !l.allow("a", now.Add(time.Second)) {
		t.Fatalf("want refill after 1s at 60 rpm")
	}

	l.allow("b", now.Add(time.Second))
	l.allow("c", now.Add(3*time.Minute))
	if _, ok := l.clients["a"]; ok {
		t.Fatalf("idle client should be swept")
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("want passthrough, got %d", rr.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "9.9.9.9:80"
	if got := clientIP(r); got != "9.9.9.9" {
		t.Fatalf("got %q", got)
	}
	r.Header.Set("X-Forwarded-For", " 1.1.1.1 , 2.2.2.2")
	if got := clientIP(r); got != "1.1.1.1" {
		t.Fatalf("got %q", got)
	}
}
