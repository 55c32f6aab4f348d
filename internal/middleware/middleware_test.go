package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func TestCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS(inner)

	t.Run("answers preflight before the router", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/login", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("preflight should short-circuit with 200, got %d", w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("missing allow-origin header: %v", w.Header())
		}
	})

	t.Run("passes other methods through with headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusTeapot {
			t.Errorf("non-preflight request should reach the handler, got %d", w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Headers") == "" {
			t.Error("CORS headers missing on regular response")
		}
	})
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("4th request inside the window should be denied")
	}

	// Another IP has its own window
	if !rl.Allow("5.6.7.8") {
		t.Error("different IP should not share the limit")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("second request should be limited")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Error("request after the window should pass again")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(r *http.Request)
		remote string
		want   string
	}{
		{
			name:   "x-forwarded-for wins",
			setup:  func(r *http.Request) { r.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1") },
			remote: "127.0.0.1:1234",
			want:   "9.9.9.9",
		},
		{
			name:   "x-real-ip second",
			setup:  func(r *http.Request) { r.Header.Set("X-Real-IP", "8.8.8.8") },
			remote: "127.0.0.1:1234",
			want:   "8.8.8.8",
		},
		{
			name:   "falls back to remote addr without port",
			setup:  func(r *http.Request) {},
			remote: "192.168.1.5:4567",
			want:   "192.168.1.5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			tc.setup(req)

			if got := clientIP(req); got != tc.want {
				t.Errorf("clientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})
	h := Chain(inner, tag("first"), tag("second"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("middleware order wrong: expected %v, got %v", want, order)
		}
	}
}
