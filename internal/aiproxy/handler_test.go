package aiproxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type stubGenerator struct {
	reply   string
	err     error
	message string
	history []Turn
}

func (g *stubGenerator) Generate(ctx context.Context, message string, history []Turn) (string, error) {
	g.message = message
	g.history = history
	return g.reply, g.err
}

func postChat(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Chat(w, req)
	return w
}

func TestChat(t *testing.T) {
	t.Run("returns the generated reply", func(t *testing.T) {
		gen := &stubGenerator{reply: "Consider a weekly budget."}
		h := NewHandler(gen, DefaultMaxHistory, false)

		w := postChat(h, `{"message":"how do I save?","history":[]}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp chatResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Response != "Consider a weekly budget." {
			t.Errorf("unexpected response: %q", resp.Response)
		}
		if gen.message != "how do I save?" {
			t.Errorf("message not forwarded: %q", gen.message)
		}
	})

	t.Run("rejects empty message", func(t *testing.T) {
		h := NewHandler(&stubGenerator{}, DefaultMaxHistory, false)

		for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
			w := postChat(h, body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("body %s: expected 400, got %d", body, w.Code)
			}
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		h := NewHandler(&stubGenerator{}, DefaultMaxHistory, false)

		w := postChat(h, `{broken`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("upstream failure hides details by default", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("quota exceeded for project")}
		h := NewHandler(gen, DefaultMaxHistory, false)

		w := postChat(h, `{"message":"hi"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "quota") {
			t.Errorf("upstream error leaked outside debug mode: %s", w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "an error occurred with the AI service") {
			t.Errorf("expected generic error message: %s", w.Body.String())
		}
	})

	t.Run("debug mode includes details", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("quota exceeded for project")}
		h := NewHandler(gen, DefaultMaxHistory, true)

		w := postChat(h, `{"message":"hi"}`)
		if !strings.Contains(w.Body.String(), "quota exceeded") {
			t.Errorf("expected details in debug mode: %s", w.Body.String())
		}
	})
}

func TestTrimHistory(t *testing.T) {
	turn := func(role string) Turn { return Turn{Role: role, Content: "x"} }

	t.Run("keeps the most recent turns", func(t *testing.T) {
		history := make([]Turn, 0, 14)
		for i := 0; i < 14; i++ {
			if i%2 == 0 {
				history = append(history, turn("user"))
			} else {
				history = append(history, turn("assistant"))
			}
		}

		got := trimHistory(history, 10)
		if len(got) != 10 {
			t.Fatalf("expected 10 turns, got %d", len(got))
		}
		if got[0].Role != "user" {
			t.Errorf("trimmed history must start with a user turn, got %q", got[0].Role)
		}
	})

	t.Run("drops leading assistant turns", func(t *testing.T) {
		history := []Turn{turn("assistant"), turn("assistant"), turn("user"), turn("assistant")}
		got := trimHistory(history, 10)
		if len(got) != 2 || got[0].Role != "user" {
			t.Errorf("leading assistant turns should be dropped: %+v", got)
		}
	})

	t.Run("all-assistant history becomes empty", func(t *testing.T) {
		got := trimHistory([]Turn{turn("assistant"), turn("assistant")}, 10)
		if len(got) != 0 {
			t.Errorf("expected empty history, got %+v", got)
		}
	})
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubGenerator{}, DefaultMaxHistory, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "moneywise-aiproxy") {
		t.Errorf("health payload should name the service: %s", w.Body.String())
	}
}
