package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moneywise/moneywise/internal/model"
)

func TestClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "budi@example.com" {
			t.Errorf("email not sent: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]string{"id": "u1", "name": "Budi"},
			"token":   "jwt-token",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, server.URL)
	creds, err := c.Login(context.Background(), "budi@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if creds.ID != "u1" || creds.Name != "Budi" || creds.Token != "jwt-token" {
		t.Errorf("credentials mismatch: %+v", creds)
	}
}

func TestClientLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "invalid credentials"})
	}))
	defer server.Close()

	c := NewClient(server.URL, server.URL)
	_, err := c.Login(context.Background(), "budi@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("server error message should surface: %v", err)
	}
}

func TestClientHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.URL.Query().Get("user_id") != "u1" {
			t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"role": "user", "content": "hi", "timestamp": "2026-01-02T03:04:05Z"},
			{"role": "assistant", "content": "hello", "timestamp": "garbage"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, server.URL)
	messages, err := c.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].SyncStatus != model.SyncConfirmed {
		t.Errorf("server history should be confirmed: %+v", messages[0])
	}
	if messages[0].ID == "" || messages[0].ID == messages[1].ID {
		t.Error("history entries should get distinct local ids")
	}
	// The second entry has an unparsable timestamp; it still loads
	if messages[1].Content != "hello" {
		t.Errorf("lenient timestamp handling lost the message: %+v", messages[1])
	}
}

func TestClientSendTrimsHistory(t *testing.T) {
	var received proxyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer server.Close()

	history := make([]model.CompanionMessage, 0, 15)
	for i := 0; i < 15; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.CompanionMessage{Role: role, Content: "turn"})
	}

	c := NewClient(server.URL, server.URL)
	reply, err := c.Send(context.Background(), "question", history)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply != "ok" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(received.History) != maxProxyHistory {
		t.Errorf("expected %d history turns on the wire, got %d", maxProxyHistory, len(received.History))
	}
}
