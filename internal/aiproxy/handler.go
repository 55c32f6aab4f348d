package aiproxy

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/moneywise/moneywise/internal/middleware"
)

// DefaultMaxHistory caps how many prior turns are forwarded upstream.
const DefaultMaxHistory = 10

type Handler struct {
	generator  Generator
	maxHistory int
	debug      bool
}

// NewHandler wires the proxy endpoint. debug enables the upstream error
// detail in 5xx payloads; keep it off outside development.
func NewHandler(generator Generator, maxHistory int, debug bool) *Handler {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Handler{generator: generator, maxHistory: maxHistory, debug: debug}
}

type chatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type chatError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respond(w, http.StatusBadRequest, chatError{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respond(w, http.StatusBadRequest, chatError{Error: "message is required"})
		return
	}

	history := trimHistory(req.History, h.maxHistory)

	reply, err := h.generator.Generate(r.Context(), req.Message, history)
	if err != nil {
		slog.Error("upstream generation failed", "error", err)
		payload := chatError{Error: "an error occurred with the AI service"}
		if h.debug {
			payload.Details = err.Error()
		}
		respond(w, http.StatusInternalServerError, payload)
		return
	}

	respond(w, http.StatusOK, chatResponse{Response: reply})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "moneywise-aiproxy",
	})
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", h.Chat)
	mux.HandleFunc("GET /health", h.Health)

	return middleware.Chain(
		mux,
		middleware.CORS,
		middleware.RequestLogging,
	)
}

// trimHistory keeps the max most recent turns and drops leading assistant
// turns; the upstream API requires history to begin with a user message.
func trimHistory(history []Turn, max int) []Turn {
	if len(history) > max {
		history = history[len(history)-max:]
	}
	for len(history) > 0 && history[0].Role != "user" {
		history = history[1:]
	}
	return history
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
