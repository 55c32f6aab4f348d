package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/moneywise/moneywise/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatMessagePayload struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type appendMessageRequest struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

type appendMessageResponse struct {
	Success bool `json:"success"`
}

// History handles GET /chat?user_id=...
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	messages, err := h.chatService.History(userID)
	if err != nil {
		slog.Error("failed to load chat history", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	// Always an array, even with no history
	payload := make([]chatMessagePayload, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, chatMessagePayload{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}

	respondJSON(w, http.StatusOK, payload)
}

// Append handles POST /chat
func (h *ChatHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req appendMessageRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	missing := missingFields(map[string]string{
		"user_id": req.UserID,
		"role":    req.Role,
		"content": req.Content,
	})
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(missing, ", ")+" required")
		return
	}

	_, err = h.chatService.Append(req.UserID, req.Role, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to save chat message", "error", err, "user_id", req.UserID)
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	respondJSON(w, http.StatusOK, appendMessageResponse{Success: true})
}
