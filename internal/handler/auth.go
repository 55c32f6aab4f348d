package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/moneywise/moneywise/internal/ctxkeys"
	"github.com/moneywise/moneywise/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type authResponse struct {
	Success bool        `json:"success"`
	User    userPayload `json:"user"`
	Token   string      `json:"token,omitempty"`
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	missing := missingFields(map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	})
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(missing, ", ")+" required")
		return
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed, please try again")
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "registration failed, please try again")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{
		Success: true,
		User:    userPayload{ID: user.ID, Name: user.Name},
		Token:   token,
	})
}

// Login handles POST /login. Unknown email and wrong password are kept
// distinguishable only by status code (404 vs 401); the body carries the same
// generic message for both so the response never confirms whether an email is
// registered.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	missing := missingFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(missing, ", ")+" required")
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			writeError(w, http.StatusNotFound, "invalid credentials")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			slog.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed, please try again")
		}
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "login failed, please try again")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		Success: true,
		User:    userPayload{ID: user.ID, Name: user.Name},
		Token:   token,
	})
}

// Me handles GET /me, resolving the bearer token attached by the auth
// middleware to the account it belongs to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		Success: true,
		User:    userPayload{ID: user.ID, Name: user.Name},
	})
}

func missingFields(fields map[string]string) []string {
	// Stable order so the error message is deterministic
	order := []string{"name", "email", "password", "user_id", "role", "content"}
	var missing []string
	for _, name := range order {
		value, ok := fields[name]
		if ok && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "too short") ||
		strings.Contains(msg, "too long") ||
		strings.Contains(msg, "at least") ||
		strings.Contains(msg, "exceed") ||
		strings.Contains(msg, "invalid email")
}
