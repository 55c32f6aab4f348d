package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/moneywise/moneywise/internal/model"
)

// Credentials is the minimal user record the auth gateway returns.
type Credentials struct {
	ID    string
	Name  string
	Token string
}

// AuthAPI is the auth gateway contract the store depends on.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (Credentials, error)
	Login(ctx context.Context, email, password string) (Credentials, error)
}

// ChatAPI covers both chat backends: the history service (History/Append)
// and the AI proxy (Send).
type ChatAPI interface {
	History(ctx context.Context, userID string) ([]model.CompanionMessage, error)
	Append(ctx context.Context, userID, role, content string) error
	Send(ctx context.Context, message string, history []model.CompanionMessage) (string, error)
}

// Client talks to the MoneyWise API server and the AI proxy over HTTP.
type Client struct {
	apiURL string
	aiURL  string
	http   *http.Client
}

func NewClient(apiURL, aiURL string) *Client {
	return &Client{
		apiURL: apiURL,
		aiURL:  aiURL,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

type authPayload struct {
	Success bool `json:"success"`
	User    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Token string `json:"token"`
	Error string `json:"error"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (Credentials, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var payload authPayload
	err := c.post(ctx, c.apiURL+"/register", body, &payload)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{ID: payload.User.ID, Name: payload.User.Name, Token: payload.Token}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	var payload authPayload
	err := c.post(ctx, c.apiURL+"/login", body, &payload)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{ID: payload.User.ID, Name: payload.User.Name, Token: payload.Token}, nil
}

type historyEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) History(ctx context.Context, userID string) ([]model.CompanionMessage, error) {
	endpoint := c.apiURL + "/chat?user_id=" + url.QueryEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat history request failed with status %d", resp.StatusCode)
	}

	var entries []historyEntry
	err = json.NewDecoder(resp.Body).Decode(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chat history: %w", err)
	}

	messages := make([]model.CompanionMessage, 0, len(entries))
	for _, e := range entries {
		timestamp, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			timestamp = time.Now()
		}
		messages = append(messages, model.CompanionMessage{
			ID:         uuid.New().String(),
			Role:       e.Role,
			Content:    e.Content,
			Timestamp:  timestamp,
			SyncStatus: model.SyncConfirmed,
		})
	}

	return messages, nil
}

func (c *Client) Append(ctx context.Context, userID, role, content string) error {
	body := map[string]string{"user_id": userID, "role": role, "content": content}

	var payload struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	return c.post(ctx, c.apiURL+"/chat", body, &payload)
}

type proxyRequest struct {
	Message string      `json:"message"`
	History []proxyTurn `json:"history"`
}

type proxyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// maxProxyHistory matches the proxy contract: at most the 10 most recent
// turns accompany each message.
const maxProxyHistory = 10

func (c *Client) Send(ctx context.Context, message string, history []model.CompanionMessage) (string, error) {
	if len(history) > maxProxyHistory {
		history = history[len(history)-maxProxyHistory:]
	}

	req := proxyRequest{Message: message, History: make([]proxyTurn, 0, len(history))}
	for _, m := range history {
		req.History = append(req.History, proxyTurn{Role: m.Role, Content: m.Content})
	}

	var payload struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	err := c.post(ctx, c.aiURL+"/chat", req, &payload)
	if err != nil {
		return "", err
	}

	return payload.Response, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&failure)
		if decodeErr == nil && failure.Error != "" {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, failure.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
