package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneywise/moneywise/internal/model"
)

// Store is the single in-memory source of truth for the active user's domain
// data. Every mutation updates memory synchronously, then fires a best-effort
// write to the user's storage namespace; a failed write is logged and never
// rolls back the in-memory change. AI messages additionally sync to the
// server-side chat log (see AppendAIMessage).
//
// Two Store instances sharing one namespace (e.g. two tabs for the same user)
// overwrite each other last-write-wins; there is no merge or conflict
// detection.
type Store struct {
	mu sync.Mutex

	ns   *Namespace
	auth AuthAPI
	chat ChatAPI

	profile *model.Profile
	state   PersistedState
}

func New(ns *Namespace, auth AuthAPI, chat ChatAPI) *Store {
	return &Store{
		ns:    ns,
		auth:  auth,
		chat:  chat,
		state: DefaultState(),
	}
}

// Profile returns the active user, or nil while anonymous.
func (s *Store) Profile() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil
	}
	copied := *s.profile
	return &copied
}

// ---------------------------------------------------------------------------
// Session lifecycle

// Login authenticates against the auth gateway and enters the Authenticated
// state: the session record is persisted, the user's namespaced data is
// loaded into memory, and the server-side chat history replaces the local
// message list when the fetch succeeds.
func (s *Store) Login(ctx context.Context, email, password string) error {
	creds, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return s.establishSession(ctx, creds, email)
}

// Register creates an account and enters the Authenticated state the same
// way Login does.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	creds, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	return s.establishSession(ctx, creds, email)
}

// Resume restores the Authenticated state from a previously saved session
// record, if one exists. Returns false when no session is stored.
func (s *Store) Resume(ctx context.Context) (bool, error) {
	profile := s.ns.LoadSession()
	if profile == nil {
		return false, nil
	}

	s.mu.Lock()
	s.profile = profile
	state, err := s.ns.LoadUserData(profile.ID)
	if err != nil {
		slog.Warn("failed to load user data, starting from defaults", "error", err, "user_id", profile.ID)
	}
	s.state = state
	s.mu.Unlock()

	s.refreshChatHistory(ctx)
	return true, nil
}

// Logout returns to the Anonymous state. The session record is cleared and
// memory resets to defaults; the user's namespaced data stays on disk and is
// recovered on the next login.
func (s *Store) Logout() {
	err := s.ns.ClearSession()
	if err != nil {
		slog.Warn("failed to clear session", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.state = DefaultState()
}

func (s *Store) establishSession(ctx context.Context, creds Credentials, email string) error {
	profile := NewProfile(creds.ID, creds.Name, email)

	err := s.ns.SaveSession(profile)
	if err != nil {
		slog.Warn("failed to persist session record", "error", err, "user_id", creds.ID)
	}

	s.mu.Lock()
	s.profile = profile
	state, err := s.ns.LoadUserData(creds.ID)
	if err != nil {
		slog.Warn("failed to load user data, starting from defaults", "error", err, "user_id", creds.ID)
	}
	s.state = state
	// Personality follows the stored preference of this user's data
	profile.Preferences.AIPersonality = state.AICompanion.Personality
	s.mu.Unlock()

	s.refreshChatHistory(ctx)
	return nil
}

// refreshChatHistory replaces (not appends to) the in-memory message list
// with the server-side log. A failed fetch keeps the local list.
func (s *Store) refreshChatHistory(ctx context.Context) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	userID := s.profile.ID
	s.mu.Unlock()

	messages, err := s.chat.History(ctx, userID)
	if err != nil {
		slog.Warn("failed to fetch chat history", "error", err, "user_id", userID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || s.profile.ID != userID {
		return
	}
	s.state.AICompanion.Messages = messages
	s.persistLocked()
}

// ---------------------------------------------------------------------------
// Transactions

func (s *Store) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Transaction, len(s.state.Transactions))
	copy(out, s.state.Transactions)
	return out
}

func (s *Store) AddTransaction(t model.Transaction) model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.New().String()
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	s.state.Transactions = append(s.state.Transactions, t)
	s.persistLocked()
	return t
}

func (s *Store) UpdateTransaction(id string, update func(*model.Transaction)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Transactions {
		if s.state.Transactions[i].ID == id {
			update(&s.state.Transactions[i])
			s.state.Transactions[i].ID = id
			s.persistLocked()
			return true
		}
	}
	return false
}

func (s *Store) DeleteTransaction(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Transactions {
		if s.state.Transactions[i].ID == id {
			s.state.Transactions = append(s.state.Transactions[:i], s.state.Transactions[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Budgets

func (s *Store) Budgets() []model.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Budget, len(s.state.Budgets))
	copy(out, s.state.Budgets)
	return out
}

func (s *Store) AddBudget(b model.Budget) model.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = uuid.New().String()
	s.state.Budgets = append(s.state.Budgets, b)
	s.persistLocked()
	return b
}

func (s *Store) UpdateBudget(id string, update func(*model.Budget)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Budgets {
		if s.state.Budgets[i].ID == id {
			update(&s.state.Budgets[i])
			s.state.Budgets[i].ID = id
			s.persistLocked()
			return true
		}
	}
	return false
}

func (s *Store) DeleteBudget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Budgets {
		if s.state.Budgets[i].ID == id {
			s.state.Budgets = append(s.state.Budgets[:i], s.state.Budgets[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Goals

func (s *Store) Goals() []model.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Goal, len(s.state.Goals))
	copy(out, s.state.Goals)
	return out
}

func (s *Store) AddGoal(g model.Goal) model.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = uuid.New().String()
	s.state.Goals = append(s.state.Goals, g)
	s.persistLocked()
	return g
}

func (s *Store) UpdateGoal(id string, update func(*model.Goal)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Goals {
		if s.state.Goals[i].ID == id {
			update(&s.state.Goals[i])
			s.state.Goals[i].ID = id
			s.persistLocked()
			return true
		}
	}
	return false
}

func (s *Store) DeleteGoal(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Goals {
		if s.state.Goals[i].ID == id {
			s.state.Goals = append(s.state.Goals[:i], s.state.Goals[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// AddToGoal is the "quick add" action: it increments the goal's current
// amount. Storage keeps the unclamped amount even past the target.
func (s *Store) AddToGoal(id string, amount decimal.Decimal) bool {
	return s.UpdateGoal(id, func(g *model.Goal) {
		g.CurrentAmount = g.CurrentAmount.Add(amount)
	})
}

// ---------------------------------------------------------------------------
// Social circles

func (s *Store) SocialCircles() []model.SocialCircle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SocialCircle, len(s.state.SocialCircles))
	copy(out, s.state.SocialCircles)
	return out
}

func (s *Store) AddSocialCircle(c model.SocialCircle) model.SocialCircle {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New().String()
	if c.Members == nil {
		c.Members = []model.Member{}
	}
	if c.Challenges == nil {
		c.Challenges = []model.Challenge{}
	}
	s.state.SocialCircles = append(s.state.SocialCircles, c)
	s.persistLocked()
	return c
}

func (s *Store) AddChallenge(circleID string, ch model.Challenge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.SocialCircles {
		if s.state.SocialCircles[i].ID == circleID {
			ch.ID = uuid.New().String()
			s.state.SocialCircles[i].Challenges = append(s.state.SocialCircles[i].Challenges, ch)
			s.persistLocked()
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Preferences

// UpdatePreferences updates the session user's settings bundle. The AI
// personality preference is mirrored into the companion state so both stay
// consistent.
func (s *Store) UpdatePreferences(p model.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return
	}

	s.profile.Preferences = p
	if p.AIPersonality != "" {
		s.state.AICompanion.Personality = p.AIPersonality
	}

	err := s.ns.SaveSession(s.profile)
	if err != nil {
		slog.Warn("failed to persist session record", "error", err, "user_id", s.profile.ID)
	}
	s.persistLocked()
}

func (s *Store) SetAIPersonality(personality string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AICompanion.Personality = personality
	if s.profile != nil {
		s.profile.Preferences.AIPersonality = personality
		err := s.ns.SaveSession(s.profile)
		if err != nil {
			slog.Warn("failed to persist session record", "error", err, "user_id", s.profile.ID)
		}
	}
	s.persistLocked()
}

// ---------------------------------------------------------------------------
// AI companion

func (s *Store) AICompanion() model.AICompanion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := model.AICompanion{
		Personality: s.state.AICompanion.Personality,
		Messages:    make([]model.CompanionMessage, len(s.state.AICompanion.Messages)),
	}
	copy(out.Messages, s.state.AICompanion.Messages)
	return out
}

// AppendAIMessage is the one mutation that also syncs remotely: the message
// lands in memory first (optimistic), then goes to the chat-history service.
// A network failure marks it failed and logs, but never retracts the
// optimistically appended message; the visible conversation may diverge from
// the server log until FlushOutbox reconciles it.
func (s *Store) AppendAIMessage(ctx context.Context, role, content, messageType string) model.CompanionMessage {
	message := model.CompanionMessage{
		ID:         uuid.New().String(),
		Role:       role,
		Content:    content,
		Timestamp:  time.Now(),
		Type:       messageType,
		SyncStatus: model.SyncPending,
	}

	s.mu.Lock()
	if s.profile == nil {
		message.SyncStatus = ""
		s.state.AICompanion.Messages = append(s.state.AICompanion.Messages, message)
		s.mu.Unlock()
		return message
	}
	userID := s.profile.ID
	s.state.AICompanion.Messages = append(s.state.AICompanion.Messages, message)
	s.persistLocked()
	s.mu.Unlock()

	err := s.chat.Append(ctx, userID, role, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	status := model.SyncConfirmed
	if err != nil {
		slog.Warn("failed to sync chat message", "error", err, "user_id", userID)
		status = model.SyncFailed
	}
	s.setMessageStatus(message.ID, status)
	message.SyncStatus = status
	s.persistLocked()
	return message
}

// SendChatMessage appends the user's message, asks the AI proxy for a reply
// with the most recent turns as context, and appends the assistant's answer.
// A proxy failure becomes a visible assistant message instead of an error;
// the conversation never crashes.
func (s *Store) SendChatMessage(ctx context.Context, content string) model.CompanionMessage {
	s.mu.Lock()
	history := make([]model.CompanionMessage, len(s.state.AICompanion.Messages))
	copy(history, s.state.AICompanion.Messages)
	s.mu.Unlock()

	s.AppendAIMessage(ctx, model.RoleUser, content, "")

	reply, err := s.chat.Send(ctx, content, history)
	if err != nil {
		slog.Warn("ai proxy request failed", "error", err)
		// Local-only notice; the failure is not part of the durable log
		return s.appendLocalMessage(model.RoleAssistant,
			"Sorry, I couldn't reach the assistant service. Please try again in a moment.",
			model.MessageWarning)
	}

	return s.AppendAIMessage(ctx, model.RoleAssistant, reply, "")
}

// GenerateInsight appends a scripted, personality-dependent tip derived from
// the current collections. Insights are local-only; they are not written to
// the server-side chat log.
func (s *Store) GenerateInsight() model.CompanionMessage {
	s.mu.Lock()
	insight := generateInsight(s.state)
	s.mu.Unlock()

	return s.appendLocalMessage(model.RoleAssistant, insight.Content, insight.Type)
}

// FlushOutbox retries messages whose remote sync failed. It is an on-demand
// reconciliation pass; nothing retries automatically.
func (s *Store) FlushOutbox(ctx context.Context) int {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return 0
	}
	userID := s.profile.ID
	var failed []model.CompanionMessage
	for _, m := range s.state.AICompanion.Messages {
		if m.SyncStatus == model.SyncFailed {
			failed = append(failed, m)
		}
	}
	s.mu.Unlock()

	flushed := 0
	for _, m := range failed {
		err := s.chat.Append(ctx, userID, m.Role, m.Content)
		if err != nil {
			slog.Warn("outbox retry failed", "error", err, "message_id", m.ID)
			continue
		}
		s.mu.Lock()
		s.setMessageStatus(m.ID, model.SyncConfirmed)
		s.persistLocked()
		s.mu.Unlock()
		flushed++
	}

	return flushed
}

func (s *Store) appendLocalMessage(role, content, messageType string) model.CompanionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := model.CompanionMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Type:      messageType,
	}
	s.state.AICompanion.Messages = append(s.state.AICompanion.Messages, message)
	s.persistLocked()
	return message
}

func (s *Store) setMessageStatus(id, status string) {
	for i := range s.state.AICompanion.Messages {
		if s.state.AICompanion.Messages[i].ID == id {
			s.state.AICompanion.Messages[i].SyncStatus = status
			return
		}
	}
}

// persistLocked fires the best-effort storage write for the active user.
// Callers hold s.mu. Anonymous state is never persisted.
func (s *Store) persistLocked() {
	if s.profile == nil {
		return
	}
	err := s.ns.SaveUserData(s.profile.ID, s.state)
	if err != nil {
		slog.Warn("failed to persist user data", "error", err, "user_id", s.profile.ID)
	}
}
