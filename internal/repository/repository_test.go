package repository

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/moneywise/moneywise/internal/db"
	"github.com/moneywise/moneywise/internal/model"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func testDB(t *testing.T) (userRepo UserRepository, chatRepo ChatRepository) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Init("sqlite", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewUserRepository(conn), NewChatRepository(conn)
}

func newUser(email string) *model.User {
	return &model.User{
		ID:           uuid.New().String(),
		Name:         "Budi",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUserRepository(t *testing.T) {
	t.Run("create and fetch", func(t *testing.T) {
		users, _ := testDB(t)

		u := newUser("budi@example.com")
		err := users.Create(u)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		byID, err := users.ByID(u.ID)
		if err != nil {
			t.Fatalf("by id: %v", err)
		}
		if byID.Email != u.Email || byID.PasswordHash != u.PasswordHash {
			t.Errorf("fetched user mismatch: %+v", byID)
		}

		byEmail, err := users.ByEmail(u.Email)
		if err != nil {
			t.Fatalf("by email: %v", err)
		}
		if byEmail.ID != u.ID {
			t.Errorf("email lookup returned wrong user: %+v", byEmail)
		}
	})

	t.Run("unknown lookups return not found", func(t *testing.T) {
		users, _ := testDB(t)

		_, err := users.ByID("missing")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
		_, err = users.ByEmail("missing@example.com")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("duplicate email maps the constraint violation", func(t *testing.T) {
		users, _ := testDB(t)

		err := users.Create(newUser("budi@example.com"))
		if err != nil {
			t.Fatalf("first create: %v", err)
		}
		err = users.Create(newUser("budi@example.com"))
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail, got %v", err)
		}
	})
}

func TestChatRepository(t *testing.T) {
	t.Run("append assigns id and timestamp", func(t *testing.T) {
		_, chats := testDB(t)

		m := &model.ChatMessage{UserID: "u1", Role: model.RoleUser, Content: "hello"}
		err := chats.Append(m)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if m.ID == 0 {
			t.Error("expected assigned id")
		}
		if m.Timestamp.IsZero() {
			t.Error("expected assigned timestamp")
		}
	})

	t.Run("history is ordered and per-user", func(t *testing.T) {
		_, chats := testDB(t)

		base := time.Now().UTC().Truncate(time.Second)
		rows := []*model.ChatMessage{
			{UserID: "u1", Role: model.RoleUser, Content: "first", Timestamp: base},
			{UserID: "u1", Role: model.RoleAssistant, Content: "second", Timestamp: base.Add(time.Second)},
			{UserID: "u2", Role: model.RoleUser, Content: "other user", Timestamp: base},
		}
		for _, m := range rows {
			err := chats.Append(m)
			if err != nil {
				t.Fatalf("append: %v", err)
			}
		}

		history, err := chats.ByUser("u1")
		if err != nil {
			t.Fatalf("by user: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(history))
		}
		if history[0].Content != "first" || history[1].Content != "second" {
			t.Errorf("history out of order: %q, %q", history[0].Content, history[1].Content)
		}
	})

	t.Run("identical timestamps keep insert order", func(t *testing.T) {
		_, chats := testDB(t)

		ts := time.Now().UTC().Truncate(time.Second)
		for _, content := range []string{"a", "b", "c"} {
			err := chats.Append(&model.ChatMessage{UserID: "u1", Role: model.RoleUser, Content: content, Timestamp: ts})
			if err != nil {
				t.Fatalf("append: %v", err)
			}
		}

		history, err := chats.ByUser("u1")
		if err != nil {
			t.Fatalf("by user: %v", err)
		}
		got := []string{history[0].Content, history[1].Content, history[2].Content}
		want := []string{"a", "b", "c"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("tie-broken order wrong: got %v, want %v", got, want)
			}
		}
	})

	t.Run("no history is an empty slice", func(t *testing.T) {
		_, chats := testDB(t)

		history, err := chats.ByUser("nobody")
		if err != nil {
			t.Fatalf("by user: %v", err)
		}
		if history == nil || len(history) != 0 {
			t.Errorf("expected empty slice, got %v", history)
		}
	})
}
