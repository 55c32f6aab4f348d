package model

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a row in the server-side chat log. Ordering is by server
// receipt time; the id breaks ties between messages stored in the same second.
type ChatMessage struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
