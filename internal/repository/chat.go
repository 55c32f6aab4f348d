package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/moneywise/moneywise/internal/model"
)

// ChatRepository is an append-only log; there is no update or delete.
type ChatRepository interface {
	Append(message *model.ChatMessage) error
	ByUser(userID string) ([]*model.ChatMessage, error)
}

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Append(message *model.ChatMessage) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	query := `INSERT INTO chat_history (user_id, role, content, timestamp) VALUES ($1, $2, $3, $4)`

	result, err := r.db.Exec(query, message.UserID, message.Role, message.Content, message.Timestamp)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err == nil {
		message.ID = id
	}

	return nil
}

func (r *chatRepository) ByUser(userID string) ([]*model.ChatMessage, error) {
	messages := []*model.ChatMessage{}
	query := `SELECT * FROM chat_history WHERE user_id = $1 ORDER BY timestamp ASC, id ASC`

	err := r.db.Select(&messages, query, userID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}
