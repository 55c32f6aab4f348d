package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/moneywise/moneywise/internal/model"
	"github.com/moneywise/moneywise/internal/repository"
)

var ErrInvalidRole = errors.New("role must be user or assistant")

type ChatService struct {
	chatRepository repository.ChatRepository
}

func NewChatService(chatRepository repository.ChatRepository) *ChatService {
	return &ChatService{chatRepository: chatRepository}
}

// History returns a user's messages in ascending timestamp order. A user with
// no history gets an empty slice, never an error.
func (s *ChatService) History(userID string) ([]*model.ChatMessage, error) {
	messages, err := s.chatRepository.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return messages, nil
}

func (s *ChatService) Append(userID, role, content string) (*model.ChatMessage, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	message := &model.ChatMessage{
		UserID:  userID,
		Role:    role,
		Content: content,
	}

	err := s.chatRepository.Append(message)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	slog.Debug("chat message saved", "user_id", userID, "role", role)
	return message, nil
}
