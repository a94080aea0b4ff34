package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deepanshu089/suprathon/internal/models"
)

type ChatMessageRepository interface {
	Save(ctx context.Context, message *models.ChatMessage) error
	FindBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type chatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

// Save implements ChatMessageRepository.
func (r *chatMessageRepository) Save(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// FindBySession implements ChatMessageRepository. It returns the latest limit
// messages, oldest first.
func (r *chatMessageRepository) FindBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find chat messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
