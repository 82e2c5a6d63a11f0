package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront-identity/internal/domain/message"
	"storefront-identity/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) message.Repository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *message.Message) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	msg.IsRead = false

	if err := r.db.DB.WithContext(ctx).Create(toMessageModel(msg)).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) List(ctx context.Context) ([]*message.Message, error) {
	var dbModels []models.MessageModel
	if err := r.db.DB.WithContext(ctx).Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*message.Message, len(dbModels))
	for i := range dbModels {
		messages[i] = toMessageEntity(&dbModels[i])
	}
	return messages, nil
}

func (r *MessageRepository) MarkAsRead(ctx context.Context, id string) (*message.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, message.ErrMessageNotFound
	}

	var dbModel models.MessageModel
	result := r.db.DB.WithContext(ctx).
		Model(&dbModel).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("is_read", true)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, message.ErrMessageNotFound
	}
	return toMessageEntity(&dbModel), nil
}

func toMessageModel(m *message.Message) *models.MessageModel {
	return &models.MessageModel{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Body:      m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageEntity(m *models.MessageModel) *message.Message {
	return &message.Message{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Body:      m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}
