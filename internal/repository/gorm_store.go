package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agentmart/relay-service/internal/domain"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by a GORM connection.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Migrate runs auto-migration for the relay's models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ChatSession{},
		&domain.ChatMessage{},
		&domain.Notification{},
	)
}

func (s *gormStore) FindSessionByID(ctx context.Context, id uint) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := s.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat session: %w", err)
	}
	return &session, nil
}

func (s *gormStore) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateSessionActivity(ctx context.Context, chatSessionID, lastMessageID uint) error {
	res := s.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ?", chatSessionID).
		Updates(map[string]interface{}{
			"last_message_id":  lastMessageID,
			"last_activity_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update session activity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListMessages returns messages in ascending ID order. beforeID of zero
// means "from the latest"; otherwise only messages older than beforeID
// are returned, which pages backwards through history.
func (s *gormStore) ListMessages(ctx context.Context, chatSessionID uint, beforeID uint, limit int) ([]domain.ChatMessage, error) {
	q := s.db.WithContext(ctx).
		Where("chat_session_id = ?", chatSessionID).
		Order("id DESC").
		Limit(limit)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var messages []domain.ChatMessage
	if err := q.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// Reverse into chronological order for the client.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *gormStore) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *gormStore) MarkNotificationRead(ctx context.Context, userID string, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
