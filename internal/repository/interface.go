package repository

import (
	"context"
	"errors"

	"github.com/agentmart/relay-service/internal/domain"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary of the relay. Messages and
// notifications are created here; chat sessions are created by the
// marketplace application and only read or touched by the relay.
type Store interface {
	FindSessionByID(ctx context.Context, id uint) (*domain.ChatSession, error)
	CreateMessage(ctx context.Context, msg *domain.ChatMessage) error
	UpdateSessionActivity(ctx context.Context, chatSessionID, lastMessageID uint) error
	CreateNotification(ctx context.Context, n *domain.Notification) error

	ListMessages(ctx context.Context, chatSessionID uint, beforeID uint, limit int) ([]domain.ChatMessage, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, id uint) error
}
