package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agentmart/relay-service/internal/domain"
	"github.com/agentmart/relay-service/pkg/database"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedSession(t *testing.T, db *gorm.DB, buyerID string, sellerID *string) *domain.ChatSession {
	t.Helper()
	session := &domain.ChatSession{
		BuyerID:        buyerID,
		SellerID:       sellerID,
		LastActivityAt: time.Now(),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func strPtr(s string) *string { return &s }

func TestFindSessionByID(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	seeded := seedSession(t, db, "buyer-1", strPtr("seller-1"))

	session, err := store.FindSessionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindSessionByID() error = %v", err)
	}
	if session.BuyerID != "buyer-1" {
		t.Errorf("BuyerID = %q, want buyer-1", session.BuyerID)
	}
	if session.SellerID == nil || *session.SellerID != "seller-1" {
		t.Errorf("SellerID = %v, want seller-1", session.SellerID)
	}

	if _, err := store.FindSessionByID(ctx, 9999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateMessageAndUpdateActivity(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	session := seedSession(t, db, "buyer-1", strPtr("seller-1"))

	msg := &domain.ChatMessage{
		ChatSessionID: session.ID,
		SenderID:      "buyer-1",
		SenderName:    "Alice",
		Content:       "hello",
		ContentType:   domain.ContentTypeText,
	}
	if err := store.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("message ID not assigned")
	}

	if err := store.UpdateSessionActivity(ctx, session.ID, msg.ID); err != nil {
		t.Fatalf("UpdateSessionActivity() error = %v", err)
	}

	updated, err := store.FindSessionByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("FindSessionByID() error = %v", err)
	}
	if updated.LastMessageID == nil || *updated.LastMessageID != msg.ID {
		t.Errorf("LastMessageID = %v, want %d", updated.LastMessageID, msg.ID)
	}

	if err := store.UpdateSessionActivity(ctx, 9999, msg.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestListMessagesPagination(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	session := seedSession(t, db, "buyer-1", nil)

	var ids []uint
	for _, content := range []string{"one", "two", "three", "four"} {
		msg := &domain.ChatMessage{
			ChatSessionID: session.ID,
			SenderID:      "buyer-1",
			SenderName:    "Alice",
			Content:       content,
			ContentType:   domain.ContentTypeText,
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage() error = %v", err)
		}
		ids = append(ids, msg.ID)
	}

	latest, err := store.ListMessages(ctx, session.ID, 0, 2)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(latest) != 2 || latest[0].Content != "three" || latest[1].Content != "four" {
		t.Fatalf("unexpected latest page: %+v", latest)
	}

	older, err := store.ListMessages(ctx, session.ID, ids[2], 10)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(older) != 2 || older[0].Content != "one" || older[1].Content != "two" {
		t.Fatalf("unexpected older page: %+v", older)
	}
}

func TestNotificationsLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	n := &domain.Notification{
		UserID: "seller-1",
		Type:   domain.NotificationTypeChatMessage,
		Title:  "New message from Alice",
		Body:   "hello",
		Payload: database.JSONMap{
			"chat_session_id": 1,
			"message_id":      42,
		},
	}
	if err := store.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	list, err := store.ListNotifications(ctx, "seller-1", 10)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(list) != 1 || list[0].Read {
		t.Fatalf("unexpected notifications: %+v", list)
	}
	if list[0].Payload["message_id"] != float64(42) {
		t.Errorf("payload message_id = %v, want 42", list[0].Payload["message_id"])
	}

	if err := store.MarkNotificationRead(ctx, "seller-1", n.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	list, err = store.ListNotifications(ctx, "seller-1", 10)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if !list[0].Read {
		t.Fatal("notification not marked read")
	}

	// A user cannot mark someone else's notification.
	if err := store.MarkNotificationRead(ctx, "buyer-1", n.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
}
