package domain

import (
	"time"

	"github.com/agentmart/relay-service/pkg/database"
)

// Roles carried by marketplace session tokens.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Message content types.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
	ContentTypeFile  = "file"
)

// IsValidContentType reports whether t is an accepted message content type.
func IsValidContentType(t string) bool {
	switch t {
	case ContentTypeText, ContentTypeImage, ContentTypeFile:
		return true
	}
	return false
}

// ChatSession is a persistent conversation between a buyer and the seller
// of a listing. Created by the marketplace application; the relay only
// touches last-activity bookkeeping.
type ChatSession struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	BuyerID        string    `gorm:"size:36;not null;index" json:"buyer_id"`
	SellerID       *string   `gorm:"size:36;index" json:"seller_id,omitempty"`
	LastMessageID  *uint     `json:"last_message_id,omitempty"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// Participant reports whether userID is the buyer or the assigned seller.
func (s *ChatSession) Participant(userID string) bool {
	if s.BuyerID == userID {
		return true
	}
	return s.SellerID != nil && *s.SellerID == userID
}

// OtherParty returns the counterpart of senderID in this session, or ""
// when the sender is the buyer and no seller has been assigned yet.
func (s *ChatSession) OtherParty(senderID string) string {
	if senderID == s.BuyerID {
		if s.SellerID == nil {
			return ""
		}
		return *s.SellerID
	}
	return s.BuyerID
}

// ChatMessage is an immutable message record. The auto-increment ID is
// the authoritative ordering within a session.
type ChatMessage struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ChatSessionID uint      `gorm:"not null;index" json:"chat_session_id"`
	SenderID      string    `gorm:"size:36;not null" json:"sender_id"`
	SenderName    string    `gorm:"size:100;not null" json:"sender_name"`
	Content       string    `gorm:"size:4000;not null" json:"content"`
	ContentType   string    `gorm:"size:16;not null;default:text" json:"content_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// Payload converts the record into its wire representation.
func (m *ChatMessage) Payload() MessagePayload {
	return MessagePayload{
		ID:            m.ID,
		ChatSessionID: m.ChatSessionID,
		SenderID:      m.SenderID,
		SenderName:    m.SenderName,
		Content:       m.Content,
		ContentType:   m.ContentType,
		Timestamp:     m.CreatedAt.Unix(),
	}
}

// Notification types.
const (
	NotificationTypeChatMessage = "chat_message"
)

// Notification is the stored fallback for recipients with no live
// connection. The read flag is flipped by the notifications API, never
// by the relay.
type Notification struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	UserID    string           `gorm:"size:36;not null;index" json:"user_id"`
	Type      string           `gorm:"size:32;not null" json:"type"`
	Title     string           `gorm:"size:200;not null" json:"title"`
	Body      string           `gorm:"size:500" json:"body"`
	Payload   database.JSONMap `json:"payload,omitempty"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
