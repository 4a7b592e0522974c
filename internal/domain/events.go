package domain

// WebSocket event types from client.
const (
	EventAuthenticate = "authenticate"
	EventJoinChat     = "join_chat"
	EventLeaveChat    = "leave_chat"
	EventSendMessage  = "send_message"
	EventTypingStart  = "typing_start"
	EventTypingStop   = "typing_stop"
)

// WebSocket event types to client.
const (
	EventAuthenticated     = "authenticated"
	EventAuthError         = "auth_error"
	EventJoinedChat        = "joined_chat"
	EventNewMessage        = "new_message"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventSupportRequest    = "support_request"
	EventError             = "error"
)

// Error codes
const (
	ErrCodeNotAuthenticated = "NOT_AUTHENTICATED"
	ErrCodeAccessDenied     = "ACCESS_DENIED"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// BaseEvent carries the type discriminator shared by all inbound events.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

type AuthenticateEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type JoinChatEvent struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
}

type LeaveChatEvent struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
}

type SendMessageEvent struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
	Content       string `json:"content"`
	ContentType   string `json:"content_type"`
}

type TypingEvent struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
}

// Server -> Client events

type AuthenticatedEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type JoinedChatEvent struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
}

// MessagePayload is the resolved message carried by new_message events.
type MessagePayload struct {
	ID            uint   `json:"id"`
	ChatSessionID uint   `json:"chat_session_id"`
	SenderID      string `json:"sender_id"`
	SenderName    string `json:"sender_name"`
	Content       string `json:"content"`
	ContentType   string `json:"content_type"`
	Timestamp     int64  `json:"timestamp"`
}

type NewMessageEvent struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

// TypingNotice is broadcast for both user_typing and user_stopped_typing.
type TypingNotice struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
}

// SupportRequestEvent alerts the admin group about activity in a chat
// session that has no assigned seller yet.
type SupportRequestEvent struct {
	Type          string `json:"type"`
	ChatSessionID uint   `json:"chat_session_id"`
	MessageID     uint   `json:"message_id"`
	SenderName    string `json:"sender_name"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EventError,
		Code:    code,
		Message: message,
	}
}
