package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/agentmart/relay-service/internal/audit"
	"github.com/agentmart/relay-service/internal/domain"
	"github.com/agentmart/relay-service/internal/events"
	"github.com/agentmart/relay-service/internal/hub"
	"github.com/agentmart/relay-service/internal/presence"
	"github.com/agentmart/relay-service/internal/repository"
	"github.com/agentmart/relay-service/pkg/log"
)

const notificationBodyLimit = 200

type relayService struct {
	hub      *hub.Hub
	store    repository.Store
	tokens   TokenValidator
	presence presence.Registry      // optional mirror, may be nil
	producer events.ActivityProducer // optional analytics feed, may be nil
}

func NewRelayService(
	h *hub.Hub,
	store repository.Store,
	tokens TokenValidator,
	reg presence.Registry,
	producer events.ActivityProducer,
) RelayService {
	return &relayService{
		hub:      h,
		store:    store,
		tokens:   tokens,
		presence: reg,
		producer: producer,
	}
}

// HandleAuthenticate resolves the credential token to an identity. On
// success the connection joins its per-user group (and the admin group
// for admins). On failure the connection is terminated; there is no
// retry on this path.
func (s *relayService) HandleAuthenticate(ctx context.Context, c *hub.Client, token string) error {
	// Re-authenticating would double-count the connection in the presence
	// mirror with only one disconnect to drain it.
	if c.State.IsAuthenticated() {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Already authenticated"))
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		c.SendEvent(&domain.AuthErrorEvent{
			Type:    domain.EventAuthError,
			Message: "invalid credentials",
		})
		audit.Log(ctx, audit.ActionAuthFailed, "", "authentication failed")
		s.hub.Unregister(c)
		return fmt.Errorf("authentication failed: %w", err)
	}

	c.State.Authenticate(claims.UserID, claims.Username, claims.Role)
	s.hub.Join(c, hub.UserGroup(claims.UserID))
	if claims.Role == domain.RoleAdmin {
		s.hub.Join(c, hub.AdminGroup)
	}

	if s.presence != nil {
		if err := s.presence.ConnectionOpened(ctx, claims.UserID); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Str(log.FieldUserID, claims.UserID).Err(err).Msg("failed to mirror presence")
		}
	}

	audit.Log(ctx, audit.ActionAuth, claims.UserID, "connection authenticated")
	return c.SendEvent(&domain.AuthenticatedEvent{
		Type:     domain.EventAuthenticated,
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
}

// HandleJoinChat subscribes the connection to a chat session's room after
// the ownership check: buyer, assigned seller, or any admin.
func (s *relayService) HandleJoinChat(ctx context.Context, c *hub.Client, chatSessionID uint) error {
	if !c.State.IsAuthenticated() {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotAuthenticated, "Not authenticated"))
	}

	session, err := s.store.FindSessionByID(ctx, chatSessionID)
	if err == repository.ErrNotFound {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotFound, "Chat session not found"))
	}
	if err != nil {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "Failed to load chat session"))
	}

	userID := c.State.GetUserID()
	if !c.State.IsAdmin() && !session.Participant(userID) {
		audit.LogWithDetail(ctx, audit.ActionJoinDenied, userID, hub.ChatGroup(chatSessionID), "join denied")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeAccessDenied, "Not a participant of this chat"))
	}

	s.hub.Join(c, hub.ChatGroup(chatSessionID))
	c.State.JoinChat(chatSessionID)

	audit.LogWithDetail(ctx, audit.ActionJoinChat, userID, hub.ChatGroup(chatSessionID), "joined chat")
	return c.SendEvent(&domain.JoinedChatEvent{
		Type:          domain.EventJoinedChat,
		ChatSessionID: chatSessionID,
	})
}

// HandleLeaveChat removes the connection from the room. No-op when the
// connection never joined.
func (s *relayService) HandleLeaveChat(ctx context.Context, c *hub.Client, chatSessionID uint) error {
	if !c.State.IsAuthenticated() {
		return nil
	}

	s.hub.Leave(c, hub.ChatGroup(chatSessionID))
	c.State.LeaveChat(chatSessionID)

	audit.LogWithDetail(ctx, audit.ActionLeaveChat, c.State.GetUserID(), hub.ChatGroup(chatSessionID), "left chat")
	return nil
}

// HandleSendMessage persists the message, then fans it out. The persisted
// write is the authoritative ordering point; everything after it is
// independently best-effort.
func (s *relayService) HandleSendMessage(ctx context.Context, c *hub.Client, ev *domain.SendMessageEvent) error {
	if !c.State.IsAuthenticated() {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotAuthenticated, "Not authenticated"))
	}

	if ev.Content == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Empty message content"))
	}
	contentType := ev.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeText
	}
	if !domain.IsValidContentType(contentType) {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown content type"))
	}

	session, err := s.store.FindSessionByID(ctx, ev.ChatSessionID)
	if err == repository.ErrNotFound {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotFound, "Chat session not found"))
	}
	if err != nil {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "Failed to load chat session"))
	}

	userID := c.State.GetUserID()
	msg := &domain.ChatMessage{
		ChatSessionID: ev.ChatSessionID,
		SenderID:      userID,
		SenderName:    c.State.GetUsername(),
		Content:       ev.Content,
		ContentType:   contentType,
		CreatedAt:     time.Now(),
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		l := log.Ctx(ctx)
		l.Error().Uint(log.FieldChatSessionID, ev.ChatSessionID).Err(err).Msg("failed to persist message")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "Failed to send message"))
	}

	if err := s.store.UpdateSessionActivity(ctx, session.ID, msg.ID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Uint(log.FieldChatSessionID, session.ID).Err(err).Msg("failed to update session activity")
	}

	s.hub.Broadcast(hub.ChatGroup(session.ID), &domain.NewMessageEvent{
		Type:    domain.EventNewMessage,
		Message: msg.Payload(),
	}, "")

	if s.producer != nil {
		if err := s.producer.ProduceMessage(ctx, msg); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Uint(log.FieldMessageID, msg.ID).Err(err).Msg("failed to produce activity event")
		}
	}

	s.notifyOtherParty(ctx, session, msg)

	audit.LogWithDetail(ctx, audit.ActionSendMessage, userID, hub.ChatGroup(session.ID), "message sent")
	return nil
}

// notifyOtherParty covers the offline half of delivery. If the message's
// counterpart has no live connection, a notification record is written as
// an asynchronous fallback. The check-then-act window is a known race and
// accepted for a best-effort chat. Sessions without an assigned seller
// instead alert the admin group so someone can claim the conversation.
func (s *relayService) notifyOtherParty(ctx context.Context, session *domain.ChatSession, msg *domain.ChatMessage) {
	other := session.OtherParty(msg.SenderID)
	if other == "" {
		s.hub.Broadcast(hub.AdminGroup, &domain.SupportRequestEvent{
			Type:          domain.EventSupportRequest,
			ChatSessionID: session.ID,
			MessageID:     msg.ID,
			SenderName:    msg.SenderName,
		}, "")
		return
	}

	if s.hub.GroupCount(hub.UserGroup(other)) > 0 {
		return
	}

	body := truncateBody(msg.Content)
	notification := &domain.Notification{
		UserID: other,
		Type:   domain.NotificationTypeChatMessage,
		Title:  fmt.Sprintf("New message from %s", msg.SenderName),
		Body:   body,
		Payload: map[string]interface{}{
			"chat_session_id": session.ID,
			"message_id":      msg.ID,
		},
	}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		// Live delivery already happened; failing the fallback is non-fatal
		// and never surfaced to the sender.
		l := log.Ctx(ctx)
		l.Error().Str(log.FieldUserID, other).Err(err).Msg("failed to create fallback notification")
	}
}

// HandleTypingStart broadcasts an ephemeral typing signal to the other
// room subscribers. Expiry is on the client (3s quiescence); the relay
// never emits a synthetic stop.
func (s *relayService) HandleTypingStart(ctx context.Context, c *hub.Client, chatSessionID uint) error {
	return s.broadcastTyping(c, chatSessionID, domain.EventUserTyping)
}

// HandleTypingStop broadcasts the explicit stop signal.
func (s *relayService) HandleTypingStop(ctx context.Context, c *hub.Client, chatSessionID uint) error {
	return s.broadcastTyping(c, chatSessionID, domain.EventUserStoppedTyping)
}

func (s *relayService) broadcastTyping(c *hub.Client, chatSessionID uint, eventType string) error {
	if !c.State.IsAuthenticated() {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeNotAuthenticated, "Not authenticated"))
	}

	return s.hub.Broadcast(hub.ChatGroup(chatSessionID), &domain.TypingNotice{
		Type:          eventType,
		ChatSessionID: chatSessionID,
		UserID:        c.State.GetUserID(),
		Username:      c.State.GetUsername(),
	}, c.ID)
}

// HandleDisconnect runs after the read pump has torn the connection down
// and the hub has already dropped its memberships.
func (s *relayService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	if !c.State.IsAuthenticated() {
		return nil
	}

	userID := c.State.GetUserID()
	if s.presence != nil {
		if err := s.presence.ConnectionClosed(ctx, userID); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Str(log.FieldUserID, userID).Err(err).Msg("failed to mirror disconnect")
		}
	}

	audit.Log(ctx, audit.ActionDisconnect, userID, "connection closed")
	return nil
}

// truncateBody caps the notification preview, backing off to a rune
// boundary so the stored body stays valid UTF-8.
func truncateBody(content string) string {
	if len(content) <= notificationBodyLimit {
		return content
	}
	cut := notificationBodyLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
