package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agentmart/relay-service/internal/domain"
	"github.com/agentmart/relay-service/internal/repository"
	"github.com/agentmart/relay-service/pkg/middleware"
	"github.com/agentmart/relay-service/pkg/response"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// HTTPHandler serves chat history and notifications for the profile UI.
type HTTPHandler struct {
	store repository.Store
	auth  *middleware.AuthMiddleware
}

func NewHTTPHandler(store repository.Store, auth *middleware.AuthMiddleware) *HTTPHandler {
	return &HTTPHandler{
		store: store,
		auth:  auth,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.auth.RequireAuth())
	{
		api.GET("/chats/:chat_id/messages", h.GetMessages)
		api.GET("/notifications", h.GetNotifications)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)
	}

	r.GET("/health", h.HealthCheck)
}

func (h *HTTPHandler) GetMessages(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid chat id")
		return
	}

	session, err := h.store.FindSessionByID(c.Request.Context(), uint(chatID))
	if err == repository.ErrNotFound {
		response.NotFound(c, "chat session not found")
		return
	}
	if err != nil {
		response.InternalError(c, "failed to load chat session")
		return
	}

	userID := middleware.GetUserID(c)
	if middleware.GetRole(c) != domain.RoleAdmin && !session.Participant(userID) {
		response.Forbidden(c, "not a participant of this chat")
		return
	}

	beforeID, _ := strconv.ParseUint(c.DefaultQuery("before_id", "0"), 10, 32)
	limit := parseLimit(c.DefaultQuery("limit", ""))

	messages, err := h.store.ListMessages(c.Request.Context(), session.ID, uint(beforeID), limit)
	if err != nil {
		response.InternalError(c, "failed to load messages")
		return
	}

	response.Success(c, gin.H{
		"chat_session_id": session.ID,
		"messages":        messages,
	})
}

func (h *HTTPHandler) GetNotifications(c *gin.Context) {
	limit := parseLimit(c.DefaultQuery("limit", ""))

	notifications, err := h.store.ListNotifications(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		response.InternalError(c, "failed to load notifications")
		return
	}

	response.Success(c, gin.H{"notifications": notifications})
}

func (h *HTTPHandler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	err = h.store.MarkNotificationRead(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err == repository.ErrNotFound {
		response.NotFound(c, "notification not found")
		return
	}
	if err != nil {
		response.InternalError(c, "failed to mark notification read")
		return
	}

	response.Success(c, gin.H{"read": true})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func parseLimit(raw string) int {
	limit := defaultLimit
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
