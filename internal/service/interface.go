package service

import (
	"context"

	"github.com/agentmart/relay-service/internal/domain"
	"github.com/agentmart/relay-service/internal/hub"
	"github.com/agentmart/relay-service/pkg/jwt"
)

// TokenValidator resolves a credential token to marketplace claims.
// *jwt.Manager satisfies it.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// RelayService handles the inbound event surface of one relay process.
type RelayService interface {
	HandleAuthenticate(ctx context.Context, client *hub.Client, token string) error
	HandleJoinChat(ctx context.Context, client *hub.Client, chatSessionID uint) error
	HandleLeaveChat(ctx context.Context, client *hub.Client, chatSessionID uint) error
	HandleSendMessage(ctx context.Context, client *hub.Client, ev *domain.SendMessageEvent) error
	HandleTypingStart(ctx context.Context, client *hub.Client, chatSessionID uint) error
	HandleTypingStop(ctx context.Context, client *hub.Client, chatSessionID uint) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error
}
