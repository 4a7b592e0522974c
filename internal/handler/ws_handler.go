package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/agentmart/relay-service/internal/config"
	"github.com/agentmart/relay-service/internal/domain"
	"github.com/agentmart/relay-service/internal/hub"
	"github.com/agentmart/relay-service/internal/service"
	"github.com/agentmart/relay-service/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub     *hub.Hub
	service service.RelayService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.RelayService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleEvent)
		h.service.HandleDisconnect(context.Background(), client)
	}()
}

func (h *WSHandler) handleEvent(client *hub.Client, raw []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(raw, &base); err != nil {
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid event format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.EventAuthenticate:
		var ev domain.AuthenticateEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid authenticate event"))
			return
		}
		if err := h.service.HandleAuthenticate(ctx, client, ev.Token); err != nil {
			l := log.L()
			l.Warn().Str(log.FieldConnectionID, client.ID).Err(err).Msg("authentication failed")
		}

	case domain.EventJoinChat:
		var ev domain.JoinChatEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid join_chat event"))
			return
		}
		if err := h.service.HandleJoinChat(ctx, client, ev.ChatSessionID); err != nil {
			l := log.L()
			l.Warn().Str(log.FieldConnectionID, client.ID).Err(err).Msg("join chat failed")
		}

	case domain.EventLeaveChat:
		var ev domain.LeaveChatEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid leave_chat event"))
			return
		}
		h.service.HandleLeaveChat(ctx, client, ev.ChatSessionID)

	case domain.EventSendMessage:
		var ev domain.SendMessageEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid send_message event"))
			return
		}
		if err := h.service.HandleSendMessage(ctx, client, &ev); err != nil {
			l := log.L()
			l.Warn().Str(log.FieldConnectionID, client.ID).Err(err).Msg("send message failed")
		}

	case domain.EventTypingStart:
		var ev domain.TypingEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid typing_start event"))
			return
		}
		h.service.HandleTypingStart(ctx, client, ev.ChatSessionID)

	case domain.EventTypingStop:
		var ev domain.TypingEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid typing_stop event"))
			return
		}
		h.service.HandleTypingStop(ctx, client, ev.ChatSessionID)

	default:
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown event type"))
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/relay/ws", gin.WrapF(h.HandleWebSocket))
}
