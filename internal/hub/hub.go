package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agentmart/relay-service/pkg/log"
)

// Group name for all connected admins.
const AdminGroup = "admin"

// ChatGroup returns the broadcast group name for a chat session.
func ChatGroup(chatSessionID uint) string {
	return fmt.Sprintf("chat:%d", chatSessionID)
}

// UserGroup returns the per-user broadcast group name. Every
// authenticated connection of a user is a member, so the group's live
// count answers "is this user reachable right now".
func UserGroup(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// Hub tracks live connections and their membership in named broadcast
// groups. All mutation is synchronous under the mutex: disconnects must
// remove a connection from every group before Unregister returns, and
// handlers run on independent goroutines.
type Hub struct {
	clients map[string]*Client            // connectionID -> client
	groups  map[string]map[string]*Client // group name -> connectionID -> client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	l := log.L()
	l.Debug().Str(log.FieldConnectionID, client.ID).Msg("client registered")
}

// Unregister removes the client from every group it joined and closes
// its send channel. Idempotent; safe to call from both the read pump
// teardown and explicit termination paths.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		for name, members := range h.groups {
			delete(members, client.ID)
			if len(members) == 0 {
				delete(h.groups, name)
			}
		}
		delete(h.clients, client.ID)
		client.closeSend()
	}
	h.mu.Unlock()
	l := log.L()
	l.Debug().Str(log.FieldConnectionID, client.ID).Msg("client unregistered")
}

// Join adds the client to a named group. Membership is a set, so joining
// twice is a no-op.
func (h *Hub) Join(client *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[string]*Client)
	}
	h.groups[group][client.ID] = client
}

// Leave removes the client from a named group. No-op when not a member.
func (h *Hub) Leave(client *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.groups[group]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Broadcast marshals the message once and delivers it to every member of
// the group except excludeID. Delivery is at-most-once: a member whose
// send buffer is full is dropped from the hub rather than block the
// fan-out.
func (h *Hub) Broadcast(group string, message interface{}, excludeID string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	var stuck []*Client
	if members, ok := h.groups[group]; ok {
		for id, client := range members {
			if id == excludeID {
				continue
			}
			select {
			case client.Send <- data:
			default:
				stuck = append(stuck, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range stuck {
		l := log.L()
		l.Warn().Str(log.FieldConnectionID, client.ID).Str(log.FieldGroup, group).Msg("send buffer full, dropping client")
		h.Unregister(client)
	}
	return nil
}

// GroupCount returns the number of live connections in a group.
func (h *Hub) GroupCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// InGroup reports whether the client is currently a member of the group.
func (h *Hub) InGroup(client *Client, group string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.groups[group]
	if !ok {
		return false
	}
	_, ok = members[client.ID]
	return ok
}
