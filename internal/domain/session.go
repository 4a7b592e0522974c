package domain

import (
	"sync"
	"time"
)

// ConnectionState tracks the identity and room membership of one live
// connection. It lives only in relay memory and dies with the connection;
// clients rebuild membership by re-joining after a reconnect.
type ConnectionState struct {
	ID            string
	UserID        string
	Username      string
	Role          string
	Authenticated bool
	JoinedChats   map[uint]struct{}
	CreatedAt     time.Time
	LastActiveAt  time.Time
	mu            sync.RWMutex
}

func NewConnectionState(id string) *ConnectionState {
	now := time.Now()
	return &ConnectionState{
		ID:           id,
		JoinedChats:  make(map[uint]struct{}),
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

func (s *ConnectionState) Authenticate(userID, username, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.Username = username
	s.Role = role
	s.Authenticated = true
	s.LastActiveAt = time.Now()
}

func (s *ConnectionState) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

func (s *ConnectionState) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Role == RoleAdmin
}

func (s *ConnectionState) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

func (s *ConnectionState) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

func (s *ConnectionState) GetRole() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Role
}

func (s *ConnectionState) JoinChat(chatSessionID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.JoinedChats[chatSessionID] = struct{}{}
	s.LastActiveAt = time.Now()
}

func (s *ConnectionState) LeaveChat(chatSessionID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.JoinedChats, chatSessionID)
	s.LastActiveAt = time.Now()
}

func (s *ConnectionState) InChat(chatSessionID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.JoinedChats[chatSessionID]
	return ok
}

// Chats returns a snapshot of the joined chat session IDs.
func (s *ConnectionState) Chats() []uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint, 0, len(s.JoinedChats))
	for id := range s.JoinedChats {
		ids = append(ids, id)
	}
	return ids
}

func (s *ConnectionState) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
