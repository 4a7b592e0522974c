package hub

import (
	"encoding/json"
	"testing"

	"github.com/agentmart/relay-service/internal/config"
)

func newTestClient(h *Hub, id string) *Client {
	c := NewClient(id, h, nil, config.WebSocketConfig{})
	h.Register(c)
	return c
}

func drain(t *testing.T, c *Client) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")

	h.Join(a, ChatGroup(1))
	h.Join(a, ChatGroup(1))

	if got := h.GroupCount(ChatGroup(1)); got != 1 {
		t.Fatalf("GroupCount = %d, want 1", got)
	}

	if err := h.Broadcast(ChatGroup(1), map[string]string{"k": "v"}, ""); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if msgs := drain(t, a); len(msgs) != 1 {
		t.Fatalf("delivered %d messages, want exactly 1", len(msgs))
	}
}

func TestBroadcastScopedToGroup(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")
	c := newTestClient(h, "c")

	h.Join(a, ChatGroup(1))
	h.Join(b, ChatGroup(1))
	h.Join(c, AdminGroup)

	if err := h.Broadcast(ChatGroup(1), map[string]string{"hello": "world"}, a.ID); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	if msgs := drain(t, a); len(msgs) != 0 {
		t.Fatalf("excluded sender received %d messages", len(msgs))
	}
	msgs := drain(t, b)
	if len(msgs) != 1 {
		t.Fatalf("member received %d messages, want 1", len(msgs))
	}
	var decoded map[string]string
	if err := json.Unmarshal(msgs[0], &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["hello"] != "world" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
	if msgs := drain(t, c); len(msgs) != 0 {
		t.Fatalf("non-member received %d messages", len(msgs))
	}
}

func TestLeaveIsNoOpForNonMember(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")

	h.Join(a, ChatGroup(7))
	h.Leave(b, ChatGroup(7))

	if got := h.GroupCount(ChatGroup(7)); got != 1 {
		t.Fatalf("GroupCount = %d, want 1", got)
	}
}

func TestUnregisterRemovesFromAllGroups(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")

	h.Join(a, ChatGroup(1))
	h.Join(a, ChatGroup(2))
	h.Join(a, UserGroup("u1"))

	h.Unregister(a)

	for _, g := range []string{ChatGroup(1), ChatGroup(2), UserGroup("u1")} {
		if got := h.GroupCount(g); got != 0 {
			t.Fatalf("GroupCount(%s) = %d after unregister, want 0", g, got)
		}
	}

	// Send channel must be closed so the write pump terminates.
	if _, ok := <-a.Send; ok {
		t.Fatal("send channel still open after unregister")
	}

	// Second unregister must not panic.
	h.Unregister(a)
}

func TestBroadcastToEmptyGroup(t *testing.T) {
	h := NewHub()
	if err := h.Broadcast(ChatGroup(99), map[string]string{"k": "v"}, ""); err != nil {
		t.Fatalf("Broadcast() to empty group error = %v", err)
	}
}

func TestGroupCountTracksUserConnections(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "tab-1")
	b := newTestClient(h, "tab-2")

	h.Join(a, UserGroup("u1"))
	h.Join(b, UserGroup("u1"))

	if got := h.GroupCount(UserGroup("u1")); got != 2 {
		t.Fatalf("GroupCount = %d, want 2", got)
	}

	h.Unregister(a)
	if got := h.GroupCount(UserGroup("u1")); got != 1 {
		t.Fatalf("GroupCount = %d after one disconnect, want 1", got)
	}
}

func TestSendEventAfterUnregisterIsDropped(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	h.Unregister(a)

	// The read pump can still dispatch frames the peer pipelined before
	// termination; their replies must be dropped, not sent on the closed
	// channel.
	if err := a.SendEvent(map[string]string{"k": "v"}); err != nil {
		t.Fatalf("SendEvent() after unregister error = %v", err)
	}
	if _, ok := <-a.Send; ok {
		t.Fatal("event queued on a terminated connection")
	}
}
