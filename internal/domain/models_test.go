package domain

import "testing"

func TestChatSessionParticipant(t *testing.T) {
	seller := "u2"
	tests := []struct {
		name    string
		session ChatSession
		userID  string
		want    bool
	}{
		{name: "buyer", session: ChatSession{BuyerID: "u1", SellerID: &seller}, userID: "u1", want: true},
		{name: "assigned seller", session: ChatSession{BuyerID: "u1", SellerID: &seller}, userID: "u2", want: true},
		{name: "stranger", session: ChatSession{BuyerID: "u1", SellerID: &seller}, userID: "u3", want: false},
		{name: "no seller assigned", session: ChatSession{BuyerID: "u1"}, userID: "u2", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Participant(tt.userID); got != tt.want {
				t.Errorf("Participant(%s) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestChatSessionOtherParty(t *testing.T) {
	seller := "u2"
	tests := []struct {
		name    string
		session ChatSession
		sender  string
		want    string
	}{
		{name: "buyer to seller", session: ChatSession{BuyerID: "u1", SellerID: &seller}, sender: "u1", want: "u2"},
		{name: "seller to buyer", session: ChatSession{BuyerID: "u1", SellerID: &seller}, sender: "u2", want: "u1"},
		{name: "admin to buyer", session: ChatSession{BuyerID: "u1", SellerID: &seller}, sender: "u9", want: "u1"},
		{name: "buyer, unassigned", session: ChatSession{BuyerID: "u1"}, sender: "u1", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.OtherParty(tt.sender); got != tt.want {
				t.Errorf("OtherParty(%s) = %q, want %q", tt.sender, got, tt.want)
			}
		})
	}
}

func TestIsValidContentType(t *testing.T) {
	for _, valid := range []string{ContentTypeText, ContentTypeImage, ContentTypeFile} {
		if !IsValidContentType(valid) {
			t.Errorf("IsValidContentType(%s) = false", valid)
		}
	}
	for _, invalid := range []string{"", "video", "TEXT"} {
		if IsValidContentType(invalid) {
			t.Errorf("IsValidContentType(%s) = true", invalid)
		}
	}
}

func TestConnectionStateLifecycle(t *testing.T) {
	s := NewConnectionState("c1")

	if s.IsAuthenticated() {
		t.Fatal("fresh connection reports authenticated")
	}

	s.Authenticate("u1", "Alice", RoleBuyer)
	if !s.IsAuthenticated() || s.GetUserID() != "u1" || s.GetUsername() != "Alice" {
		t.Fatalf("unexpected state after authenticate: %+v", s)
	}
	if s.IsAdmin() {
		t.Fatal("buyer reports admin")
	}

	s.JoinChat(5)
	s.JoinChat(5)
	s.JoinChat(6)
	if !s.InChat(5) || !s.InChat(6) {
		t.Fatal("joined chats not tracked")
	}
	if got := len(s.Chats()); got != 2 {
		t.Fatalf("Chats() has %d entries, want 2", got)
	}

	s.LeaveChat(5)
	if s.InChat(5) {
		t.Fatal("left chat still tracked")
	}
	s.LeaveChat(5) // no-op
}
