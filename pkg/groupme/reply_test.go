package groupme

import (
	"context"
	"testing"
)

func replyAPI(t *testing.T, history []fakeMessage) *fakeAPI {
	t.Helper()
	api := newFakeAPI(t)
	api.serveListing("/groups", []map[string]any{groupEntry("g1", "Team", 10000)})
	api.serveListing("/chats", nil)
	api.serveGroupMessages("g1", history)
	return api
}

func TestRepliedTo(t *testing.T) {
	history := genMessages(250, 10000)
	target := history[230]

	api := replyAPI(t, history)
	client := api.client(t)

	msg := Message{
		ID:        history[5].ID,
		ChatName:  "Team",
		Kind:      KindGroup,
		ReplyToID: target.ID,
	}
	found, err := msg.RepliedTo(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil {
		t.Fatal("reply not resolved")
	}
	if found.ID != target.ID {
		t.Errorf("resolved id = %s, want %s", found.ID, target.ID)
	}
	if found.Text != *target.Text {
		t.Errorf("resolved text = %q, want %q", found.Text, *target.Text)
	}
	if found.ChatName != "Team" {
		t.Errorf("resolved chat = %s, want Team", found.ChatName)
	}

	// The walk starts strictly below the replying message.
	calls := api.calls()
	if len(calls) == 0 {
		t.Fatal("no message requests made")
	}
	if got := calls[0].Get("before_id"); got != msg.ID {
		t.Errorf("first request before_id = %s, want %s", got, msg.ID)
	}
}

func TestRepliedToWithoutReference(t *testing.T) {
	api := replyAPI(t, genMessages(10, 10000))
	client := api.client(t)

	msg := Message{ID: "m0010", ChatName: "Team", Kind: KindGroup}
	found, err := msg.RepliedTo(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("resolved %+v, want nil for a message with no reply reference", found)
	}
	if calls := api.calls(); len(calls) != 0 {
		t.Errorf("made %d message requests, want 0", len(calls))
	}
}

func TestRepliedToDeleted(t *testing.T) {
	history := genMessages(50, 10000)
	api := replyAPI(t, history)
	client := api.client(t)

	msg := Message{
		ID:        history[5].ID,
		ChatName:  "Team",
		Kind:      KindGroup,
		ReplyToID: "gone-forever",
	}
	found, err := msg.RepliedTo(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("resolved %+v, want nil when the referenced message no longer exists", found)
	}
}
