package groupme

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tinyland-inc/gmq/pkg/timeutil"
)

// ChatKind discriminates the two conversation kinds the API exposes. They
// share the Chat type and the paging machinery but differ in endpoint shape.
type ChatKind int

const (
	KindGroup ChatKind = iota
	KindDirectMessage
)

func (k ChatKind) String() string {
	if k == KindDirectMessage {
		return "direct message"
	}
	return "group"
}

// Chat is an immutable snapshot of one conversation at fetch time. There is
// no live sync; re-fetch through the directory to refresh.
type Chat struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Kind          ChatKind `json:"-"`
	LastUsedEpoch int64    `json:"last_used_epoch"`
	LastUsed      string   `json:"last_used"`
	CreatedEpoch  int64    `json:"created_epoch"`
	Created       string   `json:"created"`
	LastMessageID string   `json:"last_message_id,omitempty"`

	client *Client
}

// groupRecord is the wire shape of one entry of the groups listing.
type groupRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
	Messages    struct {
		Count                int    `json:"count"`
		LastMessageID        string `json:"last_message_id"`
		LastMessageCreatedAt int64  `json:"last_message_created_at"`
	} `json:"messages"`
}

// dmRecord is the wire shape of one entry of the chats (DM) listing.
type dmRecord struct {
	CreatedAt   int64 `json:"created_at"`
	LastMessage struct {
		ID        string `json:"id"`
		CreatedAt int64  `json:"created_at"`
	} `json:"last_message"`
	OtherUser struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"other_user"`
}

func newGroupChat(rec groupRecord, client *Client) Chat {
	return Chat{
		ID:            rec.ID,
		Name:          rec.Name,
		Description:   rec.Description,
		Kind:          KindGroup,
		LastUsedEpoch: rec.Messages.LastMessageCreatedAt,
		LastUsed:      timeutil.EpochToString(rec.Messages.LastMessageCreatedAt),
		CreatedEpoch:  rec.CreatedAt,
		Created:       timeutil.EpochToString(rec.CreatedAt),
		LastMessageID: rec.Messages.LastMessageID,
		client:        client,
	}
}

func newDirectMessageChat(rec dmRecord, client *Client) Chat {
	return Chat{
		// A DM thread is addressed by the other user's id.
		ID:            rec.OtherUser.ID.String(),
		Name:          rec.OtherUser.Name,
		Kind:          KindDirectMessage,
		LastUsedEpoch: rec.LastMessage.CreatedAt,
		LastUsed:      timeutil.EpochToString(rec.LastMessage.CreatedAt),
		CreatedEpoch:  rec.CreatedAt,
		Created:       timeutil.EpochToString(rec.CreatedAt),
		LastMessageID: rec.LastMessage.ID,
		client:        client,
	}
}

// memberRecord is the wire shape of one group member in the group detail.
type memberRecord struct {
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Roles    []string `json:"roles"`
}

func (ch *Chat) groupDetail(ctx context.Context) ([]memberRecord, error) {
	if ch.Kind != KindGroup {
		return nil, fmt.Errorf("chat %q is a direct message and has no member list", ch.Name)
	}
	raw, err := ch.client.Call(ctx, "groups/"+ch.ID, nil,
		fmt.Sprintf("error fetching details for group %s", ch.Name))
	if err != nil {
		return nil, err
	}
	var detail struct {
		Members []memberRecord `json:"members"`
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("decoding group detail: %w", err)
	}
	return detail.Members, nil
}

// Owner returns the display name of the member holding the "owner" role, or
// "Unknown" if no member does. It is a fresh lookup on every call so the
// result always reflects the latest server state.
func (ch *Chat) Owner(ctx context.Context) (string, error) {
	members, err := ch.groupDetail(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		for _, role := range m.Roles {
			if role == "owner" {
				if m.Name != "" {
					return m.Name, nil
				}
				return m.Nickname, nil
			}
		}
	}
	return "Unknown", nil
}

// Members returns the group's member nicknames in server order. Like Owner,
// it performs a fresh lookup on every call.
func (ch *Chat) Members(ctx context.Context) ([]string, error) {
	members, err := ch.groupDetail(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Nickname)
	}
	return names, nil
}
