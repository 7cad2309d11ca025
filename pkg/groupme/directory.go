package groupme

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tinyland-inc/gmq/pkg/timeutil"
)

// listPageSize is the page size for the offset-paginated listing endpoints.
// Unlike message paging these endpoints page by number, not cursor.
const listPageSize = 10

// ListProgressFunc receives a running count of fetched chats per kind while
// the directory pages through the listing endpoints.
type ListProgressFunc func(kind ChatKind, fetched int)

func listParams(page int) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(listPageSize))
	return v
}

// listGroups pages the groups endpoint in descending last-activity order,
// stopping early once a group falls below the cutoff (0 = no cutoff).
func (c *Client) listGroups(ctx context.Context, cutoff int64, progress ListProgressFunc) ([]Chat, error) {
	var chats []Chat
	for page := 1; ; page++ {
		params := listParams(page)
		params.Set("omit", "memberships")
		raw, err := c.Call(ctx, "groups", params, "unexpected error fetching groups")
		if err != nil {
			return nil, err
		}
		var recs []groupRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decoding groups page: %w", err)
		}
		if len(recs) == 0 {
			return chats, nil
		}
		for _, rec := range recs {
			if cutoff != 0 && rec.Messages.LastMessageCreatedAt < cutoff {
				return chats, nil
			}
			chats = append(chats, newGroupChat(rec, c))
			if progress != nil {
				progress(KindGroup, len(chats))
			}
		}
	}
}

// listDirectMessages pages the chats endpoint the same way.
func (c *Client) listDirectMessages(ctx context.Context, cutoff int64, progress ListProgressFunc) ([]Chat, error) {
	var chats []Chat
	for page := 1; ; page++ {
		raw, err := c.Call(ctx, "chats", listParams(page), "unexpected error fetching direct messages")
		if err != nil {
			return nil, err
		}
		var recs []dmRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decoding chats page: %w", err)
		}
		if len(recs) == 0 {
			return chats, nil
		}
		for _, rec := range recs {
			if cutoff != 0 && rec.LastMessage.CreatedAt < cutoff {
				return chats, nil
			}
			chats = append(chats, newDirectMessageChat(rec, c))
			if progress != nil {
				progress(KindDirectMessage, len(chats))
			}
		}
	}
}

// mergeChats interleaves two lists that are each sorted descending by last
// activity into one descending list. A strictly newer group goes first; on a
// tie the direct message wins.
func mergeChats(groups, dms []Chat) []Chat {
	merged := make([]Chat, 0, len(groups)+len(dms))
	gi, di := 0, 0
	for gi < len(groups) && di < len(dms) {
		if groups[gi].LastUsedEpoch > dms[di].LastUsedEpoch {
			merged = append(merged, groups[gi])
			gi++
		} else {
			merged = append(merged, dms[di])
			di++
		}
	}
	merged = append(merged, groups[gi:]...)
	merged = append(merged, dms[di:]...)
	return merged
}

// ListChats returns every chat the user belongs to, groups and direct
// messages merged into one list in descending last-activity order. lastUsed
// optionally restricts the listing to chats active since that duration or
// date (see timeutil.Cutoff); both listing endpoints return results newest
// first, so the cutoff doubles as an early stop.
func (c *Client) ListChats(ctx context.Context, lastUsed string, progress ListProgressFunc) ([]Chat, error) {
	cutoff, err := timeutil.Cutoff(lastUsed)
	if err != nil {
		return nil, err
	}

	groups, err := c.listGroups(ctx, cutoff, progress)
	if err != nil {
		return nil, err
	}
	dms, err := c.listDirectMessages(ctx, cutoff, progress)
	if err != nil {
		return nil, err
	}

	return mergeChats(groups, dms), nil
}

// findGroup scans the groups listing for an exact name match.
func (c *Client) findGroup(ctx context.Context, name string) (*Chat, error) {
	for page := 1; ; page++ {
		params := listParams(page)
		params.Set("omit", "memberships")
		raw, err := c.Call(ctx, "groups", params, "unexpected error searching groups")
		if err != nil {
			return nil, err
		}
		var recs []groupRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decoding groups page: %w", err)
		}
		if len(recs) == 0 {
			return nil, nil
		}
		for _, rec := range recs {
			if rec.Name == name {
				chat := newGroupChat(rec, c)
				return &chat, nil
			}
		}
	}
}

// findDirectMessage scans the chats listing for the other user's exact name.
func (c *Client) findDirectMessage(ctx context.Context, name string) (*Chat, error) {
	for page := 1; ; page++ {
		raw, err := c.Call(ctx, "chats", listParams(page), "unexpected error searching direct messages")
		if err != nil {
			return nil, err
		}
		var recs []dmRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decoding chats page: %w", err)
		}
		if len(recs) == 0 {
			return nil, nil
		}
		for _, rec := range recs {
			if rec.OtherUser.Name == name {
				chat := newDirectMessageChat(rec, c)
				return &chat, nil
			}
		}
	}
}

// GetChat resolves a chat by exact display name. By default groups are
// searched first with a fallback to direct messages; preferDM skips the
// group scan entirely, which saves a full listing walk when the caller
// already knows the chat is a DM.
func (c *Client) GetChat(ctx context.Context, name string, preferDM bool) (*Chat, error) {
	var chat *Chat
	var err error

	if preferDM {
		chat, err = c.findDirectMessage(ctx, name)
	} else {
		chat, err = c.findGroup(ctx, name)
		if err == nil && chat == nil {
			chat, err = c.findDirectMessage(ctx, name)
		}
	}
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("no chat found with the name %s", name)
	}
	return chat, nil
}
