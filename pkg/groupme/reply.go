package groupme

import (
	"context"
)

// RepliedTo resolves the message this message replies to. A message with no
// reply reference resolves to nil without error. The owning chat is
// re-resolved by name through the directory (an accepted extra round trip),
// then history is paged backward from this message's position until the
// referenced id turns up. Exhausting the history without a hit also returns
// nil: the replied-to message may have been deleted.
func (m *Message) RepliedTo(ctx context.Context, client *Client) (*Message, error) {
	if m.ReplyToID == "" {
		return nil, nil
	}

	chat, err := client.GetChat(ctx, m.ChatName, m.Kind == KindDirectMessage)
	if err != nil {
		return nil, err
	}

	spec := chat.pageSpec()
	cursor := m.ID

	for {
		page, _, err := client.fetchPage(ctx, spec, cursor, maxPageSize, "error fetching reply information")
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return nil, nil
		}

		for _, rec := range page {
			if rec.ID == m.ReplyToID {
				found := newMessage(chat.Name, chat.Kind, rec)
				return &found, nil
			}
			cursor = rec.ID
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}
