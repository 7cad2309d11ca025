package groupme

import (
	"strings"

	"github.com/tinyland-inc/gmq/pkg/emoji"
	"github.com/tinyland-inc/gmq/pkg/timeutil"
)

// Message is a value snapshot of one message as returned by the API. It owns
// nothing: ReplyToID is a back-reference resolved on demand, and Emoji maps
// inline placeholder tokens to pack references that the emoji package turns
// into image links only when asked.
type Message struct {
	ID              string                        `json:"id"`
	ChatName        string                        `json:"chat"`
	Kind            ChatKind                      `json:"-"`
	Author          string                        `json:"author"`
	AuthorAvatarURL string                        `json:"author_avatar_url,omitempty"`
	SentEpoch       int64                         `json:"sent_epoch"`
	Sent            string                        `json:"sent"`
	Text            string                        `json:"text"`
	ImageURLs       []string                      `json:"image_urls,omitempty"`
	Emoji           map[string][]emoji.CharmapRef `json:"emoji,omitempty"`
	ReplyToID       string                        `json:"reply_to_id,omitempty"`
}

// messageRecord is the wire shape of one message in a page.
type messageRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	CreatedAt   int64   `json:"created_at"`
	Text        *string `json:"text"`
	Attachments []struct {
		Type        string  `json:"type"`
		URL         string  `json:"url"`
		Placeholder string  `json:"placeholder"`
		Charmap     [][]int `json:"charmap"`
		ReplyID     string  `json:"reply_id"`
	} `json:"attachments"`
}

// textContains reports whether the message body contains the keyword.
// Image-only messages have a null body and never match.
func (r messageRecord) textContains(keyword string) bool {
	if r.Text == nil {
		return false
	}
	return strings.Contains(*r.Text, keyword)
}

func newMessage(chatName string, kind ChatKind, rec messageRecord) Message {
	msg := Message{
		ID:              rec.ID,
		ChatName:        chatName,
		Kind:            kind,
		Author:          rec.Name,
		AuthorAvatarURL: rec.AvatarURL,
		SentEpoch:       rec.CreatedAt,
		Sent:            timeutil.EpochToString(rec.CreatedAt),
	}
	if rec.Text != nil {
		msg.Text = *rec.Text
	}
	for _, att := range rec.Attachments {
		switch att.Type {
		case "image":
			msg.ImageURLs = append(msg.ImageURLs, att.URL)
		case "emoji":
			if msg.Emoji == nil {
				msg.Emoji = make(map[string][]emoji.CharmapRef)
			}
			msg.Emoji[att.Placeholder] = emoji.FromPairs(att.Charmap)
		case "reply":
			msg.ReplyToID = att.ReplyID
		}
	}
	return msg
}
