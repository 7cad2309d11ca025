package groupme

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tinyland-inc/gmq/pkg/timeutil"
)

// maxPageSize is the largest page the group message endpoint will serve.
const maxPageSize = 100

// Unbounded requests every matching message.
const Unbounded = -1

// Criteria filters a message search. Zero epoch bounds and an empty keyword
// mean "no bound". Limit caps the number of returned messages; Unbounded
// (-1) removes the cap, and 0 returns nothing.
type Criteria struct {
	Before  int64  // exclusive upper bound on sent time, Unix seconds
	After   int64  // exclusive lower bound on sent time, Unix seconds
	Keyword string // case-sensitive substring of the message body
	Limit   int
}

// ParseCriteria builds a Criteria from CLI-style arguments. Date-only bounds
// cover the whole calendar day: a bare "MM/DD/YYYY" before-bound widens to
// 23:59:59 and an after-bound to 00:00:00.
func ParseCriteria(before, after, keyword string, limit int) (Criteria, error) {
	crit := Criteria{Keyword: keyword, Limit: limit}

	if before != "" {
		if !strings.Contains(before, " ") {
			before += " 23:59:59"
		}
		epoch, err := timeutil.StringToEpoch(before)
		if err != nil {
			return Criteria{}, err
		}
		crit.Before = epoch
	}

	if after != "" {
		if !strings.Contains(after, " ") {
			after += " 00:00:00"
		}
		epoch, err := timeutil.StringToEpoch(after)
		if err != nil {
			return Criteria{}, err
		}
		crit.After = epoch
	}

	return crit, nil
}

// ProgressFunc receives live search progress after every examined message.
// processed counts examined messages (collected plus skipped), total is the
// chat's overall message count as reported by the first page, and selected
// counts collected messages. When an After bound is active the total pages
// are unknowable in advance, so renderers should treat total as indicative
// only and show an open-ended indicator.
type ProgressFunc func(processed, total, selected int)

// pageSpec describes the kind-specific request shape for message paging.
// Group and DM endpoints differ in path, parameter set and response field,
// but the paging loop itself is shared.
type pageSpec struct {
	endpoint string
	field    string
	params   func(cursor string, effLimit int) url.Values
}

func (ch *Chat) pageSpec() pageSpec {
	if ch.Kind == KindGroup {
		return pageSpec{
			endpoint: "groups/" + ch.ID + "/messages",
			field:    "messages",
			params: func(cursor string, effLimit int) url.Values {
				v := url.Values{}
				v.Set("limit", strconv.Itoa(effLimit))
				if cursor != "" {
					v.Set("before_id", cursor)
				}
				return v
			},
		}
	}
	// The DM endpoint accepts no limit parameter; page size is whatever the
	// server returns.
	return pageSpec{
		endpoint: "direct_messages",
		field:    "direct_messages",
		params: func(cursor string, _ int) url.Values {
			v := url.Values{}
			v.Set("other_user_id", ch.ID)
			if cursor != "" {
				v.Set("before_id", cursor)
			}
			return v
		},
	}
}

// fetchPage issues one paging request and decodes the page. total is the
// chat-wide message count the endpoint reports alongside each page.
func (c *Client) fetchPage(ctx context.Context, spec pageSpec, cursor string, effLimit int, errContext string) ([]messageRecord, int, error) {
	raw, err := c.Call(ctx, spec.endpoint, spec.params(cursor, effLimit), errContext)
	if err != nil {
		return nil, 0, err
	}

	var page struct {
		Count          int             `json:"count"`
		Messages       []messageRecord `json:"messages"`
		DirectMessages []messageRecord `json:"direct_messages"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", errContext, err)
	}

	if spec.field == "messages" {
		return page.Messages, page.Count, nil
	}
	return page.DirectMessages, page.Count, nil
}

// effectiveLimit caps a group page request at the platform maximum while
// never requesting more messages than are still needed.
func effectiveLimit(limit, collected int) int {
	if limit == Unbounded {
		return maxPageSize
	}
	if remaining := limit - collected; remaining < maxPageSize {
		return remaining
	}
	return maxPageSize
}

// Messages walks the chat's history newest-first, applying the criteria, and
// returns the matching messages in arrival order. Paging is cursor-based:
// each request fetches messages strictly older than the previous page's last
// message, so the first request is unanchored (before_id is exclusive and
// anchoring it at the newest message would drop that message).
//
// When an After bound is set, the walk stops at the first message older than
// the bound; everything beyond it in the descending stream is older still.
// Skipped messages (outside Before, or not matching Keyword) still advance
// the cursor and count toward progress, but never toward Limit.
func (ch *Chat) Messages(ctx context.Context, criteria Criteria, sink ProgressFunc) ([]Message, error) {
	collected := []Message{}
	if criteria.Limit == 0 {
		return collected, nil
	}

	spec := ch.pageSpec()
	errContext := fmt.Sprintf("error fetching messages from %s", ch.Name)

	skipped := 0
	stopped := false
	cursor := ""

	page, total, err := ch.client.fetchPage(ctx, spec, cursor, effectiveLimit(criteria.Limit, 0), errContext)
	if err != nil {
		return nil, err
	}

	for len(page) > 0 && !stopped && (criteria.Limit == Unbounded || len(collected) < criteria.Limit) {
		for i, rec := range page {
			if criteria.After != 0 && rec.CreatedAt < criteria.After {
				stopped = true
				break
			}

			if (criteria.Before != 0 && rec.CreatedAt > criteria.Before) ||
				(criteria.Keyword != "" && !rec.textContains(criteria.Keyword)) {
				skipped++
			} else {
				collected = append(collected, newMessage(ch.Name, ch.Kind, rec))
			}

			if sink != nil {
				sink(len(collected)+skipped, total, len(collected))
			}

			// The cursor advances past every examined message, collected or
			// not; anchoring it only on collected messages would stall paging.
			if i == len(page)-1 {
				cursor = rec.ID
			}

			if criteria.Limit != Unbounded && len(collected) >= criteria.Limit {
				break
			}
		}

		if stopped || (criteria.Limit != Unbounded && len(collected) >= criteria.Limit) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, _, err = ch.client.fetchPage(ctx, spec, cursor, effectiveLimit(criteria.Limit, len(collected)), errContext)
		if err != nil {
			return nil, err
		}
	}

	return collected, nil
}
