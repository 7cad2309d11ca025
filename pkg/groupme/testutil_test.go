package groupme

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
)

// fakeMessage is a message the fake API serves. A nil Text mirrors the
// platform's null body on image-only messages.
type fakeMessage struct {
	ID          string
	CreatedAt   int64
	Text        *string
	Attachments []map[string]any
}

func text(s string) *string { return &s }

func (m fakeMessage) record() map[string]any {
	rec := map[string]any{
		"id":         m.ID,
		"name":       "Alice",
		"avatar_url": "https://img.example/alice",
		"created_at": m.CreatedAt,
		"text":       m.Text,
	}
	if m.Attachments != nil {
		rec["attachments"] = m.Attachments
	}
	return rec
}

func records(msgs []fakeMessage) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.record())
	}
	return out
}

// genMessages builds n messages newest-first with strictly descending ids
// and epochs. Message i has id "m<n-i>" and epoch base-i.
func genMessages(n int, base int64) []fakeMessage {
	msgs := make([]fakeMessage, n)
	for i := range msgs {
		msgs[i] = fakeMessage{
			ID:        fmt.Sprintf("m%04d", n-i),
			CreatedAt: base - int64(i),
			Text:      text(fmt.Sprintf("message %d", n-i)),
		}
	}
	return msgs
}

func respond(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"response": payload})
}

// fakeAPI is an httptest-backed GroupMe server. Endpoints are registered
// per test; users/me always succeeds so New can verify the token.
type fakeAPI struct {
	mux *http.ServeMux
	srv *httptest.Server

	mu           sync.Mutex
	messageCalls []url.Values
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux()}
	f.mux.HandleFunc("/users/me", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, map[string]any{
			"name":         "Test User",
			"email":        "test@example.com",
			"phone_number": "555-0100",
		})
	})
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T) *Client {
	t.Helper()
	c, err := New(context.Background(), "test-token", WithBaseURL(f.srv.URL))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return c
}

func (f *fakeAPI) recordCall(q url.Values) {
	f.mu.Lock()
	f.messageCalls = append(f.messageCalls, q)
	f.mu.Unlock()
}

func (f *fakeAPI) calls() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values{}, f.messageCalls...)
}

// pageAfter returns the slice of msgs strictly after the given cursor id,
// capped at max (0 = no cap).
func pageAfter(msgs []fakeMessage, beforeID string, max int) []fakeMessage {
	start := 0
	if beforeID != "" {
		start = len(msgs)
		for i, m := range msgs {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	end := len(msgs)
	if max > 0 && start+max < end {
		end = start + max
	}
	return msgs[start:end]
}

// serveGroupMessages registers the group message endpoint over a fixed
// newest-first history, honoring before_id and limit and recording every
// request's query parameters.
func (f *fakeAPI) serveGroupMessages(groupID string, msgs []fakeMessage) {
	f.mux.HandleFunc("/groups/"+groupID+"/messages", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f.recordCall(q)
		limit, _ := strconv.Atoi(q.Get("limit"))
		page := pageAfter(msgs, q.Get("before_id"), limit)
		respond(w, map[string]any{"count": len(msgs), "messages": records(page)})
	})
}

// serveDirectMessages registers the DM endpoint; the server picks the page
// size since the endpoint has no limit parameter.
func (f *fakeAPI) serveDirectMessages(msgs []fakeMessage, pageSize int) {
	f.mux.HandleFunc("/direct_messages", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f.recordCall(q)
		page := pageAfter(msgs, q.Get("before_id"), pageSize)
		respond(w, map[string]any{"count": len(msgs), "direct_messages": records(page)})
	})
}

func groupEntry(id, name string, lastEpoch int64) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"description": "",
		"created_at":  lastEpoch - 10000,
		"messages": map[string]any{
			"count":                   1,
			"last_message_id":         "g-last-" + id,
			"last_message_created_at": lastEpoch,
		},
	}
}

func dmEntry(otherID, otherName string, lastEpoch int64) map[string]any {
	return map[string]any{
		"created_at": lastEpoch - 10000,
		"last_message": map[string]any{
			"id":         "d-last-" + otherID,
			"created_at": lastEpoch,
		},
		"other_user": map[string]any{
			"id":   otherID,
			"name": otherName,
		},
	}
}

// serveListing registers an offset-paginated listing endpoint (groups or
// chats) over the given entries.
func (f *fakeAPI) serveListing(path string, entries []map[string]any) {
	f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if page < 1 || perPage < 1 {
			http.Error(w, "bad paging params", http.StatusBadRequest)
			return
		}
		start := (page - 1) * perPage
		end := start + perPage
		if start > len(entries) {
			start = len(entries)
		}
		if end > len(entries) {
			end = len(entries)
		}
		respond(w, entries[start:end])
	})
}
