// Package groupme is a read-only client for the GroupMe v3 REST API.
//
// It exposes the user's chats (groups and direct-message threads), a
// paginated message search over either kind, and reply-chain resolution.
// All calls are plain HTTPS GETs authenticated by an access token passed
// as a query parameter; the write side of the API is out of scope.
package groupme

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tinyland-inc/gmq/pkg/logger"
)

// DefaultBaseURL is the production GroupMe API endpoint.
const DefaultBaseURL = "https://api.groupme.com/v3"

const defaultRateLimitRetries = 5

// APIError is returned for any non-200, non-304 API response. Context is the
// caller-supplied description of what was being fetched.
type APIError struct {
	Context    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: GroupMe API error code %d", e.Context, e.StatusCode)
}

// Client talks to the GroupMe API on behalf of one authenticated user.
type Client struct {
	baseURL          string
	token            string
	httpClient       *http.Client
	rateLimitRetries int

	// Identity of the token's owner, captured at construction.
	Name        string
	Email       string
	PhoneNumber string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimitRetries bounds how many times a 429 response is retried
// before it is surfaced as an error.
func WithRateLimitRetries(n int) Option {
	return func(c *Client) { c.rateLimitRetries = n }
}

// New builds a Client and verifies the token against the users/me endpoint,
// capturing the owner's name, email and phone number.
func New(ctx context.Context, token string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:          DefaultBaseURL,
		token:            token,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		rateLimitRetries: defaultRateLimitRetries,
	}
	for _, opt := range opts {
		opt(c)
	}

	raw, err := c.Call(ctx, "users/me", nil, "invalid access token")
	if err != nil {
		return nil, err
	}

	var me struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.Unmarshal(raw, &me); err != nil {
		return nil, fmt.Errorf("decoding user info: %w", err)
	}
	c.Name = me.Name
	c.Email = me.Email
	c.PhoneNumber = me.PhoneNumber

	return c, nil
}

// Call issues one GET against the API and returns the envelope's response
// field. errContext describes the operation for error messages.
//
// A 304 is not an error: it is how the API signals that a paging cursor
// points past the newest available data, and is normalized to an empty page
// of the shape the endpoint would otherwise return. A 429 is retried a
// bounded number of times with a one second wait.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values, errContext string) (json.RawMessage, error) {
	if errContext == "" {
		errContext = "unspecified error occurred"
	}

	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("token", c.token)
	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()
	reqID := uuid.NewString()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errContext, err)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errContext, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errContext, err)
		}

		logger.DebugCF("client", "API call", map[string]any{
			"request_id": reqID,
			"endpoint":   endpoint,
			"status":     resp.StatusCode,
			"duration":   time.Since(start).String(),
		})

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < c.rateLimitRetries:
			logger.WarnCF("client", "Rate limited, waiting before retry", map[string]any{
				"request_id": reqID,
				"endpoint":   endpoint,
				"attempt":    attempt + 1,
			})
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s: %w", errContext, ctx.Err())
			case <-time.After(time.Second):
			}
			continue

		case resp.StatusCode == http.StatusNotModified:
			if page, ok := emptyPageFor(endpoint); ok {
				return page, nil
			}
			return nil, &APIError{Context: errContext, StatusCode: resp.StatusCode}

		case resp.StatusCode == http.StatusOK:
			var envelope struct {
				Response json.RawMessage `json:"response"`
			}
			if err := json.Unmarshal(body, &envelope); err != nil {
				return nil, fmt.Errorf("%s: %w", errContext, err)
			}
			return envelope.Response, nil

		default:
			return nil, &APIError{Context: errContext, StatusCode: resp.StatusCode}
		}
	}
}

// emptyPageFor returns the empty-page shape a message endpoint produces, so
// a 304 reads as "no more data" to the paginator.
func emptyPageFor(endpoint string) (json.RawMessage, bool) {
	switch {
	case strings.HasPrefix(endpoint, "groups"):
		return json.RawMessage(`{"messages":[]}`), true
	case endpoint == "direct_messages":
		return json.RawMessage(`{"direct_messages":[]}`), true
	default:
		return nil, false
	}
}
