// Package api is the backend client for the leads dashboard. Calls that need a
// credential go through the gateway; login, registration and OTP calls use a
// plain HTTP client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-leads-client/gateway"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/jobs"
	"github.com/jrsteele09/go-leads-client/session"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Manager
	gateway *gateway.Gateway
	tracker *jobs.Tracker
	catalog *jobs.Catalog
}

type Option func(*Client)

// WithHTTPClient sets the client used for unauthenticated calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

func WithTracker(t *jobs.Tracker) Option {
	return func(c *Client) {
		c.tracker = t
	}
}

func WithCatalog(catalog *jobs.Catalog) Option {
	return func(c *Client) {
		c.catalog = catalog
	}
}

// New builds a client. gw should already carry the base URL and the 401 hook.
func New(baseURL string, sess *session.Manager, gw *gateway.Gateway, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		gateway: gw,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.tracker == nil {
		c.tracker = jobs.NewTracker(gw)
	}
	if c.catalog == nil {
		c.catalog = jobs.DefaultCatalog()
	}
	return c
}

func (c *Client) Catalog() *jobs.Catalog {
	return c.catalog
}

// ResponseError is a failed call with the message the backend gave for it.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// responseError reads the error body of resp. field names the JSON property
// carrying the message; when it is empty the raw text is used. fallback is
// used when the body has nothing useful.
func responseError(resp *http.Response, field, fallback string) error {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	msg := strings.TrimSpace(string(raw))
	if field != "" {
		msg = ""
		var body map[string]any
		if json.Unmarshal(raw, &body) == nil {
			msg, _ = body[field].(string)
		}
	}
	if msg == "" {
		msg = fallback
	}
	return &ResponseError{StatusCode: resp.StatusCode, Message: msg}
}

// postJSON sends an unauthenticated JSON request.
func (c *Client) postJSON(ctx context.Context, path string, data any) (*http.Response, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "encode body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// messageOf decodes an optional {message} body and closes it.
func messageOf(resp *http.Response) string {
	defer resp.Body.Close()
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return body.Message
}
