// Package gateway wraps outbound authenticated HTTP calls. Every request is
// checked against the session first, carries the bearer credential, and a 401
// from the server ends the session.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// Session is what the gateway needs from the session manager.
type Session interface {
	EnsureValid(ctx context.Context) bool
	Token() (*oauth2.Token, error)
	Invalidate(accessToken string) bool
}

type Gateway struct {
	session        Session
	client         *http.Client
	baseURL        *url.URL
	limiter        *rate.Limiter
	onUnauthorized func()
}

type Option func(*Gateway)

func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithBaseURL resolves relative request paths against baseURL.
func WithBaseURL(baseURL string) Option {
	return func(g *Gateway) {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			log.Err(err).Str("base_url", baseURL).Msg("Ignoring invalid base URL")
			return
		}
		g.baseURL = u
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(g *Gateway) {
		if perSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithOnUnauthorized registers the login redirect. It runs once per rejected credential.
func WithOnUnauthorized(fn func()) Option {
	return func(g *Gateway) {
		g.onUnauthorized = fn
	}
}

func New(sess Session, options ...Option) *Gateway {
	g := &Gateway{session: sess}
	for _, opt := range options {
		opt(g)
	}
	if g.client == nil {
		g.client = http.DefaultClient
	}
	return g
}

// Do sends req with the session credential attached. The response is returned
// unmodified for any status other than 401; callers interpret it themselves.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if !g.session.EnsureValid(ctx) {
		log.Error().Str("url", req.URL.String()).Msg("API call failed: no credential")
		return nil, apperrors.ErrUnauthenticated
	}
	token, err := g.session.Token()
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	req = req.Clone(ctx)
	g.resolve(req)
	token.SetAuthHeader(req)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Wrapf(err, "[Gateway Do] rate limiter")
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("API call failed")
		return nil, apperrors.Transport(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if g.session.Invalidate(token.AccessToken) {
			log.Warn().Str("url", req.URL.String()).Msg("Received 401, removing tokens and redirecting to login")
			if g.onUnauthorized != nil {
				g.onUnauthorized()
			}
		}
		return nil, apperrors.ErrAuthorizationRejected
	}

	return resp, nil
}

// Request builds and sends a request. path may be absolute or relative to the base URL.
func (g *Gateway) Request(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Gateway Request] new request")
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return g.Do(req)
}

func (g *Gateway) Get(ctx context.Context, path string) (*http.Response, error) {
	return g.Request(ctx, http.MethodGet, path, nil, nil)
}

// Post JSON-encodes data when it is not nil.
func (g *Gateway) Post(ctx context.Context, path string, data any) (*http.Response, error) {
	return g.withJSON(ctx, http.MethodPost, path, data)
}

// Put JSON-encodes data when it is not nil.
func (g *Gateway) Put(ctx context.Context, path string, data any) (*http.Response, error) {
	return g.withJSON(ctx, http.MethodPut, path, data)
}

func (g *Gateway) Delete(ctx context.Context, path string) (*http.Response, error) {
	return g.Request(ctx, http.MethodDelete, path, nil, nil)
}

func (g *Gateway) withJSON(ctx context.Context, method, path string, data any) (*http.Response, error) {
	body, err := EncodeJSON(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Gateway %s] encode body", method)
	}
	return g.Request(ctx, method, path, body, nil)
}

func (g *Gateway) resolve(req *http.Request) {
	if g.baseURL == nil || req.URL.IsAbs() {
		return
	}
	ref := *req.URL
	ref.Path = strings.TrimLeft(ref.Path, "/")
	ref.RawPath = strings.TrimLeft(ref.RawPath, "/")
	req.URL = g.baseURL.ResolveReference(&ref)
	req.Host = req.URL.Host
}

// EncodeJSON returns nil for a nil value so no body is sent.
func EncodeJSON(data any) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}
