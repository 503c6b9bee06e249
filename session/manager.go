package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultExpiryBuffer = 5 * time.Minute
	defaultTokenExpiry  = 24 * time.Hour
)

// Refresher exchanges a refresh token for a new token payload.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenPayload, error)
}

// Manager is the single source of truth for whether the user is authenticated
// and with what credential. Read and validity checks report absence through
// booleans; storage failures are logged and behave as an empty session.
type Manager struct {
	repo          Store
	refresher     Refresher
	expiryBuffer  time.Duration
	defaultExpiry time.Duration
	nowFunc       func() time.Time

	// mu orders writes that depend on the stored token (Store, Clear, Invalidate).
	mu           sync.Mutex
	refreshGroup singleflight.Group
}

var _ oauth2.TokenSource = (*Manager)(nil)

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRefresher(r Refresher) ManagerOption {
	return func(m *Manager) {
		m.refresher = r
	}
}

// WithExpiryBuffer sets how long before actual expiry a token is treated as expired.
func WithExpiryBuffer(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.expiryBuffer = d
	}
}

// WithDefaultExpiry sets the lifetime assumed when the server omits expires_in.
func WithDefaultExpiry(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.defaultExpiry = d
	}
}

// NewManager creates a session manager backed by repo
func NewManager(repo Store, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:          repo,
		expiryBuffer:  defaultExpiryBuffer,
		defaultExpiry: defaultTokenExpiry,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	if m.defaultExpiry <= 0 {
		m.defaultExpiry = defaultTokenExpiry
	}
	return m
}

// Store persists a token payload. The refresh token is only replaced when the
// payload carries one.
func (m *Manager) Store(p TokenPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresIn := time.Duration(p.ExpiresIn) * time.Second
	if p.ExpiresIn <= 0 {
		expiresIn = m.defaultExpiry
	}
	expiresAt := m.nowFunc().Add(expiresIn)

	m.set(KeyAccessToken, p.AccessToken)
	if p.RefreshToken != "" {
		m.set(KeyRefreshToken, p.RefreshToken)
	}
	m.set(KeyTokenExpiration, strconv.FormatInt(expiresAt.UnixMilli(), 10))

	log.Debug().Time("expires_at", expiresAt).Msg("Token stored")
}

// StoreAccessToken stores a bare access token, the legacy login response form.
func (m *Manager) StoreAccessToken(accessToken string) {
	m.Store(TokenPayload{AccessToken: accessToken})
}

func (m *Manager) Current() (string, bool) {
	return m.get(KeyAccessToken)
}

func (m *Manager) CurrentRefreshToken() (string, bool) {
	return m.get(KeyRefreshToken)
}

// Clear removes the access token, refresh token and expiry. It is idempotent.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// Invalidate clears the session only if accessToken is still the stored token.
// It reports whether this call performed the clear, so concurrent rejections
// of the same credential are acted on once.
func (m *Manager) Invalidate(accessToken string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.Current()
	if !ok || current != accessToken {
		return false
	}
	m.clearLocked()
	return true
}

// IsExpired is true when there is no token or when now is within the expiry
// buffer of the stored expiry. A token without expiry metadata is not expired.
func (m *Manager) IsExpired() bool {
	if _, ok := m.Current(); !ok {
		return true
	}

	expiresAt, ok := m.ExpirationInstant()
	if !ok {
		return false
	}
	return !m.nowFunc().Before(expiresAt.Add(-m.expiryBuffer))
}

func (m *Manager) IsValid() bool {
	_, ok := m.Current()
	return ok && !m.IsExpired()
}

// ExpirationInstant returns the stored expiry, or false when it is unknown or unparsable.
func (m *Manager) ExpirationInstant() (time.Time, bool) {
	raw, ok := m.get(KeyTokenExpiration)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Refresh exchanges the stored refresh token for a new token. It never clears
// the existing token on failure. Concurrent callers share one in-flight request.
func (m *Manager) Refresh(ctx context.Context) bool {
	refreshToken, ok := m.CurrentRefreshToken()
	if !ok {
		log.Debug().Msg("No refresh token available")
		return false
	}
	if m.refresher == nil {
		log.Debug().Msg("No refresher configured")
		return false
	}

	v, _, _ := m.refreshGroup.Do(refreshToken, func() (interface{}, error) {
		payload, err := m.refresher.Refresh(ctx, refreshToken)
		if err != nil {
			log.Err(err).Msg("Token refresh failed")
			return false, nil
		}
		m.Store(*payload)
		log.Info().Msg("Token refreshed")
		return true, nil
	})
	return v.(bool)
}

// EnsureValid returns false only when no token exists. An expired token triggers
// a refresh, but the result is true either way; the server's 401 is the final word.
func (m *Manager) EnsureValid(ctx context.Context) bool {
	if _, ok := m.Current(); !ok {
		return false
	}
	if !m.IsExpired() {
		return true
	}
	if !m.Refresh(ctx) {
		log.Warn().Msg("Token expired and refresh failed, continuing with existing token")
	}
	return true
}

// DetectCorruption clears the session when the stored expiry is not a number,
// or when it cannot be read at all. It reports whether it cleared anything.
func (m *Manager) DetectCorruption() bool {
	raw, found, err := m.repo.Get(KeyTokenExpiration)
	if err != nil {
		log.Err(err).Msg("Error checking token data")
		m.Clear()
		return true
	}
	if !found || raw == "" {
		return false
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return false
	}

	log.Warn().Err(apperrors.ErrCorruptedSession).Str("token_expiration", raw).Msg("Clearing corrupted token data")
	m.Clear()
	return true
}

// Token implements oauth2.TokenSource over the stored credential.
func (m *Manager) Token() (*oauth2.Token, error) {
	accessToken, ok := m.Current()
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}

	t := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if rt, ok := m.CurrentRefreshToken(); ok {
		t.RefreshToken = rt
	}
	if exp, ok := m.ExpirationInstant(); ok {
		t.Expiry = exp
	}
	return t, nil
}

// Claims decodes the stored access token when it is a JWT.
func (m *Manager) Claims() (*Claims, error) {
	accessToken, ok := m.Current()
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return ParseClaims(accessToken)
}

func (m *Manager) clearLocked() {
	if err := m.repo.Delete(KeyAccessToken, KeyRefreshToken, KeyTokenExpiration); err != nil {
		log.Err(err).Msg("Session store delete failed")
	}
}

func (m *Manager) get(key string) (string, bool) {
	v, found, err := m.repo.Get(key)
	if err != nil {
		log.Err(err).Str("key", key).Msg("Session store read failed")
		return "", false
	}
	if !found || v == "" {
		return "", false
	}
	return v, true
}

func (m *Manager) set(key, value string) {
	if err := m.repo.Set(key, value); err != nil {
		log.Err(err).Str("key", key).Msg("Session store write failed")
	}
}
