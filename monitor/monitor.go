// Package monitor watches the stored session and reacts before and when it expires.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-leads-client/notify"
	"github.com/rs/zerolog/log"
)

const (
	DefaultInterval     = time.Minute
	DefaultWarnBefore   = 5 * time.Minute
	DefaultExpiryBuffer = 5 * time.Minute
)

// Session is the part of *session.Manager the monitor uses.
type Session interface {
	Current() (string, bool)
	IsValid() bool
	ExpirationInstant() (time.Time, bool)
	Refresh(ctx context.Context) bool
	Clear()
}

type State int

const (
	StateNoSession State = iota
	StateValid
	StateExpiringSoon
	StateRefreshed
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpiringSoon:
		return "expiring soon"
	case StateRefreshed:
		return "refreshed"
	case StateExpired:
		return "expired"
	default:
		return "no session"
	}
}

type Monitor struct {
	session      Session
	notifier     notify.Notifier
	interval     time.Duration
	warnBefore   time.Duration
	expiryBuffer time.Duration
	nowFunc      func() time.Time
	onExpired    func()

	mu     sync.Mutex
	warned string // access token the warning was sent for
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(m *Monitor) {
		m.notifier = n
	}
}

// WithWarnBefore sets how long before the session stops being valid the warning is sent.
func WithWarnBefore(d time.Duration) Option {
	return func(m *Monitor) {
		m.warnBefore = d
	}
}

// WithExpiryBuffer must match the session manager's buffer.
func WithExpiryBuffer(d time.Duration) Option {
	return func(m *Monitor) {
		m.expiryBuffer = d
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(m *Monitor) {
		m.nowFunc = now
	}
}

// WithOnExpired sets the hook run after an expired session has been cleared.
func WithOnExpired(fn func()) Option {
	return func(m *Monitor) {
		m.onExpired = fn
	}
}

func New(sess Session, options ...Option) *Monitor {
	m := &Monitor{
		session:      sess,
		interval:     DefaultInterval,
		warnBefore:   DefaultWarnBefore,
		expiryBuffer: DefaultExpiryBuffer,
		nowFunc:      time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = notify.LogNotifier{}
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	return m
}

// Run checks immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one pass. An invalid session gets one refresh attempt; if that
// fails it is cleared, "Session Expired" is sent and the expiry hook runs.
func (m *Monitor) Check(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.session.Current()
	if !ok {
		return StateNoSession
	}

	if !m.session.IsValid() {
		if m.session.Refresh(ctx) {
			log.Info().Msg("Session refreshed by monitor")
			m.warned = ""
			return StateRefreshed
		}

		log.Info().Msg("Token expired, logging out user")
		m.session.Clear()
		m.warned = ""
		m.notifier.Notify(notify.Notification{
			Title:       "Session Expired",
			Description: "Your session has expired. Please sign in again.",
			Variant:     notify.VariantDestructive,
		})
		if m.onExpired != nil {
			m.onExpired()
		}
		return StateExpired
	}

	expiresAt, ok := m.session.ExpirationInstant()
	if !ok {
		return StateValid
	}
	remaining := expiresAt.Sub(m.nowFunc()) - m.expiryBuffer
	if remaining > m.warnBefore {
		return StateValid
	}

	if m.warned != token {
		m.warned = token
		log.Warn().Dur("remaining", remaining).Msg("Session expiring soon")
		m.notifier.Notify(notify.Notification{
			Title:       "Session Expiring Soon",
			Description: "Your session will expire in 5 minutes. Please save your work.",
			Variant:     notify.VariantDefault,
		})
	}
	return StateExpiringSoon
}
