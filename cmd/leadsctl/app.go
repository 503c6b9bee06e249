package main

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/go-leads-client/api"
	"github.com/jrsteele09/go-leads-client/gateway"
	"github.com/jrsteele09/go-leads-client/internal/config"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/jobs"
	"github.com/jrsteele09/go-leads-client/notify"
	"github.com/jrsteele09/go-leads-client/session"
	"github.com/jrsteele09/go-leads-client/session/filestore"
	"github.com/jrsteele09/go-leads-client/session/redisstore"
	"github.com/jrsteele09/go-leads-client/session/sqlitestore"
	"github.com/rs/zerolog/log"
)

// app holds everything a command needs. open wires it from config.
type app struct {
	cfg      config.Config
	out      io.Writer
	errOut   io.Writer
	notifier notify.Notifier

	closer  io.Closer
	session *session.Manager
	client  *api.Client
}

func newApp(c config.Config, out, errOut io.Writer) *app {
	return &app{
		cfg:      c,
		out:      out,
		errOut:   errOut,
		notifier: notify.Multi{
			notify.NewSynchronized(notify.NewTerminal(errOut)),
			notify.Func(func(n notify.Notification) {
				log.Debug().Str("title", n.Title).Str("variant", string(n.Variant)).Msg("Notification")
			}),
		},
	}
}

func (a *app) open(ctx context.Context) error {
	store, closer, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.closer = closer

	httpClient := &http.Client{Timeout: a.cfg.GetHTTPTimeout()}
	baseURL := a.cfg.GetBaseURL()

	a.session = session.NewManager(
		store,
		session.WithRefresher(session.NewHTTPRefresher(baseURL, httpClient)),
		session.WithExpiryBuffer(a.cfg.GetExpiryBuffer()),
		session.WithDefaultExpiry(a.cfg.GetDefaultTokenExpiry()),
	)
	if a.session.DetectCorruption() {
		log.Warn().Msg("Stored session was unreadable and has been cleared")
	}

	gw := gateway.New(
		a.session,
		gateway.WithHTTPClient(httpClient),
		gateway.WithBaseURL(baseURL),
		gateway.WithRateLimit(a.cfg.GetRateLimit()),
		gateway.WithOnUnauthorized(a.redirectToLogin),
	)

	catalog := jobs.DefaultCatalog()
	if path := a.cfg.GetJobsFile(); path != "" {
		if catalog, err = catalog.WithFile(path); err != nil {
			return apperrors.Wrapf(err, "load jobs file")
		}
	}

	tracker := jobs.NewTracker(
		gw,
		jobs.WithNotifier(a.notifier),
		jobs.WithPollInterval(a.cfg.GetPollInterval()),
		jobs.WithMaxAttempts(a.cfg.GetPollMaxAttempts()),
	)

	a.client = api.New(baseURL, a.session, gw,
		api.WithHTTPClient(httpClient),
		api.WithTracker(tracker),
		api.WithCatalog(catalog),
	)
	return nil
}

func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *app) redirectToLogin() {
	a.notifier.Notify(notify.Notification{
		Title:       "Signed Out",
		Description: "The server rejected your session. Run `leadsctl login` to sign in again.",
		Variant:     notify.VariantDestructive,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(ctx context.Context, c config.StoreConfig) (session.Store, io.Closer, error) {
	kind := c.GetStoreKind()
	log.Debug().Str("store", string(kind)).Msg("Opening session store")

	switch kind {
	case config.StoreKindSQLite:
		s, err := sqlitestore.Open(c.GetSQLitePath())
		if err != nil {
			return nil, nil, apperrors.Wrapf(err, "open sqlite session store")
		}
		return s, s, nil
	case config.StoreKindRedis:
		s, err := redisstore.Dial(ctx, c.GetRedisAddr(), c.GetRedisPrefix())
		if err != nil {
			return nil, nil, apperrors.Wrapf(err, "open redis session store")
		}
		return s, s, nil
	case config.StoreKindMemory:
		return session.NewMemoryStore(), nopCloser{}, nil
	default:
		var options []filestore.Option
		if p := c.GetSessionPassphrase(); p != "" {
			options = append(options, filestore.WithPassphrase(p))
		}
		return filestore.New(c.GetSessionFile(), options...), nopCloser{}, nil
	}
}
