// Package jobs turns a fire-and-forget backend job trigger into a bounded
// polling loop that ends in exactly one terminal notification.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 150
	statusPath          = "/task-status/"
)

// Doer sends HTTP requests. Both *gateway.Gateway and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Copy is the user-facing text for the start, success and error notifications.
type Copy struct {
	StartTitle         string `toml:"start_title"`
	StartDescription   string `toml:"start_description"`
	SuccessTitle       string `toml:"success_title"`
	SuccessDescription string `toml:"success_description"`
	ErrorTitle         string `toml:"error_title"`
	ErrorDescription   string `toml:"error_description"`
}

// Job describes one trigger request.
type Job struct {
	Endpoint string
	Method   string // defaults to POST
	Body     any    // JSON encoded when not nil
	Copy
	// OnComplete runs after the success notification and never on failure.
	OnComplete func()
}

type Tracker struct {
	doer        Doer
	baseURL     string
	notifier    notify.Notifier
	interval    time.Duration
	maxAttempts int
	sleep       Sleeper
}

type Option func(*Tracker)

// WithBaseURL prefixes relative endpoints. Leave unset when the Doer resolves paths itself.
func WithBaseURL(baseURL string) Option {
	return func(t *Tracker) {
		t.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) {
		t.notifier = n
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.interval = d
	}
}

func WithMaxAttempts(n int) Option {
	return func(t *Tracker) {
		t.maxAttempts = n
	}
}

func WithSleeper(s Sleeper) Option {
	return func(t *Tracker) {
		t.sleep = s
	}
}

func NewTracker(doer Doer, options ...Option) *Tracker {
	t := &Tracker{
		doer:        doer,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range options {
		opt(t)
	}

	if t.notifier == nil {
		t.notifier = notify.LogNotifier{}
	}
	if t.sleep == nil {
		t.sleep = SleepContext
	}
	if t.maxAttempts <= 0 {
		t.maxAttempts = DefaultMaxAttempts
	}
	return t
}

// Handle is one tracked job. For immediate results it is already done when Run returns.
type Handle struct {
	ID     string          // local correlation id
	TaskID string          // backend task id, empty for immediate results
	Body   json.RawMessage // trigger response body

	attempts atomic.Int32
	done     chan struct{}
	once     sync.Once
	outcome  Outcome
	cancel   context.CancelFunc
}

func newHandle(body json.RawMessage) *Handle {
	return &Handle{
		ID:     uuid.NewString(),
		Body:   body,
		done:   make(chan struct{}),
		cancel: func() {},
	}
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Outcome returns the terminal outcome if there is one yet.
func (h *Handle) Outcome() (Outcome, bool) {
	select {
	case <-h.done:
		return h.outcome, true
	default:
		return nil, false
	}
}

// Wait blocks until the job is terminal or ctx is done. Giving up on ctx
// does not stop polling; use Cancel for that.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops polling. The job ends as Abandoned unless it already finished.
func (h *Handle) Cancel() {
	h.cancel()
}

// Attempts is the number of status polls made so far.
func (h *Handle) Attempts() int {
	return int(h.attempts.Load())
}

func (h *Handle) finish(o Outcome) bool {
	finished := false
	h.once.Do(func() {
		h.outcome = o
		close(h.done)
		finished = true
	})
	return finished
}

// Run notifies that the job started and sends the trigger request. A failed
// trigger is notified and also returned. Once a task id is returned, every
// further outcome is reported through the notifier and the Handle only.
func (t *Tracker) Run(ctx context.Context, job Job) (*Handle, error) {
	t.notifier.Notify(notify.Notification{Title: job.StartTitle, Description: job.StartDescription})

	body, err := t.trigger(ctx, job)
	if err != nil {
		log.Err(err).Str("endpoint", job.Endpoint).Msg("Job start error")
		t.notifier.Notify(notify.Notification{
			Title:       job.ErrorTitle,
			Description: job.ErrorDescription,
			Variant:     notify.VariantDestructive,
		})
		return nil, fmt.Errorf("[Tracker Run] %s: %w", job.Endpoint, err)
	}

	h := newHandle(body)
	ack := parseAck(body)
	if ack.taskID == "" {
		t.succeed(h, job, Succeeded{Message: firstNonEmpty(ack.message, job.SuccessDescription), Data: body})
		return h, nil
	}

	h.TaskID = ack.taskID
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h.cancel = cancel
	go t.poll(pollCtx, h, job)
	return h, nil
}

func (t *Tracker) poll(ctx context.Context, h *Handle, job Job) {
	defer h.cancel()

	logger := log.With().Str("job_id", h.ID).Str("task_id", h.TaskID).Logger()
	logger.Debug().Dur("interval", t.interval).Int("max_attempts", t.maxAttempts).Msg("Polling job status")

	reason := TimeoutPending
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if err := t.sleep(ctx, t.interval); err != nil {
			t.abandon(h, logger)
			return
		}

		h.attempts.Store(int32(attempt))
		status, err := t.fetchStatus(ctx, h.TaskID)
		if err != nil {
			if ctx.Err() != nil {
				t.abandon(h, logger)
				return
			}
			logger.Err(err).Int("attempt", attempt).Msg("Error checking job status")
			reason = TimeoutPollError
			continue
		}

		logger.Debug().Int("attempt", attempt).Str("status", string(status.Status)).Msg("Job status")
		if !status.Status.IsTerminal() {
			reason = TimeoutUnknownStatus
			if status.Status == StatusPending || status.Status == StatusRetry {
				reason = TimeoutPending
			}
			continue
		}

		switch status.Status {
		case StatusSuccess:
			t.succeed(h, job, Succeeded{Message: firstNonEmpty(status.ResultMessage(), job.SuccessDescription), Data: status.Result})
		case StatusFailure:
			t.end(h, job, Failed{Message: firstNonEmpty(status.Error, job.ErrorDescription)})
		default:
			t.end(h, job, Cancelled{})
		}
		return
	}

	logger.Warn().Int("attempts", t.maxAttempts).Msg("Job polling budget exhausted")
	t.end(h, job, TimedOut{Reason: reason, Attempts: t.maxAttempts})
}

func (t *Tracker) succeed(h *Handle, job Job, o Succeeded) {
	if !t.end(h, job, o) {
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

func (t *Tracker) abandon(h *Handle, logger zerolog.Logger) {
	logger.Info().Msg("Job tracking stopped")
	t.end(h, Job{}, Abandoned{})
}

// end records the outcome and sends its notification. Only the first call for a handle has any effect.
func (t *Tracker) end(h *Handle, job Job, o Outcome) bool {
	if !h.finish(o) {
		return false
	}
	t.notifier.Notify(OutcomeNotification(job.Copy, o))
	return true
}

// OutcomeNotification maps a terminal outcome to the notification shown for it.
func OutcomeNotification(c Copy, o Outcome) notify.Notification {
	switch o := o.(type) {
	case Succeeded:
		return notify.Notification{Title: c.SuccessTitle, Description: o.Message}
	case Failed:
		return notify.Notification{Title: c.ErrorTitle, Description: o.Message, Variant: notify.VariantDestructive}
	case Cancelled:
		return notify.Notification{Title: "Job Cancelled", Description: "The job was cancelled.", Variant: notify.VariantDestructive}
	case TimedOut:
		switch o.Reason {
		case TimeoutUnknownStatus:
			return notify.Notification{Title: "Job Status Unknown", Description: "Unable to determine job status. Please check back later.", Variant: notify.VariantDestructive}
		case TimeoutPollError:
			return notify.Notification{Title: "Job Status Error", Description: "Unable to check job status. Please refresh and try again.", Variant: notify.VariantDestructive}
		default:
			return notify.Notification{Title: "Job Timeout", Description: "The job is taking longer than expected. Please check back later.", Variant: notify.VariantDestructive}
		}
	default:
		return notify.Notification{Title: "Job Tracking Stopped", Description: "Stopped checking job status. The job may still complete on the server."}
	}
}

func (t *Tracker) trigger(ctx context.Context, job Job) (json.RawMessage, error) {
	method := job.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if job.Body != nil {
		raw, err := json.Marshal(job.Body)
		if err != nil {
			return nil, apperrors.Wrapf(err, "encode body")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.url(job.Endpoint), body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP error! status: %d", apperrors.ErrBadResponse, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: body is not JSON", apperrors.ErrBadResponse)
	}
	return raw, nil
}

func (t *Tracker) fetchStatus(ctx context.Context, taskID string) (*JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url(statusPath+url.PathEscape(taskID)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP error! status: %d", apperrors.ErrBadResponse, resp.StatusCode)
	}

	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBadResponse, err)
	}
	return &status, nil
}

func (t *Tracker) url(endpoint string) string {
	if t.baseURL == "" || strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return t.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

type ack struct {
	taskID  string
	message string
}

// parseAck reads task_id and message from an object body. Other JSON shapes
// count as an immediate result with no message.
func parseAck(body json.RawMessage) ack {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ack{}
	}

	var a ack
	switch id := fields["task_id"].(type) {
	case string:
		a.taskID = id
	case float64:
		a.taskID = fmt.Sprintf("%.0f", id)
	}
	a.message, _ = fields["message"].(string)
	return a
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
