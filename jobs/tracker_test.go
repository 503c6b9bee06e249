package jobs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/jobs"
	"github.com/jrsteele09/go-leads-client/notify"
	"github.com/jrsteele09/go-leads-client/notify/notifyfake"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

var testCopy = jobs.Copy{
	StartTitle:         "Processing Punchlines",
	StartDescription:   "Generating punchlines for all leads...",
	SuccessTitle:       "Punchlines Complete",
	SuccessDescription: "Punchlines processed for all leads",
	ErrorTitle:         "Punchlines Failed",
	ErrorDescription:   "Failed to process punchlines for all leads",
}

// fakeBackend serves a trigger endpoint and scripted task-status responses.
type fakeBackend struct {
	server       *httptest.Server
	trigger      func(w http.ResponseWriter, r *http.Request)
	statuses     func(call int, w http.ResponseWriter)
	triggerCalls atomic.Int32
	statusCalls  atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/process-punchlines", func(w http.ResponseWriter, r *http.Request) {
		b.triggerCalls.Add(1)
		b.trigger(w, r)
	})
	mux.HandleFunc("/task-status/", func(w http.ResponseWriter, r *http.Request) {
		n := int(b.statusCalls.Add(1))
		b.statuses(n, w)
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

type testFixture struct {
	backend   *fakeBackend
	recorder  *notifyfake.Recorder
	tracker   *jobs.Tracker
	completed atomic.Int32
}

func setupTestFixture(t *testing.T, options ...jobs.Option) *testFixture {
	t.Helper()

	f := &testFixture{
		backend:  newFakeBackend(t),
		recorder: notifyfake.NewRecorder(),
	}
	options = append([]jobs.Option{
		jobs.WithBaseURL(f.backend.server.URL),
		jobs.WithNotifier(f.recorder),
		jobs.WithSleeper(noSleep),
	}, options...)
	f.tracker = jobs.NewTracker(f.backend.server.Client(), options...)
	return f
}

func (f *testFixture) job() jobs.Job {
	return jobs.Job{
		Endpoint:   "/process-punchlines",
		Copy:       testCopy,
		OnComplete: func() { f.completed.Add(1) },
	}
}

func waitOutcome(t *testing.T, h *jobs.Handle) jobs.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	o, err := h.Wait(ctx)
	require.NoError(t, err)
	return o
}

func TestTracker_ImmediateResultSkipsPolling(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, map[string]any{"message": "done"})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)
	require.Empty(t, h.TaskID)

	o, ok := h.Outcome()
	require.True(t, ok)
	require.Equal(t, "done", o.(jobs.Succeeded).Message)
	require.JSONEq(t, `{"message":"done"}`, string(h.Body))

	require.Zero(t, f.backend.statusCalls.Load())
	require.Equal(t, int32(1), f.completed.Load())
	require.Equal(t, []string{testCopy.StartTitle, testCopy.SuccessTitle}, f.recorder.Titles())
	require.Equal(t, "done", f.recorder.Last().Description)
}

func TestTracker_ImmediateResultWithoutMessageUsesDefault(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []int{1, 2, 3})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	o, ok := h.Outcome()
	require.True(t, ok)
	require.Equal(t, testCopy.SuccessDescription, o.(jobs.Succeeded).Message)
	require.Equal(t, testCopy.SuccessDescription, f.recorder.Last().Description)
}

func TestTracker_TriggerFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrBadResponse)
	require.Nil(t, h)

	require.Zero(t, f.backend.statusCalls.Load())
	require.Zero(t, f.completed.Load())
	require.Equal(t, []string{testCopy.StartTitle, testCopy.ErrorTitle}, f.recorder.Titles())
	require.Equal(t, notify.VariantDestructive, f.recorder.Last().Variant)
	require.Equal(t, testCopy.ErrorDescription, f.recorder.Last().Description)
}

func TestTracker_PendingThenSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		if call < 3 {
			writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusPending})
			return
		}
		writeJSON(w, map[string]any{"id": "abc", "status": "SUCCESS", "result": map[string]any{"message": "42 punchlines"}})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)
	require.Equal(t, "abc", h.TaskID)

	o := waitOutcome(t, h)
	require.Equal(t, "42 punchlines", o.(jobs.Succeeded).Message)
	require.NoError(t, o.Err())

	require.Equal(t, int32(3), f.backend.statusCalls.Load())
	require.Equal(t, 3, h.Attempts())
	require.Equal(t, int32(1), f.completed.Load())
	require.Equal(t, []string{testCopy.StartTitle, testCopy.SuccessTitle}, f.recorder.Titles())
}

func TestTracker_SuccessWithoutResultMessageUsesDefault(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusSuccess})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	o := waitOutcome(t, h)
	require.Equal(t, testCopy.SuccessDescription, o.(jobs.Succeeded).Message)
}

func TestTracker_Failure(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusFailure, Error: "boom"})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	o := waitOutcome(t, h)
	require.Equal(t, jobs.Failed{Message: "boom"}, o)
	require.ErrorIs(t, o.Err(), apperrors.ErrJobFailed)

	require.Zero(t, f.completed.Load())
	last := f.recorder.Last()
	require.Equal(t, testCopy.ErrorTitle, last.Title)
	require.Equal(t, "boom", last.Description)
	require.Equal(t, notify.VariantDestructive, last.Variant)
}

func TestTracker_FailureWithStructuredError(t *testing.T) {
	tests := []struct {
		name    string
		err     any
		message string
	}{
		{"object with message", map[string]any{"exc_type": "ValueError", "message": "boom"}, "boom"},
		{"object without message", map[string]any{"exc_type": "ValueError"}, testCopy.ErrorDescription},
		{"null", nil, testCopy.ErrorDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"task_id": "abc"})
			}
			f.backend.statuses = func(call int, w http.ResponseWriter) {
				writeJSON(w, map[string]any{"id": "abc", "status": "FAILURE", "error": tt.err})
			}

			h, err := f.tracker.Run(context.Background(), f.job())
			require.NoError(t, err)

			require.Equal(t, jobs.Failed{Message: tt.message}, waitOutcome(t, h))
			require.Equal(t, int32(1), f.backend.statusCalls.Load())
			require.Equal(t, tt.message, f.recorder.Last().Description)
		})
	}
}

func TestTracker_NumericTaskID(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": 17})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, map[string]any{"id": 17, "status": "SUCCESS"})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)
	require.Equal(t, "17", h.TaskID)

	o := waitOutcome(t, h)
	require.Equal(t, testCopy.SuccessDescription, o.(jobs.Succeeded).Message)
	require.Equal(t, int32(1), f.backend.statusCalls.Load())
	require.Equal(t, int32(1), f.completed.Load())
}

func TestTracker_Revoked(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusRevoked})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	o := waitOutcome(t, h)
	require.Equal(t, jobs.Cancelled{}, o)
	require.Equal(t, "Job Cancelled", f.recorder.Last().Title)
	require.Zero(t, f.completed.Load())
}

func TestTracker_TimeoutAfterBudget(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusPending})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	o := waitOutcome(t, h)
	require.Equal(t, jobs.TimedOut{Reason: jobs.TimeoutPending, Attempts: 150}, o)
	require.ErrorIs(t, o.Err(), apperrors.ErrJobTimedOut)

	// Give a stray 151st poll a chance to show up.
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(150), f.backend.statusCalls.Load())
	require.Equal(t, "Job Timeout", f.recorder.Last().Title)
	require.Equal(t, 2, f.recorder.Len())
}

func TestTracker_TimeoutReasons(t *testing.T) {
	cases := []struct {
		name     string
		statuses func(call int, w http.ResponseWriter)
		reason   jobs.TimeoutReason
		title    string
	}{
		{
			name: "unknown status",
			statuses: func(call int, w http.ResponseWriter) {
				writeJSON(w, map[string]any{"id": "abc", "status": "STARTED"})
			},
			reason: jobs.TimeoutUnknownStatus,
			title:  "Job Status Unknown",
		},
		{
			name: "poll errors",
			statuses: func(call int, w http.ResponseWriter) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			reason: jobs.TimeoutPollError,
			title:  "Job Status Error",
		},
		{
			name: "retry",
			statuses: func(call int, w http.ResponseWriter) {
				writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusRetry})
			},
			reason: jobs.TimeoutPending,
			title:  "Job Timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, jobs.WithMaxAttempts(4))
			f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"task_id": "abc"})
			}
			f.backend.statuses = tc.statuses

			h, err := f.tracker.Run(context.Background(), f.job())
			require.NoError(t, err)

			o := waitOutcome(t, h)
			require.Equal(t, jobs.TimedOut{Reason: tc.reason, Attempts: 4}, o)
			require.Equal(t, int32(4), f.backend.statusCalls.Load())
			require.Equal(t, tc.title, f.recorder.Last().Title)
		})
	}
}

func TestTracker_PollErrorsAreTransient(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		if call <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusSuccess})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	o := waitOutcome(t, h)
	require.IsType(t, jobs.Succeeded{}, o)
	require.Equal(t, int32(3), f.backend.statusCalls.Load())
}

func TestTracker_CancelStopsPolling(t *testing.T) {
	sleeping := make(chan struct{})
	var once sync.Once
	blockingSleep := func(ctx context.Context, d time.Duration) error {
		once.Do(func() { close(sleeping) })
		<-ctx.Done()
		return ctx.Err()
	}

	f := setupTestFixture(t, jobs.WithSleeper(blockingSleep))
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}

	h, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	<-sleeping
	h.Cancel()

	o := waitOutcome(t, h)
	require.Equal(t, jobs.Abandoned{}, o)
	require.Zero(t, f.backend.statusCalls.Load())
	require.Equal(t, []string{testCopy.StartTitle, "Job Tracking Stopped"}, f.recorder.Titles())
}

func TestTracker_CallerContextDoesNotStopPolling(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusSuccess})
	}

	ctx, cancel := context.WithCancel(context.Background())
	h, err := f.tracker.Run(ctx, f.job())
	require.NoError(t, err)
	cancel()

	o := waitOutcome(t, h)
	require.IsType(t, jobs.Succeeded{}, o)
}

func TestTracker_IndependentJobs(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "abc"})
	}
	f.backend.statuses = func(call int, w http.ResponseWriter) {
		writeJSON(w, jobs.JobStatus{ID: "abc", Status: jobs.StatusSuccess})
	}

	h1, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)
	h2, err := f.tracker.Run(context.Background(), f.job())
	require.NoError(t, err)

	require.NotEqual(t, h1.ID, h2.ID)
	waitOutcome(t, h1)
	waitOutcome(t, h2)

	require.Equal(t, int32(2), f.backend.triggerCalls.Load())
	require.Equal(t, int32(2), f.backend.statusCalls.Load())
	require.Equal(t, int32(2), f.completed.Load())
	require.Equal(t, 4, f.recorder.Len())
}

func TestTracker_SendsBodyAndMethod(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.trigger = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "all", body["scope"])
		writeJSON(w, map[string]any{"message": "queued"})
	}

	job := f.job()
	job.Method = http.MethodPut
	job.Body = map[string]string{"scope": "all"}

	_, err := f.tracker.Run(context.Background(), job)
	require.NoError(t, err)
}
