package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
)

// Status is the backend task queue state of a job.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRetry   Status = "RETRY"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusRevoked Status = "REVOKED"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusRevoked:
		return true
	default:
		return false
	}
}

// JobStatus is the body of GET /task-status/{task_id}.
type JobStatus struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// UnmarshalJSON accepts a numeric id and an error object carrying a message.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     json.RawMessage `json:"id"`
		Status Status          `json:"status"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = JobStatus{
		ID:     looseString(raw.ID),
		Status: raw.Status,
		Result: raw.Result,
		Error:  looseString(raw.Error),
	}
	return nil
}

// looseString reads a string, a number or an object's message field.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case map[string]any:
		if m, ok := v["message"].(string); ok {
			return m
		}
	}
	return ""
}

// ResultMessage returns result.message when the result is an object carrying one.
func (s JobStatus) ResultMessage() string {
	return messageField(s.Result)
}

func messageField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	return m.Message
}

// Outcome is the terminal result of a tracked job. The concrete type is one of
// Succeeded, Failed, Cancelled, TimedOut or Abandoned.
type Outcome interface {
	// Err is nil only for Succeeded.
	Err() error
	outcome()
}

type Succeeded struct {
	Message string
	Data    json.RawMessage
}

type Failed struct {
	Message string
}

// Cancelled means the backend revoked the task.
type Cancelled struct{}

// TimedOut means the attempt budget ran out while the task was not terminal.
// The job may still complete server-side.
type TimedOut struct {
	Reason   TimeoutReason
	Attempts int
}

// Abandoned means the local caller stopped tracking before a terminal state.
type Abandoned struct{}

type TimeoutReason int

const (
	// TimeoutPending is the last status seen was PENDING or RETRY.
	TimeoutPending TimeoutReason = iota
	// TimeoutUnknownStatus is the last status seen was not a known state.
	TimeoutUnknownStatus
	// TimeoutPollError is the last attempt failed to fetch a status.
	TimeoutPollError
)

func (Succeeded) outcome() {}
func (Failed) outcome() {}
func (Cancelled) outcome() {}
func (TimedOut) outcome() {}
func (Abandoned) outcome() {}

func (Succeeded) Err() error { return nil }
func (o Failed) Err() error { return fmt.Errorf("%w: %s", apperrors.ErrJobFailed, o.Message) }
func (Cancelled) Err() error { return apperrors.ErrJobCancelled }
func (o TimedOut) Err() error { return fmt.Errorf("%w after %d attempts", apperrors.ErrJobTimedOut, o.Attempts) }
func (Abandoned) Err() error { return context.Canceled }

// Sleeper waits for d or until ctx is done. Tests substitute one that returns immediately.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the wall-clock Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
