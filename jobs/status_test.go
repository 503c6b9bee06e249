package jobs_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-leads-client/jobs"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want jobs.JobStatus
	}{
		{
			name: "plain",
			body: `{"id":"abc","status":"FAILURE","error":"boom"}`,
			want: jobs.JobStatus{ID: "abc", Status: jobs.StatusFailure, Error: "boom"},
		},
		{
			name: "numeric id",
			body: `{"id":12345678901,"status":"PENDING"}`,
			want: jobs.JobStatus{ID: "12345678901", Status: jobs.StatusPending},
		},
		{
			name: "error object",
			body: `{"id":"abc","status":"FAILURE","error":{"exc_type":"ValueError","message":"bad row"}}`,
			want: jobs.JobStatus{ID: "abc", Status: jobs.StatusFailure, Error: "bad row"},
		},
		{
			name: "error list is ignored",
			body: `{"id":"abc","status":"FAILURE","error":["x"]}`,
			want: jobs.JobStatus{ID: "abc", Status: jobs.StatusFailure},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got jobs.JobStatus
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			require.Equal(t, tt.want, got)
		})
	}

	var got jobs.JobStatus
	require.Error(t, json.Unmarshal([]byte(`{"status":7}`), &got))
}

func TestJobStatus_ResultMessage(t *testing.T) {
	var s jobs.JobStatus
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","status":"SUCCESS","result":{"message":"42 done"}}`), &s))
	require.Equal(t, "42 done", s.ResultMessage())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","status":"SUCCESS","result":[1]}`), &s))
	require.Empty(t, s.ResultMessage())
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range []jobs.Status{jobs.StatusSuccess, jobs.StatusFailure, jobs.StatusRevoked} {
		require.True(t, s.IsTerminal(), s)
	}
	for _, s := range []jobs.Status{jobs.StatusPending, jobs.StatusRetry, "STARTED", ""} {
		require.False(t, s.IsTerminal(), s)
	}
}
