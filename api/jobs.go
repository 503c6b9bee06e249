package api

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/jobs"
)

// RunJob starts a catalog job and returns its handle. onComplete runs only
// after a successful outcome and may be nil.
func (c *Client) RunJob(ctx context.Context, name string, params map[string]string, onComplete func()) (*jobs.Handle, error) {
	def, ok := c.catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("[Client RunJob] job %q: %w", name, apperrors.ErrNotFound)
	}
	job, err := def.Job(params)
	if err != nil {
		return nil, fmt.Errorf("[Client RunJob] %w", err)
	}
	job.OnComplete = onComplete
	return c.tracker.Run(ctx, job)
}

func (c *Client) SpeedTestAll(ctx context.Context, onComplete func()) (*jobs.Handle, error) {
	return c.RunJob(ctx, "speedtest-all", nil, onComplete)
}

func (c *Client) SpeedTestLead(ctx context.Context, leadID int, onComplete func()) (*jobs.Handle, error) {
	return c.RunJob(ctx, "speedtest-lead", map[string]string{"lead_id": strconv.Itoa(leadID)}, onComplete)
}

func (c *Client) ProcessPunchlines(ctx context.Context, onComplete func()) (*jobs.Handle, error) {
	return c.RunJob(ctx, "punchlines", nil, onComplete)
}

// ImportGoHighLevel imports perPage leads from the CRM; zero uses the catalog default.
func (c *Client) ImportGoHighLevel(ctx context.Context, perPage int, onComplete func()) (*jobs.Handle, error) {
	params := map[string]string{}
	if perPage > 0 {
		params["per_page"] = strconv.Itoa(perPage)
	}
	return c.RunJob(ctx, "import-gohighlevel", params, onComplete)
}
