package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jrsteele09/go-leads-client/jobs"
	"github.com/spf13/cobra"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run background jobs and follow them to completion",
	}
	cmd.AddCommand(newJobsListCmd(a), newJobsRunCmd(a))
	return cmd
}

func newJobsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the jobs that can be run",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := a.client.Catalog()
			t := table.New().Border(lipgloss.RoundedBorder()).Headers("NAME", "ENDPOINT", "DESCRIPTION")
			for _, name := range catalog.Names() {
				d, _ := catalog.Get(name)
				t.Row(d.Name, d.Endpoint, d.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}

func newJobsRunCmd(a *app) *cobra.Command {
	var params map[string]string
	var perPage int
	var detach bool

	cmd := &cobra.Command{
		Use:   "run <name> [lead-id]",
		Short: "Start a job and wait for its outcome",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]string{}
			for k, v := range params {
				values[k] = v
			}
			if len(args) == 2 {
				if _, err := strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("lead id %q is not a number", args[1])
				}
				values["lead_id"] = args[1]
			}
			if perPage > 0 {
				values["per_page"] = strconv.Itoa(perPage)
			}

			h, err := a.client.RunJob(cmd.Context(), args[0], values, nil)
			if err != nil {
				return err
			}
			if detach {
				if h.TaskID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Started task %s\n", h.TaskID)
				}
				h.Cancel()
				return nil
			}
			return waitForJob(cmd.Context(), h)
		},
	}
	cmd.Flags().StringToStringVar(&params, "param", nil, "job parameter, e.g. --param lead_id=42")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "leads to import for import-gohighlevel")
	cmd.Flags().BoolVar(&detach, "detach", false, "return once the job has started")
	return cmd
}

// waitForJob blocks until h is terminal. An interrupt stops tracking; the job
// itself keeps running on the server.
func waitForJob(ctx context.Context, h *jobs.Handle) error {
	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
	}
	o, _ := h.Outcome()
	return o.Err()
}
