package main

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/monitor"
	"github.com/spf13/cobra"
)

func newMonitorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch the session, warn before it expires and sign out when it does",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			m := monitor.New(
				a.session,
				monitor.WithNotifier(a.notifier),
				monitor.WithInterval(a.cfg.GetMonitorInterval()),
				monitor.WithExpiryBuffer(a.cfg.GetExpiryBuffer()),
				monitor.WithOnExpired(cancel),
			)
			if m.Check(ctx) == monitor.StateNoSession {
				return errors.New("not signed in, run `leadsctl login` first")
			}

			err := m.Run(ctx)
			if apperrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
