package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	var noBanner bool

	rootCmd := &cobra.Command{
		Use:           "leadsctl",
		Short:         "Command-line client for the leads backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !noBanner && cmd.Name() == "login" {
				displayAppname(a.errOut, a.cfg.GetAppName())
			}
			return a.open(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !noBanner {
				displayAppname(a.errOut, a.cfg.GetAppName())
			}
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "do not print the banner")
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newProfileCmd(a),
		newRegisterCmd(a),
		newVerifyOTPCmd(a),
		newResendOTPCmd(a),
		newLeadsCmd(a),
		newJobsCmd(a),
		newMailCmd(a),
		newMonitorCmd(a),
	)
	return rootCmd
}
