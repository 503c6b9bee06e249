package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-leads-client/api"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "LEADS_PASSWORD"

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnvVar)
			}
			if password == "" {
				return fmt.Errorf("a password is required (--password or %s)", passwordEnvVar)
			}
			if err := a.client.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, defaults to $"+passwordEnvVar)
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.client.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a valid session is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if _, ok := a.session.Current(); !ok {
				fmt.Fprintln(out, "Not signed in")
				return nil
			}

			state := "valid"
			if !a.session.IsValid() {
				state = "expired"
			}
			fmt.Fprintf(out, "Session:    %s\n", state)
			if exp, ok := a.session.ExpirationInstant(); ok {
				fmt.Fprintf(out, "Expires at: %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
			}
			if _, ok := a.session.CurrentRefreshToken(); ok {
				fmt.Fprintln(out, "Refresh:    available")
			}
			if claims, err := a.session.Claims(); err == nil && claims.Subject != "" {
				fmt.Fprintf(out, "Subject:    %s\n", claims.Subject)
			}
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.Profile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.DisplayName())
			fmt.Fprintln(out, p.Headline())
			if p.Email != "" {
				fmt.Fprintf(out, "Email: %s\n", p.Email)
			}
			if p.Phone != "" {
				fmt.Fprintf(out, "Phone: %s\n", p.Phone)
			}
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var r api.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; a one-time code is emailed for verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.Password == "" {
				r.Password = os.Getenv(passwordEnvVar)
			}
			if err := a.client.Register(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Run `leadsctl verify-otp --email %s --otp <code>` next.\n", r.Email)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&r.Username, "username", "", "username")
	flags.StringVar(&r.FullName, "full-name", "", "full name")
	flags.StringVar(&r.Email, "email", "", "email address")
	flags.StringVar(&r.Phone, "phone", "", "phone number")
	flags.StringVar(&r.Company, "company", "", "company")
	flags.StringVar(&r.Position, "position", "", "position")
	flags.StringVar(&r.Password, "password", "", "password, defaults to $"+passwordEnvVar)
	flags.StringVar(&r.ConfirmPassword, "confirm-password", "", "password confirmation")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newVerifyOTPCmd(a *app) *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Verify the one-time code sent after registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.VerifyOTP(cmd.Context(), email, otp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email verified, you can now sign in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("otp")
	return cmd
}

func newResendOTPCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend-otp",
		Short: "Send a new one-time code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.ResendOTP(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "A new code was sent to %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
