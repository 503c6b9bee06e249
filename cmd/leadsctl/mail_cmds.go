package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newMailCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Draft, save and send outreach email for a lead",
	}
	cmd.AddCommand(newMailGenerateCmd(a), newMailSaveCmd(a), newMailSendCmd(a))
	return cmd
}

func leadIDArg(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("lead id %q is not a number", args[0])
	}
	return id, nil
}

func newMailGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <lead-id>",
		Short: "Generate an email draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := leadIDArg(args)
			if err != nil {
				return err
			}
			draft, err := a.client.GenerateMail(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), draft)
			return nil
		},
	}
}

// mailBodyFlags adds --body and --file; the file wins when both are given.
func mailBodyFlags(cmd *cobra.Command, body, file *string) {
	cmd.Flags().StringVar(body, "body", "", "email body")
	cmd.Flags().StringVarP(file, "file", "f", "", "read the email body from a file")
}

func readMailBody(body, file string) (string, error) {
	if file == "" {
		return body, nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func newMailSaveCmd(a *app) *cobra.Command {
	var body, file string
	cmd := &cobra.Command{
		Use:   "save <lead-id>",
		Short: "Save an email draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := leadIDArg(args)
			if err != nil {
				return err
			}
			text, err := readMailBody(body, file)
			if err != nil {
				return err
			}
			msg, err := a.client.SaveMail(cmd.Context(), id, text)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Draft saved successfully"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	mailBodyFlags(cmd, &body, &file)
	return cmd
}

func newMailSendCmd(a *app) *cobra.Command {
	var body, file string
	cmd := &cobra.Command{
		Use:   "send <lead-id>",
		Short: "Send an email to a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := leadIDArg(args)
			if err != nil {
				return err
			}
			text, err := readMailBody(body, file)
			if err != nil {
				return err
			}
			msg, err := a.client.SendMail(cmd.Context(), id, text)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Email sent successfully"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	mailBodyFlags(cmd, &body, &file)
	return cmd
}
