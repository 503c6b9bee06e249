package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jrsteele09/go-leads-client/api"
	"github.com/jrsteele09/go-leads-client/leads"
	"github.com/spf13/cobra"
)

func newLeadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List, import and export leads",
	}
	cmd.AddCommand(newLeadsListCmd(a), newLeadsUploadCmd(a), newLeadsDownloadCmd(a))
	return cmd
}

func newLeadsListCmd(a *app) *cobra.Command {
	var page leads.Page
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.client.ListLeads(cmd.Context(), page)
			if err != nil {
				return err
			}

			shown := leads.Filter(all, search)
			fmt.Fprintln(cmd.OutOrStdout(), leadsTable(shown))
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d, showing %d of %d\n", page.Number+1, len(shown), len(all))
			return nil
		},
	}
	cmd.Flags().IntVar(&page.Number, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&page.Size, "size", leads.DefaultPageSize, "page size")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name, email, company or title")
	return cmd
}

func leadsTable(ls []leads.Lead) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "NAME", "EMAIL", "COMPANY", "TITLE", "SPEED (WEB/MOBILE)", "MAILED")
	for _, l := range ls {
		t.Row(
			strconv.Itoa(l.ID),
			l.FullName(),
			l.Email,
			l.Company,
			l.TitleOrEmpty(),
			speed(l.WebsiteSpeedWeb)+"/"+speed(l.WebsiteSpeedMobile),
			yesNo(l.MailSent),
		)
	}
	return t.String()
}

func speed(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newLeadsUploadCmd(a *app) *cobra.Command {
	var mapping map[string]string

	cmd := &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Import leads from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fh.Close()

			if len(mapping) == 0 {
				mapping = nil
			}
			msg, err := a.client.UploadCSV(cmd.Context(), filepath.Base(args[0]), fh, mapping)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Your leads have been imported"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CSV Uploaded Successfully: %s\n", msg)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&mapping, "map", nil, "lead field to CSV column, e.g. --map email=\"E-mail Address\"")
	return cmd
}

func newLeadsDownloadCmd(a *app) *cobra.Command {
	var columns []string
	var ids []int
	var out string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Export leads as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = api.DownloadFilename(ids)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				fh, err := os.Create(out)
				if err != nil {
					return err
				}
				defer fh.Close()
				w = fh
			}

			n, err := a.client.DownloadCSV(cmd.Context(), w, columns, ids)
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", n, out)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to export, defaults to name, email, company and website")
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "export only these lead IDs")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}
