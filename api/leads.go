package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-leads-client/gateway"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/leads"
)

// ListLeads fetches one page. Any response other than a JSON array is an error.
func (c *Client) ListLeads(ctx context.Context, page leads.Page) ([]leads.Lead, error) {
	resp, err := c.gateway.Get(ctx, "/leads?"+page.Query().Encode())
	if err != nil {
		return nil, fmt.Errorf("[Client ListLeads] %w", err)
	}

	var raw json.RawMessage
	if err := gateway.DecodeJSON(resp, &raw); err != nil {
		return nil, fmt.Errorf("[Client ListLeads] %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("[Client ListLeads] %w: leads data is not an array", apperrors.ErrBadResponse)
	}

	var out []leads.Lead
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("[Client ListLeads] %w: %v", apperrors.ErrBadResponse, err)
	}
	if out == nil {
		out = []leads.Lead{}
	}
	return out, nil
}

// UploadCSV posts a CSV file as multipart field "file". mapping maps lead
// fields to CSV column names and may be nil.
func (c *Client) UploadCSV(ctx context.Context, filename string, r io.Reader, mapping map[string]string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("[Client UploadCSV] %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", apperrors.Wrapf(err, "[Client UploadCSV] read file")
	}
	if mapping != nil {
		raw, err := json.Marshal(mapping)
		if err != nil {
			return "", apperrors.Wrapf(err, "[Client UploadCSV] encode mapping")
		}
		if err := mw.WriteField("mapping", string(raw)); err != nil {
			return "", fmt.Errorf("[Client UploadCSV] %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("[Client UploadCSV] %w", err)
	}

	header := http.Header{"Content-Type": {mw.FormDataContentType()}}
	resp, err := c.gateway.Request(ctx, http.MethodPost, "/upload-csv", &buf, header)
	if err != nil {
		return "", fmt.Errorf("[Client UploadCSV] %w", err)
	}
	if !gateway.IsOK(resp) {
		return "", fmt.Errorf("[Client UploadCSV] %w", responseError(resp, "", "Failed to upload CSV"))
	}
	return messageOf(resp), nil
}

// DownloadCSV writes the CSV export to w. With lead IDs only those leads are
// exported. columns defaults to leads.DefaultColumns.
func (c *Client) DownloadCSV(ctx context.Context, w io.Writer, columns []string, leadIDs []int) (int64, error) {
	cols, err := leads.ColumnList(columns)
	if err != nil {
		return 0, fmt.Errorf("[Client DownloadCSV] %w", err)
	}

	var resp *http.Response
	if len(leadIDs) > 0 {
		resp, err = c.gateway.Post(ctx, "/download-csv-selected", map[string]any{
			"lead_ids": leadIDs,
			"columns":  cols,
		})
	} else {
		resp, err = c.gateway.Get(ctx, "/download-csv?"+url.Values{"columns": {cols}}.Encode())
	}
	if err != nil {
		return 0, fmt.Errorf("[Client DownloadCSV] %w", err)
	}
	if err := gateway.ExpectOK(resp); err != nil {
		return 0, apperrors.Wrapf(err, "[Client DownloadCSV] Failed to download CSV")
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("[Client DownloadCSV] %w", apperrors.Transport(err))
	}
	return n, nil
}

// DownloadFilename is the name the dashboard gives the export.
func DownloadFilename(leadIDs []int) string {
	if len(leadIDs) > 0 {
		return "leads_selected.csv"
	}
	return "leads.csv"
}
