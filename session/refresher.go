package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
)

const refreshPath = "/refresh"

// HTTPRefresher calls the backend refresh endpoint directly. It deliberately
// bypasses the gateway, which itself depends on the session.
type HTTPRefresher struct {
	baseURL string
	client  *http.Client
}

var _ Refresher = (*HTTPRefresher)(nil)

func NewHTTPRefresher(baseURL string, client *http.Client) *HTTPRefresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRefresher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenPayload, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("[HTTPRefresher Refresh] marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+refreshPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[HTTPRefresher Refresh] new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrRefreshUnavailable, resp.StatusCode)
	}

	var payload TokenPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperrors.ErrRefreshUnavailable, err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access_token", apperrors.ErrRefreshUnavailable)
	}
	return &payload, nil
}
