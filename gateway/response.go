package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx response with its (truncated) body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.StatusCode, e.Body)
}

func IsOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ExpectOK closes resp and returns a *StatusError when the status is not 2xx.
// On success the body is left open for the caller.
func ExpectOK(resp *http.Response) error {
	if IsOK(resp) {
		return nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
}

// DecodeJSON checks the status, decodes the body into v and closes it.
func DecodeJSON(resp *http.Response, v any) error {
	if err := ExpectOK(resp); err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBadResponse, err)
	}
	return nil
}
