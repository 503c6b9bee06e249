package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-leads-client/gateway"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/jrsteele09/go-leads-client/session"
	"github.com/rs/zerolog/log"
)

// Login exchanges credentials for a session. The backend may answer with a
// token payload or, in its older form, a bare access token string.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) error {
	form := url.Values{
		"username": {usernameOrEmail},
		"password": {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrapf(err, "[Client Login] new request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("[Client Login] %w", apperrors.Transport(err))
	}
	if !gateway.IsOK(resp) {
		rerr := responseError(resp, "", "Login failed")
		return fmt.Errorf("[Client Login] %w: %w", apperrors.ErrUnauthenticated, rerr)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[Client Login] read body: %w", apperrors.Transport(err))
	}

	var legacy string
	if json.Unmarshal(raw, &legacy) == nil && legacy != "" {
		c.session.StoreAccessToken(legacy)
		log.Info().Str("user", usernameOrEmail).Msg("Logged in")
		return nil
	}

	var payload session.TokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.AccessToken == "" {
		return fmt.Errorf("[Client Login] %w: no access token in response", apperrors.ErrBadResponse)
	}
	c.session.Store(payload)
	log.Info().Str("user", usernameOrEmail).Msg("Logged in")
	return nil
}

func (c *Client) Logout() {
	c.session.Clear()
	log.Info().Msg("Logged out")
}

func (c *Client) IsAuthenticated() bool {
	return c.session.IsValid()
}

type Registration struct {
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	Position        string `json:"position"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

var ErrPasswordMismatch = errors.New("passwords do not match")

// Register creates an account. The backend then sends an OTP to the email address.
func (c *Client) Register(ctx context.Context, r Registration) error {
	if r.ConfirmPassword != "" && r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if r.ConfirmPassword == "" {
		r.ConfirmPassword = r.Password
	}

	resp, err := c.postJSON(ctx, "/register", r)
	if err != nil {
		return fmt.Errorf("[Client Register] %w", apperrors.Transport(err))
	}
	if !gateway.IsOK(resp) {
		return fmt.Errorf("[Client Register] %w", responseError(resp, "message", "Registration failed"))
	}
	resp.Body.Close()
	return nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	resp, err := c.postJSON(ctx, "/verify-otp", map[string]string{"email": email, "otp": otp})
	if err != nil {
		return fmt.Errorf("[Client VerifyOTP] %w", apperrors.Transport(err))
	}
	if !gateway.IsOK(resp) {
		return fmt.Errorf("[Client VerifyOTP] %w", responseError(resp, "detail", "OTP verification failed"))
	}
	resp.Body.Close()
	return nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/resend-otp", map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("[Client ResendOTP] %w", apperrors.Transport(err))
	}
	if !gateway.IsOK(resp) {
		return fmt.Errorf("[Client ResendOTP] %w", responseError(resp, "detail", "Failed to resend OTP"))
	}
	resp.Body.Close()
	return nil
}

type Profile struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
}

// DisplayName is the full name, or the username when there is none.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

// Headline is "position at company", or "User Profile" when either is missing.
func (p Profile) Headline() string {
	if p.Position != "" && p.Company != "" {
		return p.Position + " at " + p.Company
	}
	return "User Profile"
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	resp, err := c.gateway.Get(ctx, "/profile")
	if err != nil {
		return nil, fmt.Errorf("[Client Profile] %w", err)
	}

	var p Profile
	if err := gateway.DecodeJSON(resp, &p); err != nil {
		return nil, apperrors.Wrapf(err, "[Client Profile] Failed to fetch profile")
	}
	return &p, nil
}
