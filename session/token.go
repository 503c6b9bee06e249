package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenPayload is the token shape returned by the login and refresh endpoints.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"` // seconds, zero means the server omitted it
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Claims is the subset of access token claims worth showing to a user.
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
	IssuedAt  *time.Time
}

// ParseClaims decodes a JWT access token without verifying its signature.
// The backend is the authority on validity; this is for display only.
func ParseClaims(rawToken string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "ParseClaims ParseUnverified")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("ParseClaims: unexpected claims type")
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		c.IssuedAt = &t
	}
	return c, nil
}
