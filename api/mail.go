package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-leads-client/gateway"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
)

var ErrEmptyEmail = errors.New("email content is empty")

// GenerateMail asks the backend to draft an email for a lead.
func (c *Client) GenerateMail(ctx context.Context, leadID int) (string, error) {
	resp, err := c.gateway.Post(ctx, "/generate-mail/"+strconv.Itoa(leadID), nil)
	if err != nil {
		return "", fmt.Errorf("[Client GenerateMail] %w", err)
	}

	var out struct {
		Email string `json:"email"`
	}
	if err := gateway.DecodeJSON(resp, &out); err != nil {
		return "", apperrors.Wrapf(err, "[Client GenerateMail] Failed to generate email")
	}
	return out.Email, nil
}

func (c *Client) SaveMail(ctx context.Context, leadID int, body string) (string, error) {
	return c.sendMailBody(ctx, "save-mail", "SaveMail", leadID, body)
}

func (c *Client) SendMail(ctx context.Context, leadID int, body string) (string, error) {
	return c.sendMailBody(ctx, "send-mail", "SendMail", leadID, body)
}

func (c *Client) sendMailBody(ctx context.Context, endpoint, op string, leadID int, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyEmail
	}

	resp, err := c.gateway.Post(ctx, "/"+endpoint+"/"+strconv.Itoa(leadID), map[string]string{"email_body": body})
	if err != nil {
		return "", fmt.Errorf("[Client %s] %w", op, err)
	}
	if err := gateway.ExpectOK(resp); err != nil {
		return "", fmt.Errorf("[Client %s] %w", op, err)
	}
	return messageOf(resp), nil
}
