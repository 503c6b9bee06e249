// Package leads holds the lead model and the client-side view helpers:
// search filtering, pagination and CSV column selection.
package leads

import (
	"strings"

	"github.com/jrsteele09/go-leads-client/internal/utils"
)

// Lead is one row of GET /leads. Optional backend columns are pointers.
type Lead struct {
	ID                 int      `json:"id"`
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Email              string   `json:"email"`
	Title              *string  `json:"title,omitempty"`
	Company            string   `json:"company"`
	WebsiteURL         *string  `json:"website_url,omitempty"`
	LinkedInURL        *string  `json:"linkedin_url,omitempty"`
	WebsiteSpeedWeb    *float64 `json:"website_speed_web,omitempty"`
	WebsiteSpeedMobile *float64 `json:"website_speed_mobile,omitempty"`
	ScreenshotURL      *string  `json:"screenshot_url,omitempty"`
	MailSent           bool     `json:"mail_sent"`
}

func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

func (l Lead) TitleOrEmpty() string {
	return utils.Value(l.Title)
}

func (l Lead) Website() string {
	return utils.Value(l.WebsiteURL)
}

// Matches reports whether term occurs, ignoring case, in the lead's full name,
// email, company or title. An empty term matches everything.
func (l Lead) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range []string{l.FirstName + " " + l.LastName, l.Email, l.Company, l.TitleOrEmpty()} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Filter returns the leads matching term, preserving order.
func Filter(leads []Lead, term string) []Lead {
	if term == "" {
		return leads
	}
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if l.Matches(term) {
			out = append(out, l)
		}
	}
	return out
}
