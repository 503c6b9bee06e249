package leads

import (
	"fmt"
	"strings"
)

// Column is an exportable CSV column.
type Column struct {
	Key   string
	Label string
}

// Columns lists the exportable columns in export order.
var Columns = []Column{
	{Key: "first_name", Label: "First Name"},
	{Key: "last_name", Label: "Last Name"},
	{Key: "email", Label: "Email"},
	{Key: "title", Label: "Title"},
	{Key: "company", Label: "Company"},
	{Key: "website_url", Label: "Website URL"},
	{Key: "linkedin_url", Label: "LinkedIn URL"},
	{Key: "website_speed_web", Label: "Website Speed (Desktop)"},
	{Key: "website_speed_mobile", Label: "Website Speed (Mobile)"},
	{Key: "screenshot_url_web", Label: "Screenshot URL"},
	{Key: "ghl_contact_id", Label: "GHL Contact ID"},
	{Key: "conversation_id", Label: "Conversation ID"},
	{Key: "mail_sent", Label: "Mail Sent"},
	{Key: "email_subject", Label: "Email Subject"},
	{Key: "punchline1", Label: "Punchline 1"},
	{Key: "punchline2", Label: "Punchline 2"},
	{Key: "punchline3", Label: "Punchline 3"},
}

// DefaultColumns is the selection used when none is given.
var DefaultColumns = []string{"first_name", "last_name", "email", "company", "website_url"}

// ColumnList validates keys, drops duplicates and returns them comma joined
// in export order.
func ColumnList(keys []string) (string, error) {
	if len(keys) == 0 {
		keys = DefaultColumns
	}

	selected := make(map[string]bool, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if !isColumn(k) {
			return "", fmt.Errorf("unknown column %q", k)
		}
		selected[k] = true
	}

	ordered := make([]string, 0, len(selected))
	for _, c := range Columns {
		if selected[c.Key] {
			ordered = append(ordered, c.Key)
		}
	}
	return strings.Join(ordered, ","), nil
}

func isColumn(key string) bool {
	for _, c := range Columns {
		if c.Key == key {
			return true
		}
	}
	return false
}
