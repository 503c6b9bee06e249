package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	destructiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// Terminal renders notifications as styled lines on w.
type Terminal struct {
	w io.Writer
}

var _ Notifier = (*Terminal)(nil)

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(n Notification) {
	title := titleStyle.Render(n.Title)
	if n.Variant == VariantDestructive {
		title = destructiveStyle.Render("✗ " + n.Title)
	}
	fmt.Fprintf(t.w, "%s  %s\n", title, descriptionStyle.Render(n.Description))
}
