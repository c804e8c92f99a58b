package notifications

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
)

// Item wraps a model.NotificationItem so it can be used in a bubbles/list.
type Item struct {
	Notification model.NotificationItem
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification headline.
func (i Item) Title() string { return i.Notification.Title }

// Description returns the display message.
func (i Item) Description() string { return i.Notification.Message }

// Delegate renders one notification per line pair.
type Delegate struct {
	styles *theme.Styles
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single notification entry.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	n := it.Notification
	st := *d.styles

	marker := "●"
	titleStyle := st.UnreadItem
	if n.Read {
		marker = "○"
		titleStyle = st.ListItem
	}

	title := fmt.Sprintf("%s %s  %s", marker, n.Title, relativeTime(n.CreatedAt))
	body := n.Message
	if n.CTA != "" {
		body += "  [" + n.CTA + "]"
	}

	if index == m.Index() {
		fmt.Fprint(w, st.SelectedItem.Render(title)+"\n"+st.SelectedItem.Render(body))
		return
	}
	fmt.Fprint(w, titleStyle.Render(title)+"\n"+st.Help.Render(body))
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "agora"
	case d < time.Hour:
		return fmt.Sprintf("%dmin atrás", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh atrás", int(d.Hours()))
	default:
		return t.Format("02/01/2006")
	}
}
