package model

import (
	"regexp"
	"strings"
	"time"
)

// NotificationStatus is the read-state filter accepted by the backend.
type NotificationStatus string

const (
	StatusLida    NotificationStatus = "LIDA"
	StatusNaoLida NotificationStatus = "NAO_LIDA"
)

// NotificationItem is a notification as held by the console.
type NotificationItem struct {
	// ID is the server-assigned identifier.
	ID int64 `json:"id"`

	// Title is the short headline shown in the feed.
	Title string `json:"title"`

	// Message is the display text, derived from the formatted body
	// with markup stripped.
	Message string `json:"message"`

	// URL is an optional action target.
	URL string `json:"url,omitempty"`

	// CTA is the label for the optional action.
	CTA string `json:"cta,omitempty"`

	// Read is monotonic within a client session: once observed true it
	// is never reset to false by the console.
	Read bool `json:"read"`

	CreatedAt time.Time `json:"createdAt"`

	Type        string `json:"type,omitempty"`
	Origin      string `json:"origin,omitempty"`
	ReferenceID int64  `json:"referenceId,omitempty"`
	DataRef     string `json:"dataRef,omitempty"`

	// RecipientsLabel is the parsed list of recipient display names.
	RecipientsLabel []string `json:"recipientsLabel,omitempty"`
}

// NotificationDTO is the wire shape the backend emits for a notification,
// both on paged fetches and on the push channel.
type NotificationDTO struct {
	ID            int64    `json:"id"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	BodyFormatted string   `json:"bodyFormatted"`
	Link          string   `json:"link"`
	Action        string   `json:"action"`
	ItemID        int64    `json:"itemId"`
	Date          string   `json:"date"`
	Origin        string   `json:"origin"`
	Status        string   `json:"status"`
	Recipients    []int64  `json:"recipients"`
	CreatedAt     string   `json:"createdAt"`
	RecipientsLbl []string `json:"recipientsLabel"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripMarkup removes HTML tags from the formatted body so the text can
// be rendered in a terminal.
func stripMarkup(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// MapNotification converts a backend record into the console item shape.
// Anything other than the "NOVO" status counts as read.
func MapNotification(d NotificationDTO) NotificationItem {
	msg := strings.TrimSpace(d.BodyFormatted)
	if msg != "" {
		msg = stripMarkup(msg)
	} else {
		msg = d.Body
	}

	createdAt, _ := time.Parse(time.RFC3339, d.CreatedAt)

	labels := make([]string, 0, len(d.RecipientsLbl))
	for _, l := range d.RecipientsLbl {
		if t := strings.TrimSpace(l); t != "" {
			labels = append(labels, t)
		}
	}

	return NotificationItem{
		ID:              d.ID,
		Title:           d.Title,
		Message:         msg,
		URL:             d.Link,
		CTA:             d.Action,
		Read:            d.Status != "NOVO",
		CreatedAt:       createdAt,
		Type:            d.Type,
		Origin:          d.Origin,
		ReferenceID:     d.ItemID,
		DataRef:         d.Date,
		RecipientsLabel: labels,
	}
}

// NotificationPage is one page of the feed together with the server-side
// total, which drives pagination.
type NotificationPage struct {
	Items      []NotificationItem
	TotalItems int
}
