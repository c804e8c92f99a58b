package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// NotificacoesService wraps the /notificacoes endpoints.
type NotificacoesService struct {
	client *Client
}

// NewNotificacoesService creates the service on top of the shared client.
func NewNotificacoesService(c *Client) *NotificacoesService {
	return &NotificacoesService{client: c}
}

// listEnvelope tolerates both response shapes the backend has produced:
// an {items, totalItems} object or a bare array.
type listEnvelope struct {
	Items      []model.NotificationDTO `json:"items"`
	TotalItems int                     `json:"totalItems"`
}

// List fetches one page of the feed. The X-Total-Count header takes
// precedence over the body's totalItems; with neither, the page length
// is used.
func (s *NotificacoesService) List(
	ctx context.Context,
	page, size int,
	status model.NotificationStatus,
	q string,
) (model.NotificationPage, error) {
	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	if status != "" {
		query.Set("status", string(status))
	}
	if trimmed := strings.TrimSpace(q); trimmed != "" {
		query.Set("q", trimmed)
	}

	var raw json.RawMessage
	header, err := s.client.GetWithHeader(ctx, "/notificacoes", query, &raw)
	if err != nil {
		return model.NotificationPage{}, err
	}

	var envelope listEnvelope
	if json.Unmarshal(raw, &envelope) != nil || envelope.Items == nil {
		var bare []model.NotificationDTO
		if err := json.Unmarshal(raw, &bare); err != nil {
			return model.NotificationPage{}, fmt.Errorf("decoding notification page: %w", err)
		}
		envelope.Items = bare
	}

	items := make([]model.NotificationItem, 0, len(envelope.Items))
	for _, d := range envelope.Items {
		items = append(items, model.MapNotification(d))
	}

	total := 0
	if header != nil {
		total, _ = strconv.Atoi(header.Get("X-Total-Count"))
	}
	if total == 0 {
		total = envelope.TotalItems
	}
	if total == 0 {
		total = len(items)
	}

	return model.NotificationPage{Items: items, TotalItems: total}, nil
}

// MarkAsRead flags a single notification as read.
func (s *NotificacoesService) MarkAsRead(ctx context.Context, id int64) error {
	return s.client.Patch(ctx, fmt.Sprintf("/notificacoes/%d/lida", id), struct{}{}, nil)
}

// MarkAllAsRead flags every notification of the signed-in user as read.
func (s *NotificacoesService) MarkAllAsRead(ctx context.Context) error {
	return s.client.Post(ctx, "/notificacoes/marcar-todas-como-lidas", struct{}{}, nil)
}

// UnreadCount fetches the server-side unread counter.
func (s *NotificacoesService) UnreadCount(ctx context.Context) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/notificacoes/unread-count", nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// StreamURL builds the push-channel URL. The token travels as a query
// credential because this channel type cannot carry custom headers.
func (s *NotificacoesService) StreamURL(token string) string {
	return s.client.BaseURL() + "/notificacoes/stream?token=" + url.QueryEscape(token)
}
