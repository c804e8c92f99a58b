package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// newNotifyClient wires a Client against srv with the feed cache off,
// positioned away from the login route so delivery is not suppressed.
func newNotifyClient(t *testing.T, srv *httptest.Server, realtime bool) (*Client, *router.Router) {
	t.Helper()

	routes := router.New()
	routes.Navigate(router.PathDashboard, nil)

	apiClient := api.NewClient(srv.URL, nil, 5*time.Second)
	c := New(api.NewNotificacoesService(apiClient), routes, staticToken("tok"), nil, time.Hour, realtime)
	c.SetEnabled(true)
	t.Cleanup(func() {
		c.StopPolling()
		c.Disconnect()
	})
	return c, routes
}

func drain(c *Client) []interface{} {
	var out []interface{}
	for {
		select {
		case msg := <-c.events:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestPageSizeFor(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{width: 80, want: pageSizeNarrow},
		{width: 99, want: pageSizeNarrow},
		{width: 100, want: pageSizeWide},
		{width: 180, want: pageSizeWide},
		{width: 0, want: pageSizeWide},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageSizeFor(tt.width), "width %d", tt.width)
	}
}

func TestRefreshUnread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notificacoes/unread-count", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":4}`))
	}))
	defer srv.Close()

	c, _ := newNotifyClient(t, srv, false)
	drain(c)

	count, err := c.RefreshUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, 4, c.Unread())

	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, UnreadMsg{Count: 4}, msgs[0])
}

func TestRefreshUnreadSuppressedOnLogin(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"count":9}`))
	}))
	defer srv.Close()

	c, routes := newNotifyClient(t, srv, false)
	routes.Navigate(router.PathLogin, nil)

	count, err := c.RefreshUnread(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, hits, "login route never touches the network")
}

func TestSetEnabledFalseClearsEverything(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":3}`))
	}))
	defer srv.Close()

	c, _ := newNotifyClient(t, srv, false)
	_, err := c.RefreshUnread(context.Background())
	require.NoError(t, err)
	c.prepend(model.NotificationItem{ID: 1, Title: "Reserva"})
	drain(c)

	c.SetEnabled(false)

	assert.Zero(t, c.Unread())
	assert.Empty(t, c.Items())
	assert.False(t, c.Enabled())

	msgs := drain(c)
	require.NotEmpty(t, msgs)
	assert.Equal(t, UnreadMsg{Count: 0}, msgs[len(msgs)-1])

	// Disabled clients answer without the network.
	count, err := c.RefreshUnread(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLoadReplacesFeed(t *testing.T) {
	page := []model.NotificationDTO{
		{ID: 2, Title: "Check-out pendente", Status: "NOVO", CreatedAt: "2026-05-01T09:00:00Z"},
		{ID: 1, Title: "Nova reserva", Status: "LIDA", CreatedAt: "2026-05-01T08:00:00Z"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notificacoes", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		assert.Equal(t, "NAO_LIDA", r.URL.Query().Get("status"))
		assert.Equal(t, "reserva", r.URL.Query().Get("q"))

		w.Header().Set("X-Total-Count", "12")
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"items": page}))
	}))
	defer srv.Close()

	c, _ := newNotifyClient(t, srv, false)

	result, err := c.Load(context.Background(), 0, 5, model.StatusNaoLida, "  reserva ")
	require.NoError(t, err)

	assert.Equal(t, 12, result.TotalItems)
	require.Len(t, result.Items, 2)
	assert.False(t, result.Items[0].Read)
	assert.True(t, result.Items[1].Read)
	assert.Equal(t, result.Items, c.Items())
}

func TestHandleEventShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, _ := newNotifyClient(t, srv, false)

	c.handleEvent(streamEvent{name: "unread", data: `{"unread":7}`})
	assert.Equal(t, 7, c.Unread())

	c.handleEvent(streamEvent{name: "notification", data: `{"id":11,"title":"Nova reserva","status":"NOVO"}`})
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(11), items[0].ID)
	assert.False(t, items[0].Read)

	// Unnamed events may carry either shape.
	c.handleEvent(streamEvent{data: `{"unread":2}`})
	assert.Equal(t, 2, c.Unread())

	c.handleEvent(streamEvent{data: `{"item":{"id":12,"title":"Check-in","status":"NOVO"}}`})
	items = c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(12), items[0].ID, "pushed items go to the head")

	// A payload carrying both shapes delivers the item; the counter is
	// left to the next count event.
	c.handleEvent(streamEvent{data: `{"unread":99,"item":{"id":13,"title":"Reserva","status":"NOVO"}}`})
	items = c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(13), items[0].ID)
	assert.Equal(t, 2, c.Unread())

	// Malformed payloads change nothing.
	c.handleEvent(streamEvent{name: "unread", data: `não é json`})
	assert.Equal(t, 2, c.Unread())
}

func TestConnectDeliversAndFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notificacoes/stream":
			assert.Equal(t, "tok", r.URL.Query().Get("token"))
			w.Header().Set("Content-Type", "text/event-stream")
			flusher, ok := w.(http.Flusher)
			require.True(t, ok)

			_, _ = w.Write([]byte("event: unread\ndata: {\"unread\":5}\n\n"))
			flusher.Flush()
			// Handler returns, which ends the stream server-side.
		case "/notificacoes/unread-count":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"count":1}`))
		}
	}))
	defer srv.Close()

	c, _ := newNotifyClient(t, srv, true)

	c.Connect()
	require.True(t, c.Connected())

	assert.Eventually(t, func() bool {
		return c.Unread() == 5
	}, 2*time.Second, 10*time.Millisecond, "event delivered before the stream ends")

	// The ended stream tears itself down; no reconnect is attempted.
	assert.Eventually(t, func() bool {
		return !c.Connected()
	}, 2*time.Second, 10*time.Millisecond)

	// Polling still works after the channel is gone.
	count, err := c.RefreshUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStartPollingIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":0}`))
	}))
	defer srv.Close()

	c, _ := newNotifyClient(t, srv, false)

	c.StartPolling()
	first := c.stopPoll
	require.NotNil(t, first)

	c.StartPolling()
	assert.Equal(t, first, c.stopPoll, "second start reuses the running loop")

	c.StopPolling()
	assert.Nil(t, c.stopPoll)
	c.StopPolling()
}
