// Package notify keeps the unread counter and the notification feed
// reasonably fresh without hammering the backend: a push channel when
// available, interval polling otherwise, and nothing at all while the
// user is signed out or the terminal is not focused.
package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/store"
)

// DefaultPollInterval is how often the unread counter is refreshed
// while polling.
const DefaultPollInterval = 5 * time.Second

// fetchTimeout bounds a single count or page fetch.
const fetchTimeout = 15 * time.Second

// Page-size buckets: narrower viewports show more rows per fetch.
const (
	narrowWidth    = 100
	pageSizeNarrow = 8
	pageSizeWide   = 5
)

// PageSizeFor returns the feed page size for a terminal width.
func PageSizeFor(width int) int {
	if width > 0 && width < narrowWidth {
		return pageSizeNarrow
	}
	return pageSizeWide
}

// TokenSource supplies the bearer token for the push channel, which
// carries it as a query credential.
type TokenSource interface {
	Token() string
}

// UnreadMsg is a tea.Msg carrying a fresh unread counter.
type UnreadMsg struct {
	Count int
}

// PushedMsg is a tea.Msg carrying a notification delivered on the push
// channel, already prepended to the in-memory feed.
type PushedMsg struct {
	Item model.NotificationItem
}

// ConnectionMsg is a tea.Msg signalling a push-channel state change.
type ConnectionMsg struct {
	Connected bool
}

// Client is the notification delivery client. All methods are safe for
// concurrent use.
type Client struct {
	svc    *api.NotificacoesService
	routes *router.Router
	tokens TokenSource
	cache  *store.StateStore

	// streamClient has no request timeout; the push channel stays open
	// indefinitely.
	streamClient *http.Client

	pollInterval time.Duration
	realtime     bool

	mu        sync.Mutex
	enabled   bool
	unread    int
	items     []model.NotificationItem
	connected bool
	stopPoll  chan struct{}
	sse       *stream

	events chan tea.Msg
}

// New creates a delivery client. cache may be nil when local feed
// caching is not wanted (tests).
func New(
	svc *api.NotificacoesService,
	routes *router.Router,
	tokens TokenSource,
	cache *store.StateStore,
	pollInterval time.Duration,
	realtime bool,
) *Client {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Client{
		svc:          svc,
		routes:       routes,
		tokens:       tokens,
		cache:        cache,
		streamClient: &http.Client{},
		pollInterval: pollInterval,
		realtime:     realtime,
		events:       make(chan tea.Msg, 16),
	}
}

// SetEnabled turns the whole client on or off. Disabling stops every
// network activity and clears the counter and feed, so no notification
// chrome lingers for a signed-out user.
func (c *Client) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()

	if !enabled {
		c.StopPolling()
		c.Disconnect()

		c.mu.Lock()
		c.unread = 0
		c.items = nil
		c.mu.Unlock()

		c.send(UnreadMsg{Count: 0})
	}
}

// Enabled reports whether the client is switched on.
func (c *Client) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// canExecute gates every operation: the client must be enabled and the
// user must not be sitting on the login route.
func (c *Client) canExecute() bool {
	c.mu.Lock()
	enabled := c.enabled
	c.mu.Unlock()

	return enabled && c.routes.CurrentPath() != router.PathLogin
}

// Start begins delivery: an immediate count refresh, the polling loop,
// and (when configured) the push channel.
func (c *Client) Start() {
	if !c.canExecute() {
		return
	}

	c.StartPolling()
	if c.realtime {
		c.Connect()
	}
}

// StartPolling launches the interval refresh loop. The count is
// refreshed immediately, then on every tick. Redundant calls are no-ops.
func (c *Client) StartPolling() {
	if !c.canExecute() {
		return
	}

	c.mu.Lock()
	if c.stopPoll != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stopPoll = stop
	c.mu.Unlock()

	go c.pollLoop(stop)
}

// StopPolling halts the refresh loop. The last known unread value is
// kept, so suspending while the terminal is unfocused loses nothing.
func (c *Client) StopPolling() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopPoll == nil {
		return
	}
	close(c.stopPoll)
	c.stopPoll = nil
}

// pollLoop runs the refresh ticker for one StartPolling call.
func (c *Client) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.refreshTick()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.canExecute() {
				c.StopPolling()
				return
			}
			c.refreshTick()
		}
	}
}

// refreshTick performs one count refresh. Failures are swallowed; the
// next tick retries independently.
func (c *Client) refreshTick() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	_, _ = c.RefreshUnread(ctx)
}

// RefreshUnread fetches the server-side unread counter. A disabled
// client reports 0 without touching the network.
func (c *Client) RefreshUnread(ctx context.Context) (int, error) {
	if !c.canExecute() {
		return 0, nil
	}

	count, err := c.svc.UnreadCount(ctx)
	if err != nil {
		return 0, err
	}

	// Re-check: the client may have been disabled while the fetch was
	// in flight, and a disabled client must stay at zero.
	if !c.canExecute() {
		return 0, nil
	}

	c.setUnread(count)
	return count, nil
}

// Connect opens the push channel. The channel delivers unread-count
// updates and full new-notification payloads. On any channel error the
// client tears the channel down and reverts to polling only; it does
// not reconnect on its own.
func (c *Client) Connect() {
	if !c.canExecute() {
		return
	}

	token := c.tokens.Token()
	if token == "" {
		return
	}

	c.mu.Lock()
	if c.sse != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	s, err := openStream(context.Background(), c.streamClient, c.svc.StreamURL(token))
	if err != nil {
		// Polling already covers correctness; a failed connect is not
		// surfaced as an error.
		return
	}

	c.mu.Lock()
	c.sse = s
	c.connected = true
	c.mu.Unlock()
	c.send(ConnectionMsg{Connected: true})

	go func() {
		_ = s.read(c.handleEvent)
		c.teardown(s)
	}()
}

// Disconnect closes the push channel if open.
func (c *Client) Disconnect() {
	c.mu.Lock()
	s := c.sse
	c.sse = nil
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if s != nil {
		s.Close()
	}
	if wasConnected {
		c.send(ConnectionMsg{Connected: false})
	}
}

// teardown reacts to a reader exit. Only the stream that is still the
// current one flips the connection state; a stream already replaced by
// Disconnect must not.
func (c *Client) teardown(s *stream) {
	c.mu.Lock()
	if c.sse != s {
		c.mu.Unlock()
		return
	}
	c.sse = nil
	c.connected = false
	c.mu.Unlock()

	s.Close()
	c.send(ConnectionMsg{Connected: false})
}

// handleEvent dispatches one push-channel event.
func (c *Client) handleEvent(ev streamEvent) {
	if !c.canExecute() {
		return
	}

	switch ev.name {
	case "unread":
		if count, ok := parseUnread(ev.data); ok {
			c.setUnread(count)
		}
	case "notification":
		if item, ok := parseNotification(ev.data); ok {
			c.prepend(item)
		}
	default:
		// Unnamed events may carry either shape; a full item wins over
		// a bare counter when both are present.
		var p defaultPayload
		if parsePayload(ev.data, &p) && p.Item != nil {
			c.prepend(model.MapNotification(*p.Item))
			return
		}
		if count, ok := parseUnread(ev.data); ok {
			c.setUnread(count)
		}
	}
}

// Load fetches one feed page and replaces the in-memory feed with it.
// Disabled clients and the login route get an empty page. Responses
// arriving after a newer load are the view's concern: it keeps only the
// most recent state values (later-wins).
func (c *Client) Load(
	ctx context.Context,
	page, size int,
	status model.NotificationStatus,
	q string,
) (model.NotificationPage, error) {
	if !c.canExecute() {
		return model.NotificationPage{}, nil
	}

	result, err := c.svc.List(ctx, page, size, status, q)
	if err != nil {
		return model.NotificationPage{}, err
	}

	c.mu.Lock()
	c.items = result.Items
	c.mu.Unlock()

	if c.cache != nil {
		_ = c.cache.CacheNotifications(ctx, result.Items)
	}

	return result, nil
}

// MarkAsRead flags one notification as read. Fire-and-forget: callers
// re-fetch to see the change reflected.
func (c *Client) MarkAsRead(ctx context.Context, id int64) error {
	if !c.canExecute() {
		return nil
	}

	if err := c.svc.MarkAsRead(ctx, id); err != nil {
		return err
	}
	if c.cache != nil {
		_ = c.cache.MarkCachedRead(ctx, id)
	}
	return nil
}

// MarkAllAsRead flags every notification as read.
func (c *Client) MarkAllAsRead(ctx context.Context) error {
	if !c.canExecute() {
		return nil
	}

	if err := c.svc.MarkAllAsRead(ctx); err != nil {
		return err
	}
	if c.cache != nil {
		_ = c.cache.MarkAllCachedRead(ctx)
	}
	return nil
}

// Unread returns the last known unread counter.
func (c *Client) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Connected reports whether the push channel is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Items returns a snapshot of the in-memory feed.
func (c *Client) Items() []model.NotificationItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.NotificationItem, len(c.items))
	copy(out, c.items)
	return out
}

// setUnread records a fresh counter and notifies the UI.
func (c *Client) setUnread(count int) {
	c.mu.Lock()
	c.unread = count
	c.mu.Unlock()

	c.send(UnreadMsg{Count: count})
}

// prepend puts a pushed notification at the head of the feed.
func (c *Client) prepend(item model.NotificationItem) {
	c.mu.Lock()
	c.items = append([]model.NotificationItem{item}, c.items...)
	c.mu.Unlock()

	if c.cache != nil {
		_ = c.cache.CacheNotifications(context.Background(), []model.NotificationItem{item})
	}
	c.send(PushedMsg{Item: item})
}

// send delivers an event to the UI without blocking.
func (c *Client) send(msg tea.Msg) {
	select {
	case c.events <- msg:
	default:
		// Drop if the UI is behind; state snapshots stay correct.
	}
}

// WaitForEvent returns a tea.Cmd that blocks until the next delivery
// event. After handling the message, call it again to keep listening.
func (c *Client) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-c.events
		if !ok {
			return nil
		}
		return msg
	}
}
