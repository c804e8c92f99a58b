// Package notifications renders the notification feed: a paged,
// searchable list backed by the delivery client.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/notify"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
)

// defaultSearchDebounce delays the refetch while the user is still
// typing, used when the configuration supplies no value.
const defaultSearchDebounce = 250 * time.Millisecond

// PageLoadedMsg is sent when a page of notifications has been fetched.
type PageLoadedMsg struct {
	Seq  uint64
	Page model.NotificationPage
	Err  error
}

// markedMsg reports a mark-read round trip so the feed can refetch.
type markedMsg struct{ err error }

// searchTickMsg fires when the debounce window for a query expires.
type searchTickMsg struct{ seq uint64 }

// Model is the notification feed view component.
type Model struct {
	list        list.Model
	client      *notify.Client
	keys        *keys.KeyMap
	styles      *theme.Styles
	page        int
	pageSize    int
	total       int
	unreadOnly  bool
	query       string
	searchMode  bool
	searchInput textinput.Model
	debounce    time.Duration
	loading     bool

	// loadErr holds the last fetch failure until a load succeeds, so
	// the feed never fails silently.
	loadErr error

	// loadSeq orders in-flight fetches; responses older than the
	// latest issued sequence are discarded (later wins).
	loadSeq uint64
	// searchSeq invalidates stale debounce ticks.
	searchSeq uint64

	width  int
	height int
}

// New creates a notification feed model. A non-positive debounce
// falls back to the default quiet period.
func New(client *notify.Client, k *keys.KeyMap, st *theme.Styles, debounce time.Duration, width, height int) Model {
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}
	delegate := Delegate{styles: st}
	l := list.New([]list.Item{}, delegate, width, height-3)
	l.Title = "Notificações"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.Styles.Title = st.Header

	si := textinput.New()
	si.Placeholder = "buscar notificações..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		client:      client,
		keys:        k,
		styles:      st,
		pageSize:    notify.PageSizeFor(width),
		searchInput: si,
		debounce:    debounce,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the first page.
func (m *Model) Init() tea.Cmd {
	m.page = 0
	return m.load()
}

// Update handles messages for the feed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		if msg.Seq != m.loadSeq {
			// A newer fetch is already in flight.
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.loadErr = msg.Err
			return m, nil
		}
		m.loadErr = nil
		m.total = msg.Page.TotalItems
		items := make([]list.Item, len(msg.Page.Items))
		for i, n := range msg.Page.Items {
			items[i] = Item{Notification: n}
		}
		return m, m.list.SetItems(items)

	case markedMsg:
		return m, m.load()

	case searchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.query = m.searchInput.Value()
		m.page = 0
		return m, m.load()

	case notify.PushedMsg:
		// A pushed notification lands at the top of the first page.
		if m.page == 0 && m.query == "" && !m.unreadOnly {
			return m, m.load()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while the search box has focus.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		m.query = m.searchInput.Value()
		m.page = 0
		return m, m.load()

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		if m.query != "" {
			m.query = ""
			m.page = 0
			return m, m.load()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, tea.Batch(cmd, m.debounceSearch())
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterStatus):
		m.unreadOnly = !m.unreadOnly
		m.page = 0
		return m, m.load()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()

	case key.Matches(msg, m.keys.NextPage):
		if (m.page+1)*m.pageSize < m.total {
			m.page++
			return m, m.load()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.page > 0 {
			m.page--
			return m, m.load()
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(Item)
		if !ok || item.Notification.Read {
			return m, nil
		}
		return m, m.markRead(item.Notification.ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the feed.
func (m Model) View() string {
	var rows []string

	if m.searchMode {
		rows = append(rows, lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View()))
	}

	if m.loadErr != nil {
		rows = append(rows, lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(m.styles.Palette.Danger).
			Render("Não foi possível carregar as notificações. Pressione r para tentar novamente."))
	}

	if len(m.list.Items()) == 0 && !m.loading {
		rows = append(rows, m.renderEmptyState())
	} else {
		rows = append(rows, m.list.View())
	}

	rows = append(rows, m.styles.Help.Render(m.pageIndicator()))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// pageIndicator summarizes pagination and active filters.
func (m Model) pageIndicator() string {
	totalPages := 1
	if m.pageSize > 0 && m.total > 0 {
		totalPages = (m.total + m.pageSize - 1) / m.pageSize
	}
	indicator := lipgloss.NewStyle().Padding(0, 1).Render(fmt.Sprintf(
		"página %d/%d · %d no total", m.page+1, totalPages, m.total))
	if m.unreadOnly {
		indicator += " · apenas não lidas"
	}
	if m.query != "" {
		indicator += " · busca: " + m.query
	}
	return indicator
}

// renderEmptyState shows guidance text when the feed is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 3).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(m.styles.Palette.Muted)

	if m.query != "" || m.unreadOnly {
		return style.Render("Nenhuma notificação corresponde aos filtros.")
	}
	return style.Render("Nenhuma notificação por aqui.")
}

// load issues a fetch for the current page, filter, and query. The
// sequence number lets the handler drop responses that a newer fetch
// has superseded.
func (m *Model) load() tea.Cmd {
	m.loading = true
	m.loadSeq++
	seq := m.loadSeq
	client := m.client
	page, size := m.page, m.pageSize
	status := model.NotificationStatus("")
	if m.unreadOnly {
		status = model.StatusNaoLida
	}
	q := m.query
	return func() tea.Msg {
		result, err := client.Load(context.Background(), page, size, status, q)
		return PageLoadedMsg{Seq: seq, Page: result, Err: err}
	}
}

// debounceSearch schedules a refetch once typing pauses.
func (m *Model) debounceSearch() tea.Cmd {
	m.searchSeq++
	seq := m.searchSeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}

func (m Model) markRead(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return markedMsg{err: client.MarkAsRead(context.Background(), id)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return markedMsg{err: client.MarkAllAsRead(context.Background())}
	}
}

// SetSize updates the feed dimensions and refetches when the width
// bucket changes the page size.
func (m *Model) SetSize(width, height int) tea.Cmd {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4

	if size := notify.PageSizeFor(width); size != m.pageSize {
		m.pageSize = size
		m.page = 0
		return m.load()
	}
	return nil
}
