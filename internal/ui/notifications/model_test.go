package notifications

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/notify"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newFeedModel(t *testing.T, width int) (Model, *int32) {
	t.Helper()

	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"totalItems":0}`))
	}))
	t.Cleanup(srv.Close)

	routes := router.New()
	routes.Navigate(router.PathNotificacoes, nil)

	apiClient := api.NewClient(srv.URL, nil, 5*time.Second)
	client := notify.New(api.NewNotificacoesService(apiClient), routes, staticToken("tok"), nil, time.Hour, false)
	client.SetEnabled(true)

	styles := theme.StylesFor(theme.Claro)
	return New(client, keys.DefaultKeyMap(), &styles, 0, width, 30), &fetches
}

func TestSetSizeRefetchesOnBucketChange(t *testing.T) {
	m, fetches := newFeedModel(t, 120)

	// Wide to narrow crosses the bucket boundary: one refetch of the
	// first page at the new size.
	cmd := m.SetSize(80, 30)
	require.NotNil(t, cmd)

	msg := cmd()
	loaded, ok := msg.(PageLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(fetches))
	assert.Equal(t, uint64(1), loaded.Seq)
}

func TestSetSizeSameBucketNoRefetch(t *testing.T) {
	m, fetches := newFeedModel(t, 120)

	assert.Nil(t, m.SetSize(110, 30), "still the wide bucket")
	assert.Nil(t, m.SetSize(150, 24))
	assert.Equal(t, int32(0), atomic.LoadInt32(fetches))

	m2, fetches2 := newFeedModel(t, 80)
	assert.Nil(t, m2.SetSize(90, 30), "still the narrow bucket")
	assert.Equal(t, int32(0), atomic.LoadInt32(fetches2))
}

func TestStalePageLoadIsDiscarded(t *testing.T) {
	m, _ := newFeedModel(t, 120)

	first := m.Init()
	require.NotNil(t, first)
	second := m.load()
	require.NotNil(t, second)

	// The older response lands after the newer fetch was issued.
	stale := first().(PageLoadedMsg)
	fresh := second().(PageLoadedMsg)
	assert.Less(t, stale.Seq, fresh.Seq)

	m, _ = m.Update(fresh)
	assert.False(t, m.loading)

	m.loading = true
	m, _ = m.Update(stale)
	assert.True(t, m.loading, "a stale page never settles the view")
}

func TestFailedLoadShowsInlineError(t *testing.T) {
	m, _ := newFeedModel(t, 120)
	require.NotNil(t, m.Init())

	m, _ = m.Update(PageLoadedMsg{Seq: 1, Err: errors.New("backend indisponível")})

	view := m.View()
	assert.True(t, strings.Contains(view, "Não foi possível carregar as notificações"),
		"a failed fetch must be visible on the feed")

	// The next successful load clears the banner.
	m, _ = m.Update(PageLoadedMsg{Seq: 1})
	assert.False(t, strings.Contains(m.View(), "Não foi possível carregar"))
}

func TestStaleErrorDoesNotSurface(t *testing.T) {
	m, _ := newFeedModel(t, 120)
	require.NotNil(t, m.Init())
	require.NotNil(t, m.load())

	// The superseded fetch's failure is as stale as its data would be.
	m, _ = m.Update(PageLoadedMsg{Seq: 1, Err: errors.New("tempo esgotado")})
	assert.False(t, strings.Contains(m.View(), "Não foi possível carregar"))
}

func TestSearchDebounceConfigurable(t *testing.T) {
	m, _ := newFeedModel(t, 120)
	assert.Equal(t, defaultSearchDebounce, m.debounce, "zero falls back to the default")

	styles := theme.StylesFor(theme.Claro)
	custom := New(m.client, keys.DefaultKeyMap(), &styles, 400*time.Millisecond, 120, 30)
	assert.Equal(t, 400*time.Millisecond, custom.debounce)
}
