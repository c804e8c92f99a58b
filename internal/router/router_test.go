package router

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	r := Lookup(PathQuartos)
	assert.Equal(t, "Quartos", r.Title)
	assert.False(t, r.Public)

	// Unknown paths land on the catch-all page.
	r = Lookup("/nada-aqui")
	assert.Equal(t, PathNaoEncontrada, r.Path)
	assert.True(t, r.Public)
	assert.True(t, r.HideChrome)
}

func TestNewStartsOnLogin(t *testing.T) {
	r := New()

	route, query := r.Current()
	assert.Equal(t, PathLogin, route.Path)
	assert.Empty(t, query)
	assert.True(t, r.OnPublic())
}

func TestNavigateDeliversEvent(t *testing.T) {
	r := New()

	r.Navigate(PathReservas, url.Values{"status": {"PENDENTE"}})

	assert.Equal(t, PathReservas, r.CurrentPath())
	assert.False(t, r.OnPublic())

	msg := r.WaitForNavigation()()
	nav, ok := msg.(NavigatedMsg)
	require.True(t, ok)
	assert.Equal(t, PathReservas, nav.Route.Path)
	assert.Equal(t, "PENDENTE", nav.Query.Get("status"))
}

func TestNavigateNilQuery(t *testing.T) {
	r := New()

	r.Navigate(PathDashboard, nil)

	_, query := r.Current()
	require.NotNil(t, query)
	assert.Empty(t, query)
}

func TestNavigateUnknownPath(t *testing.T) {
	r := New()

	r.Navigate("/pagina-removida", nil)
	assert.Equal(t, PathNaoEncontrada, r.CurrentPath())
	assert.True(t, r.OnPublic())
}

func TestNavigateOverflowKeepsState(t *testing.T) {
	r := New()

	// More navigations than the event buffer holds: events may drop,
	// but Current always reflects the last call.
	for i := 0; i < 40; i++ {
		r.Navigate(PathQuartos, nil)
		r.Navigate(PathFinanceiro, nil)
	}
	assert.Equal(t, PathFinanceiro, r.CurrentPath())
}
