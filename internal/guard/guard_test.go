package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

type fakeSession struct {
	token   string
	valid   bool
	roles   []model.Role
	logouts int
}

func (f *fakeSession) Token() string { return f.token }

func (f *fakeSession) IsValid() bool { return f.valid }

func (f *fakeSession) HasRole(r model.Role) bool {
	for _, have := range f.roles {
		if have == r {
			return true
		}
	}
	return false
}

func (f *fakeSession) Logout() {
	f.logouts++
	f.token = ""
}

func newGuard(sess *fakeSession) (*Guard, *router.Router, *toast.Notifier) {
	routes := router.New()
	toasts := toast.New()
	return New(sess, routes, toasts), routes, toasts
}

func TestAllowPublicRoutes(t *testing.T) {
	g, _, toasts := newGuard(&fakeSession{})

	assert.True(t, g.Allow(router.PathLogin))
	assert.True(t, g.Allow(router.PathAcessoNegado))
	assert.True(t, g.Allow("/rota-desconhecida"), "unknown paths resolve to the public not-found page")
	assert.Empty(t, toasts.Visible())
}

func TestAllowRejectsExpiredSession(t *testing.T) {
	sess := &fakeSession{token: "velho", valid: false}
	g, routes, toasts := newGuard(sess)

	assert.False(t, g.Allow(router.PathQuartos))

	assert.Equal(t, 1, sess.logouts)
	route, query := routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)
	assert.Equal(t, router.PathQuartos, query.Get("returnUrl"))

	visible := toasts.Visible()
	assert.Len(t, visible, 1)
	assert.Equal(t, model.ToastWarning, visible[0].Type)
}

func TestAllowSilentWhenNeverSignedIn(t *testing.T) {
	sess := &fakeSession{token: "", valid: false}
	g, routes, toasts := newGuard(sess)

	assert.False(t, g.Allow(router.PathDashboard))

	// Redirect happens, but a user who never had a session gets no
	// expiry warning.
	route, _ := routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)
	assert.Empty(t, toasts.Visible())
}

func TestExpiredWarningLatch(t *testing.T) {
	sess := &fakeSession{valid: false}
	g, _, toasts := newGuard(sess)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	g.now = func() time.Time { return clock }

	warn := func() {
		sess.token = "velho"
		g.Allow(router.PathQuartos)
	}

	warn()
	warn()
	warn()
	assert.Len(t, toasts.Visible(), 1, "burst collapses to one warning")
	assert.Equal(t, base, g.warnedAt)

	// Past the window the latch reopens and the warning is re-issued.
	clock = base.Add(expiredWarnWindow)
	warn()
	assert.Equal(t, clock, g.warnedAt)
}

func TestAllowEnforcesRoles(t *testing.T) {
	sess := &fakeSession{token: "tok", valid: true, roles: []model.Role{model.RoleGerente}}
	g, routes, toasts := newGuard(sess)

	// Any authenticated user reaches unrestricted pages.
	assert.True(t, g.Allow(router.PathDashboard))

	// The user admin page wants ADMIN or DEV.
	assert.False(t, g.Allow(router.PathUsuarios))
	assert.Zero(t, sess.logouts, "a role denial does not end the session")

	route, query := routes.Current()
	assert.Equal(t, router.PathAcessoNegado, route.Path)
	assert.Equal(t, router.PathUsuarios, query.Get("from"))

	visible := toasts.Visible()
	assert.Len(t, visible, 1)
	assert.Equal(t, model.ToastWarning, visible[0].Type)

	// With the right role the same page opens.
	sess.roles = []model.Role{model.RoleAdmin}
	assert.True(t, g.Allow(router.PathUsuarios))
}
