// Package guard enforces authentication and role requirements for
// route navigation before the target view is ever rendered.
package guard

import (
	"net/url"
	"sync"
	"time"

	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// expiredWarnWindow suppresses duplicate "session expired" warnings
// while a burst of guarded navigations is being rejected.
const expiredWarnWindow = 3 * time.Second

// Session is the slice of session state the guard consults.
type Session interface {
	Token() string
	IsValid() bool
	HasRole(r model.Role) bool
	Logout()
}

// Guard decides whether a navigation may proceed.
type Guard struct {
	session Session
	routes  *router.Router
	toasts  *toast.Notifier

	mu       sync.Mutex
	warnedAt time.Time
	now      func() time.Time
}

// New builds a guard over the given session.
func New(session Session, routes *router.Router, toasts *toast.Notifier) *Guard {
	return &Guard{
		session: session,
		routes:  routes,
		toasts:  toasts,
		now:     time.Now,
	}
}

// Allow reports whether navigation to path may proceed. When it may
// not, Allow has already redirected (login or acesso-negado) and the
// caller must abandon the navigation.
func (g *Guard) Allow(path string) bool {
	route := router.Lookup(path)
	if route.Public {
		return true
	}

	if g.session.Token() == "" || !g.session.IsValid() {
		g.warnExpired()
		g.session.Logout()
		g.routes.Navigate(router.PathLogin, url.Values{"returnUrl": {path}})
		return false
	}

	if len(route.Roles) > 0 && !hasAny(g.session, route.Roles) {
		g.toasts.Warning("Você não tem permissão para acessar essa página.")
		g.routes.Navigate(router.PathAcessoNegado, url.Values{"from": {path}})
		return false
	}

	return true
}

// hasAny reports whether the session carries at least one of roles.
func hasAny(s Session, roles []model.Role) bool {
	for _, r := range roles {
		if s.HasRole(r) {
			return true
		}
	}
	return false
}

// warnExpired shows the expiry toast at most once per window. A fresh
// login resets nothing here; the window is short enough not to matter.
func (g *Guard) warnExpired() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.warnedAt.IsZero() && now.Sub(g.warnedAt) < expiredWarnWindow {
		return
	}
	g.warnedAt = now

	if g.session.Token() != "" {
		g.toasts.Warning("Sua sessão expirou. Entre novamente para continuar.")
	}
}
