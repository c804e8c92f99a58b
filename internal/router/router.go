// Package router holds the console's route table and navigation state.
// Routes mirror the pages of the admin console; navigation requests can
// arrive from any goroutine (HTTP callbacks, pollers) and are delivered
// to the UI through a buffered event channel.
package router

import (
	"net/url"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// Route paths known to the console.
const (
	PathLogin         = "/login"
	PathDashboard     = "/dashboard"
	PathNotificacoes  = "/notificacoes"
	PathHospedagens   = "/hospedagens"
	PathQuartos       = "/quartos"
	PathFinanceiro    = "/financeiro"
	PathReservas      = "/reservas"
	PathRelatorios    = "/relatorios"
	PathUsuarios      = "/usuarios"
	PathAcessoNegado  = "/acesso-negado"
	PathNaoEncontrada = "/nao-encontrada"
)

// Route describes a single console page.
type Route struct {
	Path  string
	Title string

	// Public routes require no session and never show error toasts for
	// background failures.
	Public bool

	// HideChrome suppresses the navbar and notification badge.
	HideChrome bool

	// Roles restricts access to users carrying at least one of the
	// listed roles. Empty means any authenticated user.
	Roles []model.Role
}

// Table is the full route table, mirroring the console's page set.
var Table = []Route{
	{Path: PathLogin, Title: "Login", Public: true, HideChrome: true},
	{Path: PathAcessoNegado, Title: "Acesso negado", Public: true, HideChrome: true},
	{Path: PathNaoEncontrada, Title: "Página não encontrada", Public: true, HideChrome: true},
	{Path: PathDashboard, Title: "Dashboard"},
	{Path: PathNotificacoes, Title: "Notificações"},
	{Path: PathHospedagens, Title: "Hospedagens"},
	{Path: PathQuartos, Title: "Quartos"},
	{Path: PathFinanceiro, Title: "Financeiro"},
	{Path: PathReservas, Title: "Reservas"},
	{Path: PathRelatorios, Title: "Relatórios"},
	{Path: PathUsuarios, Title: "Usuários", Roles: []model.Role{model.RoleAdmin, model.RoleDev}},
}

// Lookup finds the route for a path. Unknown paths resolve to the
// not-found route, mirroring the catch-all page.
func Lookup(path string) Route {
	for _, r := range Table {
		if r.Path == path {
			return r
		}
	}
	return Lookup(PathNaoEncontrada)
}

// NavigatedMsg is a tea.Msg delivered when the current route changes.
type NavigatedMsg struct {
	Route Route
	Query url.Values
}

// Router is the single source of truth for "which page is the user on".
type Router struct {
	mu      sync.Mutex
	current Route
	query   url.Values
	events  chan NavigatedMsg
}

// New creates a Router positioned on the login route.
func New() *Router {
	return &Router{
		current: Lookup(PathLogin),
		query:   url.Values{},
		events:  make(chan NavigatedMsg, 16),
	}
}

// Current returns the active route and its query parameters.
func (r *Router) Current() (Route, url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.query
}

// CurrentPath returns the active route path.
func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Path
}

// OnPublic reports whether the active route is public (login, not-found,
// access-denied).
func (r *Router) OnPublic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Public
}

// Navigate switches the current route and notifies subscribers.
// Safe to call from any goroutine.
func (r *Router) Navigate(path string, query url.Values) {
	if query == nil {
		query = url.Values{}
	}
	route := Lookup(path)

	r.mu.Lock()
	r.current = route
	r.query = query
	r.mu.Unlock()

	select {
	case r.events <- NavigatedMsg{Route: route, Query: query}:
	default:
		// Channel full; the UI will catch up from Current.
	}
}

// WaitForNavigation returns a tea.Cmd that blocks until the next route
// change. After handling the message, call it again to keep listening.
func (r *Router) WaitForNavigation() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.events
		if !ok {
			return nil
		}
		return msg
	}
}
