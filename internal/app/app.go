// Package app wires every console subsystem into the root Bubble Tea
// model: routing, session, notification delivery, toasts, and the
// per-page view models.
package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/guard"
	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/notify"
	"github.com/pousadadobrejo/pousada-console/internal/pwdprompt"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/session"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
	"github.com/pousadadobrejo/pousada-console/internal/ui"
	"github.com/pousadadobrejo/pousada-console/internal/ui/dashboard"
	finview "github.com/pousadadobrejo/pousada-console/internal/ui/financeiro"
	hospview "github.com/pousadadobrejo/pousada-console/internal/ui/hospedagens"
	loginview "github.com/pousadadobrejo/pousada-console/internal/ui/login"
	notifview "github.com/pousadadobrejo/pousada-console/internal/ui/notifications"
	"github.com/pousadadobrejo/pousada-console/internal/ui/passwordform"
	quartview "github.com/pousadadobrejo/pousada-console/internal/ui/quartos"
	relview "github.com/pousadadobrejo/pousada-console/internal/ui/relatorios"
	resview "github.com/pousadadobrejo/pousada-console/internal/ui/reservas"
	"github.com/pousadadobrejo/pousada-console/internal/ui/toasts"
	userview "github.com/pousadadobrejo/pousada-console/internal/ui/usuarios"
)

// themeSavedMsg reports the backend round trip of a theme change.
type themeSavedMsg struct{ err error }

// Services groups the API surface the root model hands to its views.
type Services struct {
	Dashboard   *api.DashboardService
	Hospedagens *api.HospedagensService
	Quartos     *api.QuartosService
	Reservas    *api.ReservasService
	Financeiro  *api.FinanceiroService
	Usuarios    *api.UsuariosService
	Reports     *api.ReportsService
}

// Model is the root Bubble Tea model.
type Model struct {
	layout  ui.Layout
	keys    *keys.KeyMap
	styles  *theme.Styles
	themes  *theme.Manager
	routes  *router.Router
	guard   *guard.Guard
	session *session.Store
	notify  *notify.Client
	toasts  *toast.Notifier
	prompt  *pwdprompt.Sequencer
	svcs    Services

	route router.Route
	query url.Values
	ready bool

	promptOpen bool

	loginView  loginview.Model
	dashView   dashboard.Model
	notifView  notifview.Model
	hospView   hospview.Model
	quartView  quartview.Model
	resView    resview.Model
	finView    finview.Model
	userView   userview.Model
	relView    relview.Model
	pwdView    passwordform.Model
	overlay    toasts.Overlay
}

// New assembles the root model. The session must already be bound to
// the gatekeeper.
func New(
	sess *session.Store,
	routes *router.Router,
	g *guard.Guard,
	nc *notify.Client,
	tn *toast.Notifier,
	seq *pwdprompt.Sequencer,
	themes *theme.Manager,
	svcs Services,
	km *keys.KeyMap,
	searchDebounce time.Duration,
) Model {
	styles := new(theme.Styles)
	*styles = themes.Styles()

	const w, h = 80, 24
	m := Model{
		keys:    km,
		styles:  styles,
		themes:  themes,
		routes:  routes,
		guard:   g,
		session: sess,
		notify:  nc,
		toasts:  tn,
		prompt:  seq,
		svcs:    svcs,

		loginView: loginview.New(sess, *styles, w, h),
		dashView:  dashboard.New(svcs.Dashboard, km, styles, w, h),
		notifView: notifview.New(nc, km, styles, searchDebounce, w, h),
		hospView:  hospview.New(svcs.Hospedagens, km, styles, tn, w, h),
		quartView: quartview.New(svcs.Quartos, km, styles, tn, w, h),
		resView:   resview.New(svcs.Reservas, km, styles, tn, w, h),
		finView:   finview.New(svcs.Financeiro, km, styles, tn, w, h),
		userView:  userview.New(svcs.Usuarios, km, styles, tn, w, h),
		relView:   relview.New(svcs.Reports, styles, tn, w, h),
		pwdView:   passwordform.New(seq, svcs.Usuarios, styles, w, h),
		overlay:   toasts.New(tn, styles, w),
	}
	m.route, m.query = routes.Current()
	return m
}

// Init starts the background message pumps and lands on the first
// route: dashboard when a valid session survived the restart, login
// otherwise.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.routes.WaitForNavigation(),
		m.toasts.WaitForUpdate(),
		m.notify.WaitForEvent(),
		m.prompt.WaitForState(),
	}

	if m.session.Token() != "" && m.session.IsValid() {
		m.notify.SetEnabled(true)
		m.notify.Start()
		m.routes.Navigate(router.PathDashboard, nil)
		cmds = append(cmds, m.refreshProfile())
	} else {
		m.routes.Navigate(router.PathLogin, nil)
	}

	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg)

	case tea.FocusMsg:
		// Foreground again: resume cheap polling.
		if !m.routes.OnPublic() {
			m.notify.StartPolling()
		}
		return m, nil

	case tea.BlurMsg:
		m.notify.StopPolling()
		return m, nil

	case router.NavigatedMsg:
		return m.navigated(msg)

	case toast.UpdatedMsg:
		return m, m.toasts.WaitForUpdate()

	case notify.UnreadMsg, notify.ConnectionMsg, notify.PushedMsg:
		var cmd tea.Cmd
		if m.route.Path == router.PathNotificacoes {
			m.notifView, cmd = m.notifView.Update(msg)
		}
		return m, tea.Batch(cmd, m.notify.WaitForEvent())

	case pwdprompt.StateMsg:
		m.promptOpen = msg.Open
		cmd := m.pwdView.Apply(msg)
		return m, tea.Batch(cmd, m.prompt.WaitForState())

	case passwordform.RedirectMsg:
		m.session.ClearPasswordChangeFlag()
		m.routes.Navigate(router.PathDashboard, nil)
		return m, nil

	case loginview.LoggedInMsg:
		return m.loggedIn(msg)

	case theme.ChangedMsg:
		*m.styles = msg.Styles
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.toasts.Warning("Preferência de tema não foi salva no servidor.")
		}
		return m, nil

	case tea.KeyMsg:
		if model, cmd, handled := m.globalKeys(msg); handled {
			return model, cmd
		}
	}

	return m.updateActiveView(msg)
}

// resize propagates new dimensions to every view.
func (m Model) resize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.layout = ui.NewLayout(msg.Width, msg.Height)
	m.ready = true
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()

	m.loginView.SetSize(msg.Width, msg.Height)
	m.dashView.SetSize(w, h)
	m.hospView.SetSize(w, h)
	m.quartView.SetSize(w, h)
	m.resView.SetSize(w, h)
	m.finView.SetSize(w, h)
	m.userView.SetSize(w, h)
	m.relView.SetSize(w, h)
	m.pwdView.SetSize(msg.Width, msg.Height)
	m.overlay.SetWidth(w)

	// The feed may need a refetch when the width bucket changes its
	// page size.
	refetch := m.notifView.SetSize(w, h)

	mdl, cmd := m.updateActiveView(msg)
	return mdl, tea.Batch(refetch, cmd)
}

// navigated reacts to a route change: guard check, view init, and
// notification client gating.
func (m Model) navigated(msg router.NavigatedMsg) (tea.Model, tea.Cmd) {
	if !m.guard.Allow(msg.Route.Path) {
		// The guard already redirected; the follow-up NavigatedMsg is
		// on its way.
		return m, m.routes.WaitForNavigation()
	}

	m.route = msg.Route
	m.query = msg.Query

	var cmd tea.Cmd
	switch msg.Route.Path {
	case router.PathLogin:
		m.notify.SetEnabled(false)
		*m.styles = m.themes.ForceClaro().Styles
		cmd = m.loginView.Start(msg.Query.Get("returnUrl"))
	case router.PathDashboard:
		cmd = m.dashView.Init()
	case router.PathHospedagens:
		cmd = m.hospView.Init()
	case router.PathQuartos:
		cmd = m.quartView.Init()
	case router.PathReservas:
		cmd = m.resView.Init()
	case router.PathFinanceiro:
		cmd = m.finView.Init()
	case router.PathUsuarios:
		cmd = m.userView.Init()
	case router.PathRelatorios:
		cmd = m.relView.Init()
	case router.PathNotificacoes:
		cmd = m.notifView.Init()
	}

	return m, tea.Batch(cmd, m.routes.WaitForNavigation())
}

// loggedIn finishes a successful login: restore the user's theme,
// enable delivery, open the password prompt when the account demands
// it, and land on the requested page.
func (m Model) loggedIn(msg loginview.LoggedInMsg) (tea.Model, tea.Cmd) {
	if user, ok := m.session.CurrentUser(); ok && user.Tema != "" {
		changed, _ := m.themes.Set(theme.Normalize(user.Tema), nil, 0)
		*m.styles = changed.Styles
	}

	m.notify.SetEnabled(true)
	m.notify.Start()

	if m.session.ShouldPromptPasswordChange() {
		m.prompt.OpenWith(m.session.PwdChangeReason())
	}

	target := msg.ReturnURL
	if target == "" || target == router.PathLogin {
		target = router.PathDashboard
	}
	m.routes.Navigate(target, nil)
	return m, m.refreshProfile()
}

// globalKeys handles bindings that work on any authenticated page.
func (m Model) globalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.notify.StopPolling()
		m.notify.Disconnect()
		return m, tea.Quit, true
	}

	// While the password modal is up it owns the keyboard.
	if m.promptOpen {
		var cmd tea.Cmd
		m.pwdView, cmd = m.pwdView.Update(msg)
		return m, cmd, true
	}

	if m.routes.OnPublic() {
		if m.route.Path != router.PathLogin && msg.String() == "esc" {
			m.routes.Navigate(router.PathLogin, nil)
			return m, nil, true
		}
		return m, nil, false
	}

	switch msg.String() {
	case "1":
		m.routes.Navigate(router.PathDashboard, nil)
	case "2":
		m.routes.Navigate(router.PathHospedagens, nil)
	case "3":
		m.routes.Navigate(router.PathQuartos, nil)
	case "4":
		m.routes.Navigate(router.PathReservas, nil)
	case "5":
		m.routes.Navigate(router.PathFinanceiro, nil)
	case "6":
		m.routes.Navigate(router.PathUsuarios, nil)
	case "7":
		m.routes.Navigate(router.PathRelatorios, nil)
	case "N":
		m.routes.Navigate(router.PathNotificacoes, nil)
	case "T":
		return m, m.toggleTheme(), true
	case "ctrl+l":
		m.session.Logout()
	default:
		return m, nil, false
	}
	return m, nil, true
}

// toggleTheme flips the palette and persists the preference.
func (m Model) toggleTheme() tea.Cmd {
	themes := m.themes
	svc := m.svcs.Usuarios
	id, _ := m.session.CurrentUserID()
	styles := m.styles
	return func() tea.Msg {
		changed, err := themes.Toggle(svc, id)
		*styles = changed.Styles
		return themeSavedMsg{err: err}
	}
}

// refreshProfile reloads /usuarios/me so roles, theme, and the
// must-change flag reflect the backend.
func (m Model) refreshProfile() tea.Cmd {
	sess := m.session
	prompt := m.prompt
	return func() tea.Msg {
		if _, err := sess.LoadFromBackend(context.Background()); err != nil {
			return nil
		}
		if sess.ShouldPromptPasswordChange() {
			prompt.OpenWith(sess.PwdChangeReason())
		}
		return nil
	}
}

// updateActiveView dispatches the message to the view for the current
// route.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.promptOpen {
		m.pwdView, cmd = m.pwdView.Update(msg)
		return m, cmd
	}

	switch m.route.Path {
	case router.PathLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case router.PathDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	case router.PathHospedagens:
		m.hospView, cmd = m.hospView.Update(msg)
	case router.PathQuartos:
		m.quartView, cmd = m.quartView.Update(msg)
	case router.PathReservas:
		m.resView, cmd = m.resView.Update(msg)
	case router.PathFinanceiro:
		m.finView, cmd = m.finView.Update(msg)
	case router.PathUsuarios:
		m.userView, cmd = m.userView.Update(msg)
	case router.PathRelatorios:
		m.relView, cmd = m.relView.Update(msg)
	case router.PathNotificacoes:
		m.notifView, cmd = m.notifView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}

	if s := m.prompt.Snapshot(); s.Open || s.Completed {
		return m.pwdView.View()
	}

	if m.route.HideChrome {
		return m.renderBare()
	}

	header := m.layout.RenderHeader(*m.styles, m.headerTitle(), m.headerStatus())
	content := m.renderContent()
	if overlay := m.overlay.View(); overlay != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, overlay, content)
	}
	statusBar := m.layout.RenderStatusBar(*m.styles, m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderBare renders the chrome-less routes (login and error pages),
// still with the toast overlay on top.
func (m Model) renderBare() string {
	var content string
	switch m.route.Path {
	case router.PathLogin:
		content = m.loginView.View()
	case router.PathAcessoNegado:
		content = m.renderErrorPage(
			"Acesso negado",
			"Você não tem permissão para acessar "+m.query.Get("from")+".",
		)
	default:
		content = m.renderErrorPage(
			"Página não encontrada",
			"O endereço solicitado não existe.",
		)
	}

	if overlay := m.overlay.View(); overlay != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, overlay, content)
	}
	return content
}

func (m Model) renderErrorPage(title, detail string) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(m.styles.Palette.Danger).Render(title),
		m.styles.Help.Render(detail),
		"",
		m.styles.Help.Render("esc voltar ao login"),
	)
	return lipgloss.Place(
		m.layout.Width, m.layout.Height,
		lipgloss.Center, lipgloss.Center,
		m.styles.Panel.Render(body),
	)
}

// renderContent returns the rendered string for the current route.
func (m Model) renderContent() string {
	switch m.route.Path {
	case router.PathDashboard:
		return m.dashView.View()
	case router.PathHospedagens:
		return m.hospView.View()
	case router.PathQuartos:
		return m.quartView.View()
	case router.PathReservas:
		return m.resView.View()
	case router.PathFinanceiro:
		return m.finView.View()
	case router.PathUsuarios:
		return m.userView.View()
	case router.PathRelatorios:
		return m.relView.View()
	case router.PathNotificacoes:
		return m.notifView.View()
	default:
		return ""
	}
}

// headerTitle is the page title plus the unread badge.
func (m Model) headerTitle() string {
	title := "Pousada do Brejo · " + m.route.Title
	if unread := m.notify.Unread(); unread > 0 {
		title += fmt.Sprintf("  [%d]", unread)
	}
	return title
}

// headerStatus shows who is signed in and whether push is live.
func (m Model) headerStatus() string {
	status := "offline"
	if m.notify.Connected() {
		status = "ao vivo"
	}
	if user, ok := m.session.CurrentUser(); ok {
		name := user.Nome
		if name == "" {
			name = user.Username
		}
		return name + " · " + string(m.session.PrimaryRole()) + " · " + status
	}
	return status
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.route.Path {
	case router.PathNotificacoes:
		return "m marcar lida | M marcar todas | f filtro | / buscar | ←/→ página | r atualizar"
	case router.PathHospedagens:
		return "n check-in | c check-out | p recibo | d excluir | / buscar | r atualizar"
	case router.PathQuartos:
		return "n novo | e editar | l liberar | d excluir | r atualizar"
	case router.PathReservas:
		return "n nova | o confirmar | x cancelar | f filtro | r atualizar"
	case router.PathFinanceiro:
		return "n lançamento | x cancelar | f filtro | r atualizar"
	case router.PathUsuarios:
		return "n novo | e editar | b bloquear | s reset senha | d excluir | / buscar"
	case router.PathRelatorios:
		return "enter gerar | esc cancelar"
	default:
		return "1-7 páginas | N notificações | T tema | ctrl+l sair | ctrl+c fechar"
	}
}
