// Package usuarios renders the account management page, reachable only
// by administrators. It lists accounts with create, edit, block and
// password-reset actions.
package usuarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

const pageSize = 20

// loadedMsg carries one page of accounts.
type loadedMsg struct {
	page api.UsuarioPage
	err  error
}

// perfisMsg carries the assignable role names for the form selector.
type perfisMsg struct {
	perfis []string
	err    error
}

// actionDoneMsg reports a mutation round trip.
type actionDoneMsg struct {
	err     error
	success string
}

// resetDoneMsg carries the temporary password issued by a reset.
type resetDoneMsg struct {
	senha string
	err   error
}

// item wraps an account for the bubbles list.
type item struct{ user model.Usuario }

func (i item) FilterValue() string { return i.user.Nome }
func (i item) Title() string {
	return fmt.Sprintf("%s (%s)", i.user.Nome, i.user.Username)
}
func (i item) Description() string {
	return fmt.Sprintf("%s · %s · %s", i.user.Email, i.user.Perfil, i.user.Status)
}

// formBindings holds form values on the heap so huh's Value() pointers
// survive Bubble Tea model copies.
type formBindings struct {
	nome     string
	username string
	email    string
	numero   string
	perfil   string
}

// Model is the account management page component.
type Model struct {
	list        list.Model
	svc         *api.UsuariosService
	keys        *keys.KeyMap
	styles      *theme.Styles
	toasts      *toast.Notifier
	form        *huh.Form
	fb          *formBindings
	perfis      []string
	editMode    bool
	editID      int64
	page        int
	total       int
	query       string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates the account management model.
func New(svc *api.UsuariosService, k *keys.KeyMap, st *theme.Styles, toasts *toast.Notifier, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-3)
	l.Title = "Usuários"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.Header

	si := textinput.New()
	si.Placeholder = "buscar usuário..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		svc:         svc,
		keys:        k,
		styles:      st,
		toasts:      toasts,
		fb:          &formBindings{},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init loads the first page of accounts.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.total = msg.page.TotalItems
		items := make([]list.Item, len(msg.page.Items))
		for i, u := range msg.page.Items {
			items[i] = item{user: u}
		}
		return m, m.list.SetItems(items)

	case perfisMsg:
		if msg.err == nil {
			m.perfis = msg.perfis
		}
		m.form = m.buildForm()
		return m, m.form.Init()

	case actionDoneMsg:
		m.form = nil
		if msg.err != nil {
			return m, nil
		}
		if msg.success != "" {
			m.toasts.Success(msg.success)
		}
		return m, m.load()

	case resetDoneMsg:
		if msg.err != nil {
			m.toasts.Error("Não foi possível redefinir a senha.")
			return m, nil
		}
		m.toasts.Warning("Senha temporária: " + msg.senha)
		return m, m.load()

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

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
		m.query = ""
		m.page = 0
		return m, m.load()
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()

	case key.Matches(msg, m.keys.NextPage):
		if (m.page+1)*pageSize < m.total {
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

	case msg.String() == "n":
		m.editMode = false
		m.editID = 0
		*m.fb = formBindings{}
		return m, m.loadPerfis()

	case msg.String() == "e":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		m.editMode = true
		m.editID = it.user.ID
		*m.fb = formBindings{
			nome:     it.user.Nome,
			username: it.user.Username,
			email:    it.user.Email,
			numero:   it.user.Numero,
			perfil:   it.user.Perfil,
		}
		return m, m.loadPerfis()

	case msg.String() == "b":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		status := "BLOQUEADO"
		success := "Usuário bloqueado."
		if it.user.Status == "BLOQUEADO" || it.user.Status == "INATIVO" {
			status = "ATIVO"
			success = "Usuário reativado."
		}
		return m, m.alterarStatus(it.user.ID, status, success)

	case msg.String() == "s":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.resetSenha(it.user.ID)

	case msg.String() == "d":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.excluir(it.user.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submit()
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// View renders the page.
func (m Model) View() string {
	if m.form != nil {
		title := "Novo usuário"
		if m.editMode {
			title = "Editar usuário"
		}
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(m.styles.Palette.Primary).
			MarginBottom(1).
			Render(title)
		return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n" + m.form.View())
	}

	var rows []string
	if m.searchMode {
		rows = append(rows, lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View()))
	}
	rows = append(rows, m.list.View())

	totalPages := 1
	if m.total > 0 {
		totalPages = (m.total + pageSize - 1) / pageSize
	}
	rows = append(rows, m.styles.Help.Padding(0, 1).Render(
		fmt.Sprintf("página %d/%d · %d contas", m.page+1, totalPages, m.total)))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	page, q := m.page, m.query
	return func() tea.Msg {
		result, err := svc.List(context.Background(), page, pageSize, q)
		return loadedMsg{page: result, err: err}
	}
}

func (m Model) loadPerfis() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		perfis, err := svc.Perfis(context.Background())
		return perfisMsg{perfis: perfis, err: err}
	}
}

func (m *Model) buildForm() *huh.Form {
	perfilOpts := make([]huh.Option[string], 0, len(m.perfis))
	for _, p := range m.perfis {
		perfilOpts = append(perfilOpts, huh.NewOption(p, p))
	}
	if len(perfilOpts) == 0 {
		perfilOpts = []huh.Option[string]{
			huh.NewOption("GERENTE", "GERENTE"),
			huh.NewOption("ADMIN", "ADMIN"),
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				Value(&m.fb.nome).
				Validate(validateRequired("Nome")),
			huh.NewInput().
				Title("Usuário").
				Value(&m.fb.username).
				Validate(validateRequired("Usuário")),
			huh.NewInput().
				Title("E-mail").
				Value(&m.fb.email).
				Validate(validateRequired("E-mail")),
			huh.NewInput().
				Title("Telefone").
				Placeholder("opcional").
				Value(&m.fb.numero),
			huh.NewSelect[string]().
				Title("Perfil").
				Options(perfilOpts...).
				Value(&m.fb.perfil),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	svc := m.svc
	user := model.Usuario{
		Nome:     m.fb.nome,
		Username: m.fb.username,
		Email:    m.fb.email,
		Numero:   m.fb.numero,
		Perfil:   m.fb.perfil,
	}
	if m.editMode {
		id := m.editID
		return func() tea.Msg {
			_, err := svc.Atualizar(context.Background(), id, user)
			return actionDoneMsg{err: err, success: "Usuário atualizado."}
		}
	}
	return func() tea.Msg {
		_, err := svc.Criar(context.Background(), user)
		return actionDoneMsg{err: err, success: "Usuário criado com senha temporária."}
	}
}

func (m Model) alterarStatus(id int64, status, success string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.AlterarStatus(context.Background(), id, status)
		return actionDoneMsg{err: err, success: success}
	}
}

func (m Model) resetSenha(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		senha, err := svc.ResetSenha(context.Background(), id)
		return resetDoneMsg{senha: senha, err: err}
	}
}

func (m Model) excluir(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.Excluir(context.Background(), id)
		return actionDoneMsg{err: err, success: "Usuário excluído."}
	}
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s é obrigatório", fieldName)
		}
		return nil
	}
}
