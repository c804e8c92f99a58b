// Package reservas renders the reservations page: listing by status
// with create, confirm and cancel actions.
package reservas

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// statusCycle orders the status filter toggled by f. Empty means all.
var statusCycle = []model.ReservaStatus{
	"",
	model.ReservaPendente,
	model.ReservaConfirmada,
	model.ReservaCancelada,
	model.ReservaFinalizada,
}

// loadedMsg carries the fetched reservation list.
type loadedMsg struct {
	reservas []model.Reserva
	err      error
}

// actionDoneMsg reports a mutation round trip.
type actionDoneMsg struct {
	err     error
	success string
}

// item wraps a reservation for the bubbles list.
type item struct{ reserva model.Reserva }

func (i item) FilterValue() string { return i.reserva.Nome }
func (i item) Title() string {
	return fmt.Sprintf("%s · quarto %s · %s", i.reserva.Nome, i.reserva.NumeroQuarto, i.reserva.Status)
}
func (i item) Description() string {
	return fmt.Sprintf("%s → %s · %d diárias", i.reserva.DataEntrada, i.reserva.DataSaida, i.reserva.NumeroDiarias)
}

// formBindings holds create-form values on the heap so huh's Value()
// pointers survive Bubble Tea model copies.
type formBindings struct {
	nome     string
	telefone string
	cpf      string
	email    string
	quarto   string
	entrada  string
	saida    string
	diarias  string
	obs      string
}

// motivoBindings holds the cancel-form value.
type motivoBindings struct {
	motivo string
}

// Model is the reservations page component.
type Model struct {
	list        list.Model
	svc         *api.ReservasService
	keys        *keys.KeyMap
	styles      *theme.Styles
	toasts      *toast.Notifier
	form        *huh.Form
	fb          *formBindings
	mb          *motivoBindings
	cancelMode  bool
	cancelID    int64
	statusIndex int
	width       int
	height      int
}

// New creates the reservations page model.
func New(svc *api.ReservasService, k *keys.KeyMap, st *theme.Styles, toasts *toast.Notifier, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Reservas"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.Header

	return Model{
		list:   l,
		svc:    svc,
		keys:   k,
		styles: st,
		toasts: toasts,
		fb:     &formBindings{},
		mb:     &motivoBindings{},
		width:  width,
		height: height,
	}
}

// Init loads the reservation list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the reservations page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.reservas))
		for i, r := range msg.reservas {
			items[i] = item{reserva: r}
		}
		return m, m.list.SetItems(items)

	case actionDoneMsg:
		m.form = nil
		m.cancelMode = false
		if msg.err != nil {
			return m, nil
		}
		if msg.success != "" {
			m.toasts.Success(msg.success)
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()

	case key.Matches(msg, m.keys.FilterStatus):
		m.statusIndex = (m.statusIndex + 1) % len(statusCycle)
		return m, m.load()

	case msg.String() == "n":
		*m.fb = formBindings{diarias: "1"}
		m.cancelMode = false
		m.form = m.buildCreateForm()
		return m, m.form.Init()

	case msg.String() == "o":
		it, ok := m.list.SelectedItem().(item)
		if !ok || it.reserva.Status != model.ReservaPendente {
			return m, nil
		}
		return m, m.confirmar(it.reserva.ID)

	case msg.String() == "x":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		switch it.reserva.Status {
		case model.ReservaCancelada, model.ReservaFinalizada:
			return m, nil
		}
		m.cancelMode = true
		m.cancelID = it.reserva.ID
		m.mb.motivo = ""
		m.form = m.buildCancelForm()
		return m, m.form.Init()
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
		if m.cancelMode {
			return m, m.cancelar()
		}
		return m, m.submitCreate()
	case huh.StateAborted:
		m.form = nil
		m.cancelMode = false
		return m, nil
	}
	return m, cmd
}

// View renders the reservations page.
func (m Model) View() string {
	if m.form != nil {
		title := "Nova reserva"
		if m.cancelMode {
			title = "Cancelar reserva"
		}
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(m.styles.Palette.Primary).
			MarginBottom(1).
			Render(title)
		return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n" + m.form.View())
	}

	view := m.list.View()
	if status := statusCycle[m.statusIndex]; status != "" {
		filter := m.styles.Help.Padding(0, 1).Render("filtro: " + string(status))
		view = lipgloss.JoinVertical(lipgloss.Left, filter, view)
	}
	return view
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	status := statusCycle[m.statusIndex]
	return func() tea.Msg {
		var (
			reservas []model.Reserva
			err      error
		)
		if status == "" {
			reservas, err = svc.List(context.Background())
		} else {
			reservas, err = svc.PorStatus(context.Background(), status)
		}
		return loadedMsg{reservas: reservas, err: err}
	}
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				Value(&m.fb.nome).
				Validate(validateRequired("Nome")),
			huh.NewInput().
				Title("Telefone").
				Value(&m.fb.telefone).
				Validate(validateRequired("Telefone")),
			huh.NewInput().
				Title("CPF").
				Value(&m.fb.cpf),
			huh.NewInput().
				Title("E-mail").
				Value(&m.fb.email),
			huh.NewInput().
				Title("Quarto").
				Value(&m.fb.quarto).
				Validate(validateRequired("Quarto")),
			huh.NewInput().
				Title("Entrada").
				Placeholder("AAAA-MM-DD").
				Value(&m.fb.entrada).
				Validate(validateDate),
			huh.NewInput().
				Title("Saída").
				Placeholder("AAAA-MM-DD").
				Value(&m.fb.saida).
				Validate(validateDate),
			huh.NewInput().
				Title("Diárias").
				Value(&m.fb.diarias).
				Validate(validatePositiveInt),
			huh.NewText().
				Title("Observações").
				Value(&m.fb.obs),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildCancelForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Motivo do cancelamento").
				Value(&m.mb.motivo).
				Validate(validateRequired("Motivo")),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submitCreate() tea.Cmd {
	svc := m.svc
	diarias, _ := strconv.Atoi(m.fb.diarias)
	reserva := model.Reserva{
		Nome:          m.fb.nome,
		Telefone:      m.fb.telefone,
		CPF:           m.fb.cpf,
		Email:         m.fb.email,
		NumeroQuarto:  m.fb.quarto,
		DataEntrada:   m.fb.entrada,
		DataSaida:     m.fb.saida,
		NumeroDiarias: diarias,
		Observacoes:   m.fb.obs,
	}
	return func() tea.Msg {
		_, err := svc.Criar(context.Background(), reserva)
		return actionDoneMsg{err: err, success: "Reserva criada."}
	}
}

func (m Model) confirmar(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.Confirmar(context.Background(), id, "")
		return actionDoneMsg{err: err, success: "Reserva confirmada."}
	}
}

func (m Model) cancelar() tea.Cmd {
	svc := m.svc
	id := m.cancelID
	motivo := m.mb.motivo
	return func() tea.Msg {
		_, err := svc.Cancelar(context.Background(), id, motivo)
		return actionDoneMsg{err: err, success: "Reserva cancelada."}
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

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return fmt.Errorf("use o formato AAAA-MM-DD")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("informe um número inteiro positivo")
	}
	return nil
}
