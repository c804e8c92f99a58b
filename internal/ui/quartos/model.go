// Package quartos renders the rooms page: inventory listing with
// create, edit, release and delete actions.
package quartos

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

// loadedMsg carries the fetched room list.
type loadedMsg struct {
	rooms []model.Quarto
	err   error
}

// actionDoneMsg reports a mutation round trip.
type actionDoneMsg struct {
	err     error
	success string
}

// item wraps a room for the bubbles list.
type item struct{ room model.Quarto }

func (i item) FilterValue() string { return i.room.Numero }
func (i item) Title() string {
	return fmt.Sprintf("Quarto %s · %s", i.room.Numero, i.room.Tipo)
}
func (i item) Description() string {
	return fmt.Sprintf("%s · R$ %.2f/diária", i.room.Status, i.room.ValorDiaria)
}

// formBindings holds form values on the heap so huh's Value() pointers
// survive Bubble Tea model copies.
type formBindings struct {
	numero      string
	nome        string
	tipo        string
	valorDiaria string
	descricao   string
}

// Model is the rooms page component.
type Model struct {
	list     list.Model
	svc      *api.QuartosService
	keys     *keys.KeyMap
	styles   *theme.Styles
	toasts   *toast.Notifier
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   int64
	width    int
	height   int
}

// New creates the rooms page model.
func New(svc *api.QuartosService, k *keys.KeyMap, st *theme.Styles, toasts *toast.Notifier, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Quartos"
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
		width:  width,
		height: height,
	}
}

// Init loads the room list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the rooms page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.rooms))
		for i, r := range msg.rooms {
			items[i] = item{room: r}
		}
		return m, m.list.SetItems(items)

	case actionDoneMsg:
		m.form = nil
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

	case msg.String() == "n":
		m.editMode = false
		m.editID = 0
		*m.fb = formBindings{tipo: "PADRAO"}
		m.form = m.buildForm()
		return m, m.form.Init()

	case msg.String() == "e":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		m.editMode = true
		m.editID = it.room.ID
		*m.fb = formBindings{
			numero:      it.room.Numero,
			nome:        it.room.Nome,
			tipo:        it.room.Tipo,
			valorDiaria: strconv.FormatFloat(it.room.ValorDiaria, 'f', 2, 64),
			descricao:   it.room.Descricao,
		}
		m.form = m.buildForm()
		return m, m.form.Init()

	case msg.String() == "l":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.liberar(it.room.ID)

	case msg.String() == "d":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.excluir(it.room.ID)
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

// View renders the rooms page.
func (m Model) View() string {
	if m.form != nil {
		title := "Novo quarto"
		if m.editMode {
			title = "Editar quarto"
		}
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(m.styles.Palette.Primary).
			MarginBottom(1).
			Render(title)
		return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n" + m.form.View())
	}
	return m.list.View()
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		rooms, err := svc.List(context.Background())
		return loadedMsg{rooms: rooms, err: err}
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Número").
				Value(&m.fb.numero).
				Validate(validateRequired("Número")),
			huh.NewInput().
				Title("Nome").
				Placeholder("opcional").
				Value(&m.fb.nome),
			huh.NewSelect[string]().
				Title("Tipo").
				Options(
					huh.NewOption("Padrão", "PADRAO"),
					huh.NewOption("Casal", "CASAL"),
					huh.NewOption("Família", "FAMILIA"),
					huh.NewOption("Suíte", "SUITE"),
				).
				Value(&m.fb.tipo),
			huh.NewInput().
				Title("Valor da diária").
				Placeholder("0,00").
				Value(&m.fb.valorDiaria).
				Validate(validateMoney),
			huh.NewText().
				Title("Descrição").
				Value(&m.fb.descricao),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	svc := m.svc
	valor, _ := strconv.ParseFloat(strings.ReplaceAll(m.fb.valorDiaria, ",", "."), 64)
	room := model.Quarto{
		Numero:      m.fb.numero,
		Nome:        m.fb.nome,
		Tipo:        m.fb.tipo,
		ValorDiaria: valor,
		Descricao:   m.fb.descricao,
	}
	if m.editMode {
		id := m.editID
		return func() tea.Msg {
			_, err := svc.Atualizar(context.Background(), id, room)
			return actionDoneMsg{err: err, success: "Quarto atualizado."}
		}
	}
	return func() tea.Msg {
		_, err := svc.Criar(context.Background(), room)
		return actionDoneMsg{err: err, success: "Quarto criado."}
	}
}

func (m Model) liberar(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, err := svc.Liberar(context.Background(), id)
		return actionDoneMsg{err: err, success: "Quarto liberado."}
	}
}

func (m Model) excluir(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.Excluir(context.Background(), id)
		return actionDoneMsg{err: err, success: "Quarto excluído."}
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

func validateMoney(s string) error {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return fmt.Errorf("informe um valor numérico")
	}
	return nil
}
