// Package hospedagens renders the stays page: the active guest list
// with check-in, edit, checkout and receipt actions.
package hospedagens

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

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

// mode selects which panel of the page is active.
type mode int

const (
	modeList mode = iota
	modeCheckin
	modeCheckout
)

// loadedMsg carries the fetched stay list.
type loadedMsg struct {
	stays []model.Hospedagem
	err   error
}

// roomsMsg carries the free room numbers for the check-in selector.
type roomsMsg struct {
	rooms []string
	err   error
}

// actionDoneMsg reports a mutation round trip.
type actionDoneMsg struct {
	err     error
	success string
}

// reciboMsg carries a downloaded receipt.
type reciboMsg struct {
	id  int64
	pdf []byte
	err error
}

// item wraps a stay for the bubbles list.
type item struct{ stay model.Hospedagem }

func (i item) FilterValue() string { return i.stay.Nome }
func (i item) Title() string {
	return fmt.Sprintf("%s · quarto %s", i.stay.Nome, i.stay.NumeroQuarto)
}
func (i item) Description() string {
	return fmt.Sprintf("%s · %d diárias · R$ %.2f · %s",
		i.stay.DataEntrada, i.stay.NumeroDiarias, i.stay.ValorTotal, i.stay.Status)
}

// checkinBindings holds form values on the heap so huh's Value()
// pointers survive Bubble Tea model copies.
type checkinBindings struct {
	nome           string
	cpf            string
	quarto         string
	diarias        string
	valorDiaria    string
	formaPagamento string
	observacoes    string
	tipo           string
}

// checkoutBindings holds the checkout form values.
type checkoutBindings struct {
	descricao string
}

// Model is the stays page component.
type Model struct {
	list        list.Model
	svc         *api.HospedagensService
	keys        *keys.KeyMap
	styles      *theme.Styles
	toasts      *toast.Notifier
	mode        mode
	form        *huh.Form
	cb          *checkinBindings
	ob          *checkoutBindings
	rooms       []string
	checkoutID  int64
	checkoutQ   string
	searchMode  bool
	searchInput textinput.Model
	query       string
	width       int
	height      int
}

// New creates the stays page model.
func New(svc *api.HospedagensService, k *keys.KeyMap, st *theme.Styles, toasts *toast.Notifier, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Hospedagens"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.Header

	si := textinput.New()
	si.Placeholder = "buscar hóspede..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		svc:         svc,
		keys:        k,
		styles:      st,
		toasts:      toasts,
		cb:          &checkinBindings{},
		ob:          &checkoutBindings{},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init loads the stay list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the stays page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.stays))
		for i, s := range msg.stays {
			items[i] = item{stay: s}
		}
		return m, m.list.SetItems(items)

	case roomsMsg:
		if msg.err == nil {
			m.rooms = msg.rooms
		}
		m.mode = modeCheckin
		m.form = m.buildCheckinForm()
		return m, m.form.Init()

	case actionDoneMsg:
		m.mode = modeList
		m.form = nil
		if msg.err != nil {
			return m, nil
		}
		if msg.success != "" {
			m.toasts.Success(msg.success)
		}
		return m, m.load()

	case reciboMsg:
		if msg.err != nil {
			m.toasts.Error("Não foi possível gerar o recibo.")
			return m, nil
		}
		path, err := saveRecibo(msg.id, msg.pdf)
		if err != nil {
			m.toasts.Error("Falha ao salvar o recibo em disco.")
			return m, nil
		}
		m.toasts.Success("Recibo salvo em " + path)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeCheckin, modeCheckout:
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
		return m, m.load()
	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.query = ""
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

	case msg.String() == "n":
		return m, m.loadRooms()

	case msg.String() == "c":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		m.mode = modeCheckout
		m.checkoutID = it.stay.ID
		m.checkoutQ = it.stay.NumeroQuarto
		m.ob.descricao = ""
		m.form = m.buildCheckoutForm()
		return m, m.form.Init()

	case msg.String() == "p":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.fetchRecibo(it.stay.ID)

	case msg.String() == "d":
		it, ok := m.list.SelectedItem().(item)
		if !ok {
			return m, nil
		}
		return m, m.excluir(it.stay.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateForm drives the active huh form.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.mode == modeCheckin {
			return m, m.submitCheckin()
		}
		return m, m.submitCheckout()
	case huh.StateAborted:
		m.mode = modeList
		m.form = nil
		return m, nil
	}

	return m, cmd
}

// View renders the stays page.
func (m Model) View() string {
	switch m.mode {
	case modeCheckin, modeCheckout:
		if m.form == nil {
			return ""
		}
		title := "Check-in"
		if m.mode == modeCheckout {
			title = fmt.Sprintf("Check-out · quarto %s", m.checkoutQ)
		}
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(m.styles.Palette.Primary).
			MarginBottom(1).
			Render(title)
		return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n" + m.form.View())
	}

	if m.searchMode {
		bar := lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, bar, m.list.View())
	}
	return m.list.View()
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	q := m.query
	return func() tea.Msg {
		stays, err := svc.List(context.Background(), q)
		return loadedMsg{stays: stays, err: err}
	}
}

func (m Model) loadRooms() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		rooms, err := svc.QuartosDisponiveis(context.Background())
		return roomsMsg{rooms: rooms, err: err}
	}
}

func (m *Model) buildCheckinForm() *huh.Form {
	*m.cb = checkinBindings{diarias: "1", tipo: string(model.HospedagemComum)}

	roomOpts := make([]huh.Option[string], len(m.rooms))
	for i, r := range m.rooms {
		roomOpts[i] = huh.NewOption("Quarto "+r, r)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome do hóspede").
				Value(&m.cb.nome).
				Validate(validateRequired("Nome")),
			huh.NewInput().
				Title("CPF").
				Placeholder("opcional").
				Value(&m.cb.cpf),
			huh.NewSelect[string]().
				Title("Quarto").
				Options(roomOpts...).
				Value(&m.cb.quarto),
			huh.NewInput().
				Title("Diárias").
				Value(&m.cb.diarias).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Valor da diária").
				Placeholder("0,00").
				Value(&m.cb.valorDiaria).
				Validate(validateMoney),
			huh.NewSelect[string]().
				Title("Forma de pagamento").
				Options(
					huh.NewOption("Dinheiro", "DINHEIRO"),
					huh.NewOption("Pix", "PIX"),
					huh.NewOption("Cartão", "CARTAO"),
					huh.NewOption("Faturado", "FATURADO"),
				).
				Value(&m.cb.formaPagamento),
			huh.NewSelect[string]().
				Title("Tipo").
				Options(
					huh.NewOption("Comum", string(model.HospedagemComum)),
					huh.NewOption("Prefeitura", string(model.HospedagemPrefeitura)),
					huh.NewOption("Corporativo", string(model.HospedagemCorporativo)),
				).
				Value(&m.cb.tipo),
			huh.NewText().
				Title("Observações").
				Value(&m.cb.observacoes),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildCheckoutForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Descrição do check-out").
				Placeholder("consumo, avarias, ajustes...").
				Value(&m.ob.descricao),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submitCheckin() tea.Cmd {
	svc := m.svc
	diarias, _ := strconv.Atoi(m.cb.diarias)
	valor, _ := strconv.ParseFloat(strings.ReplaceAll(m.cb.valorDiaria, ",", "."), 64)
	payload := model.CheckinPayload{
		Nome:           m.cb.nome,
		CPF:            m.cb.cpf,
		NumeroQuarto:   m.cb.quarto,
		NumeroDiarias:  diarias,
		ValorDiaria:    valor,
		FormaPagamento: m.cb.formaPagamento,
		Observacoes:    m.cb.observacoes,
		Tipo:           model.TipoHospedagem(m.cb.tipo),
	}
	return func() tea.Msg {
		_, err := svc.Checkin(context.Background(), payload)
		return actionDoneMsg{err: err, success: "Check-in realizado."}
	}
}

func (m Model) submitCheckout() tea.Cmd {
	svc := m.svc
	id := m.checkoutID
	payload := model.CheckoutPayload{
		NumeroQuarto: m.checkoutQ,
		Descricao:    m.ob.descricao,
	}
	return func() tea.Msg {
		_, err := svc.Checkout(context.Background(), id, payload)
		return actionDoneMsg{err: err, success: "Check-out concluído."}
	}
}

func (m Model) excluir(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.Excluir(context.Background(), id)
		return actionDoneMsg{err: err, success: "Hospedagem excluída."}
	}
}

func (m Model) fetchRecibo(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		pdf, err := svc.Recibo(context.Background(), id)
		return reciboMsg{id: id, pdf: pdf, err: err}
	}
}

// saveRecibo writes the PDF under the user's home directory.
func saveRecibo(id int64, pdf []byte) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, "pousada-recibos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("recibo-%d-%s.pdf", id, time.Now().Format("20060102")))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
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

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("informe um número inteiro positivo")
	}
	return nil
}

func validateMoney(s string) error {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return fmt.Errorf("informe um valor numérico")
	}
	return nil
}
