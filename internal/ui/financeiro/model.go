// Package financeiro renders the ledger page: entries for the current
// month with create and cancel actions, plus a running balance.
package financeiro

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

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

// tipoCycle orders the type filter toggled by f. Empty means both.
var tipoCycle = []model.TipoLancamento{
	"",
	model.LancamentoEntrada,
	model.LancamentoSaida,
}

// loadedMsg carries the fetched ledger.
type loadedMsg struct {
	entries []model.Lancamento
	err     error
}

// actionDoneMsg reports a mutation round trip.
type actionDoneMsg struct {
	err     error
	success string
}

// item wraps a ledger entry for the bubbles list.
type item struct{ entry model.Lancamento }

func (i item) FilterValue() string { return i.entry.Descricao }
func (i item) Title() string {
	sign := "+"
	if i.entry.Tipo == model.LancamentoSaida {
		sign = "-"
	}
	title := fmt.Sprintf("%s  %sR$ %.2f  %s", i.entry.Data, sign, i.entry.Valor, i.entry.Descricao)
	if i.entry.Cancelado {
		title += " (cancelado)"
	}
	return title
}
func (i item) Description() string {
	return fmt.Sprintf("%s · %s", i.entry.Origem, i.entry.FormaPagamento)
}

// formBindings holds form values on the heap so huh's Value() pointers
// survive Bubble Tea model copies.
type formBindings struct {
	tipo           string
	valor          string
	descricao      string
	formaPagamento string
}

// motivoBindings holds the cancel-form value.
type motivoBindings struct {
	motivo string
}

// Model is the ledger page component.
type Model struct {
	list       list.Model
	svc        *api.FinanceiroService
	keys       *keys.KeyMap
	styles     *theme.Styles
	toasts     *toast.Notifier
	form       *huh.Form
	fb         *formBindings
	mb         *motivoBindings
	cancelMode bool
	cancelID   int64
	tipoIndex  int
	saldo      float64
	width      int
	height     int
}

// New creates the ledger page model.
func New(svc *api.FinanceiroService, k *keys.KeyMap, st *theme.Styles, toasts *toast.Notifier, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-3)
	l.Title = "Financeiro"
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

// Init loads the current month's ledger.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the ledger page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.saldo = 0
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = item{entry: e}
			if e.Cancelado {
				continue
			}
			if e.Tipo == model.LancamentoSaida {
				m.saldo -= e.Valor
			} else {
				m.saldo += e.Valor
			}
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
		m.tipoIndex = (m.tipoIndex + 1) % len(tipoCycle)
		return m, m.load()

	case msg.String() == "n":
		*m.fb = formBindings{tipo: string(model.LancamentoEntrada)}
		m.cancelMode = false
		m.form = m.buildCreateForm()
		return m, m.form.Init()

	case msg.String() == "x":
		it, ok := m.list.SelectedItem().(item)
		if !ok || it.entry.Cancelado {
			return m, nil
		}
		m.cancelMode = true
		m.cancelID = it.entry.ID
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

// View renders the ledger page.
func (m Model) View() string {
	if m.form != nil {
		title := "Novo lançamento"
		if m.cancelMode {
			title = "Cancelar lançamento"
		}
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(m.styles.Palette.Primary).
			MarginBottom(1).
			Render(title)
		return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n" + m.form.View())
	}

	color := m.styles.Palette.Success
	if m.saldo < 0 {
		color = m.styles.Palette.Danger
	}
	saldo := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Padding(0, 1).
		Render(fmt.Sprintf("Saldo do mês: R$ %.2f", m.saldo))
	if tipo := tipoCycle[m.tipoIndex]; tipo != "" {
		saldo += m.styles.Help.Render(" · filtro: " + string(tipo))
	}
	return lipgloss.JoinVertical(lipgloss.Left, saldo, m.list.View())
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	tipo := tipoCycle[m.tipoIndex]
	return func() tea.Msg {
		now := time.Now()
		periodo := model.PeriodoFilter{
			Inicio: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"),
			Fim:    now.Format("2006-01-02"),
		}
		entries, err := svc.List(context.Background(), periodo, tipo)
		return loadedMsg{entries: entries, err: err}
	}
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tipo").
				Options(
					huh.NewOption("Entrada", string(model.LancamentoEntrada)),
					huh.NewOption("Saída", string(model.LancamentoSaida)),
				).
				Value(&m.fb.tipo),
			huh.NewInput().
				Title("Valor").
				Placeholder("0,00").
				Value(&m.fb.valor).
				Validate(validateMoney),
			huh.NewInput().
				Title("Descrição").
				Value(&m.fb.descricao).
				Validate(validateRequired("Descrição")),
			huh.NewSelect[string]().
				Title("Forma de pagamento").
				Options(
					huh.NewOption("Dinheiro", "DINHEIRO"),
					huh.NewOption("Pix", "PIX"),
					huh.NewOption("Cartão", "CARTAO"),
				).
				Value(&m.fb.formaPagamento),
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
	valor, _ := strconv.ParseFloat(strings.ReplaceAll(m.fb.valor, ",", "."), 64)
	entry := model.Lancamento{
		Tipo:           model.TipoLancamento(m.fb.tipo),
		Origem:         "MANUAL",
		Data:           time.Now().Format("2006-01-02"),
		Valor:          valor,
		FormaPagamento: m.fb.formaPagamento,
		Descricao:      m.fb.descricao,
	}
	return func() tea.Msg {
		_, err := svc.Criar(context.Background(), entry)
		return actionDoneMsg{err: err, success: "Lançamento registrado."}
	}
}

func (m Model) cancelar() tea.Cmd {
	svc := m.svc
	id := m.cancelID
	motivo := m.mb.motivo
	return func() tea.Msg {
		err := svc.Cancelar(context.Background(), id, motivo)
		return actionDoneMsg{err: err, success: "Lançamento cancelado."}
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
