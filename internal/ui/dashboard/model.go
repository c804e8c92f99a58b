// Package dashboard renders the landing page: occupancy and financial
// KPIs plus the latest ledger movements.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
)

// LoadedMsg carries the dashboard aggregate.
type LoadedMsg struct {
	Overview model.DashboardOverview
	Err      error
}

// Model is the dashboard view component.
type Model struct {
	svc     *api.DashboardService
	keys    *keys.KeyMap
	styles  *theme.Styles
	data    model.DashboardOverview
	loaded  bool
	loadErr error
	width   int
	height  int
}

// New creates a dashboard model.
func New(svc *api.DashboardService, k *keys.KeyMap, st *theme.Styles, width, height int) Model {
	return Model{
		svc:    svc,
		keys:   k,
		styles: st,
		width:  width,
		height: height,
	}
}

// Init loads the current month's overview.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loaded = true
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.data = msg.Overview
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.load()
		}
	}
	return m, nil
}

// View renders the KPI cards and the recent movements.
func (m Model) View() string {
	if !m.loaded {
		return m.styles.Help.Render("Carregando painel...")
	}
	if m.loadErr != nil {
		return lipgloss.NewStyle().
			Foreground(m.styles.Palette.Danger).
			Padding(1, 2).
			Render("Não foi possível carregar o painel. Pressione r para tentar novamente.")
	}

	k := m.data.Kpis
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.card("Ocupação", fmt.Sprintf("%d quartos", k.OcupacaoAtual)),
		m.card("Livres", fmt.Sprintf("%d quartos", k.QuartosLivres)),
		m.card("Check-ins hoje", fmt.Sprintf("%d", k.CheckinsHoje)),
		m.card("Check-outs hoje", fmt.Sprintf("%d", k.CheckoutsHoje)),
		m.card("Reservas pendentes", fmt.Sprintf("%d", k.ReservasPendentes)),
		m.card("Saldo do dia", fmt.Sprintf("R$ %.2f", k.SaldoDia)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, cards, m.renderMovimentos())
}

// card renders one KPI box.
func (m Model) card(label, value string) string {
	inner := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Help.Render(label),
		lipgloss.NewStyle().Bold(true).Foreground(m.styles.Palette.Primary).Render(value),
	)
	return m.styles.Panel.Padding(0, 1).Render(inner)
}

// renderMovimentos lists the most recent ledger entries.
func (m Model) renderMovimentos() string {
	if len(m.data.Movimentos) == 0 {
		return m.styles.Help.Padding(1, 2).Render("Sem movimentações no período.")
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Padding(1, 2, 0, 2).Render("Últimas movimentações"),
	}
	limit := len(m.data.Movimentos)
	if limit > 8 {
		limit = 8
	}
	for _, l := range m.data.Movimentos[:limit] {
		sign := "+"
		color := m.styles.Palette.Success
		if l.Tipo == model.LancamentoSaida {
			sign = "-"
			color = m.styles.Palette.Danger
		}
		valor := lipgloss.NewStyle().Foreground(color).
			Render(fmt.Sprintf("%sR$ %.2f", sign, l.Valor))
		rows = append(rows, m.styles.ListItem.Render(
			fmt.Sprintf("%s  %s  %s", l.Data, valor, l.Descricao)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// load fetches the overview for the current month.
func (m Model) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		now := time.Now()
		periodo := model.PeriodoFilter{
			Inicio: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"),
			Fim:    now.Format("2006-01-02"),
		}
		overview, err := svc.Resumo(context.Background(), periodo)
		return LoadedMsg{Overview: overview, Err: err}
	}
}
