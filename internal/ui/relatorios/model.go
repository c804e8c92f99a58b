// Package relatorios renders the reports page: a menu of PDF exports
// over a date interval, saved under the user's home directory.
package relatorios

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// exportDoneMsg carries the generated PDF.
type exportDoneMsg struct {
	kind string
	pdf  []byte
	err  error
}

// formBindings holds form values on the heap so huh's Value() pointers
// survive Bubble Tea model copies.
type formBindings struct {
	kind   string
	inicio string
	fim    string
}

// Model is the reports page component.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	svc       *api.ReportsService
	styles    *theme.Styles
	toasts    *toast.Notifier
	exporting bool
	width     int
	height    int
}

// New creates the reports page model.
func New(svc *api.ReportsService, st *theme.Styles, toasts *toast.Notifier, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		svc:    svc,
		styles: st,
		toasts: toasts,
		width:  width,
		height: height,
	}
}

// Init builds the export form with the current month preselected.
func (m *Model) Init() tea.Cmd {
	now := time.Now()
	*m.fb = formBindings{
		kind:   "geral",
		inicio: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"),
		fim:    now.Format("2006-01-02"),
	}
	m.exporting = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the reports page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if done, ok := msg.(exportDoneMsg); ok {
		m.exporting = false
		if done.err != nil {
			m.toasts.Error("Não foi possível gerar o relatório.")
		} else if path, err := savePDF(done.kind, done.pdf); err != nil {
			m.toasts.Error("Falha ao salvar o relatório em disco.")
		} else {
			m.toasts.Success("Relatório salvo em " + path)
		}
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	if m.form == nil || m.exporting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.exporting = true
		return m, m.export()
	}

	return m, cmd
}

// View renders the reports page.
func (m Model) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.styles.Palette.Primary).
		MarginBottom(1).
		Render("Relatórios")

	body := ""
	switch {
	case m.exporting:
		body = m.styles.Help.Render("Gerando relatório...")
	case m.form != nil:
		body = m.form.View()
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n" + body)
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Relatório").
				Options(
					huh.NewOption("Geral", "geral"),
					huh.NewOption("Financeiro", "financeiro"),
					huh.NewOption("Hospedagens", "hospedagens"),
					huh.NewOption("Quartos", "quartos"),
					huh.NewOption("Reservas", "reservas"),
				).
				Value(&m.fb.kind),
			huh.NewInput().
				Title("Início").
				Placeholder("AAAA-MM-DD").
				Value(&m.fb.inicio).
				Validate(validateDate),
			huh.NewInput().
				Title("Fim").
				Placeholder("AAAA-MM-DD").
				Value(&m.fb.fim).
				Validate(validateDate),
		),
	).WithWidth(m.formWidth())
}

func (m Model) export() tea.Cmd {
	svc := m.svc
	kind := m.fb.kind
	filtro := model.PeriodoFilter{Inicio: m.fb.inicio, Fim: m.fb.fim}
	return func() tea.Msg {
		ctx := context.Background()
		var (
			pdf []byte
			err error
		)
		switch kind {
		case "financeiro":
			pdf, err = svc.ExportFinanceiro(ctx, filtro)
		case "hospedagens":
			pdf, err = svc.ExportHospedagens(ctx, filtro)
		case "quartos":
			pdf, err = svc.ExportQuartos(ctx, filtro)
		case "reservas":
			pdf, err = svc.ExportReservas(ctx, filtro)
		default:
			pdf, err = svc.ExportGeral(ctx, filtro)
		}
		return exportDoneMsg{kind: kind, pdf: pdf, err: err}
	}
}

// savePDF writes the report under the user's home directory.
func savePDF(kind string, pdf []byte) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, "pousada-relatorios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", kind, time.Now().Format("20060102-150405")))
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
	if w > 70 {
		w = 70
	}
	return w
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use o formato AAAA-MM-DD")
	}
	return nil
}
