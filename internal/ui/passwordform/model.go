// Package passwordform renders the mandatory password-change modal.
// The step run is owned by the pwdprompt sequencer; this model renders
// whichever step is current and submits the final one.
package passwordform

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/pwdprompt"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
)

// redirectDelay is how long the success screen lingers before the
// dashboard redirect.
const redirectDelay = 3 * time.Second

// RedirectMsg asks the root model to navigate to the dashboard after
// a successful change.
type RedirectMsg struct{}

// changeResultMsg carries the outcome of the change-password request.
type changeResultMsg struct{ err error }

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	current string
	next    string
	confirm string
}

// Model is the Bubble Tea model for the password-change modal.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	seq        *pwdprompt.Sequencer
	usuarios   *api.UsuariosService
	styles     *theme.Styles
	state      pwdprompt.StateMsg
	submitting bool
	errMsg     string
	width      int
	height     int
}

// New creates the modal model.
func New(seq *pwdprompt.Sequencer, usuarios *api.UsuariosService, st *theme.Styles, width, height int) Model {
	return Model{
		fb:       &formBindings{},
		seq:      seq,
		usuarios: usuarios,
		styles:   st,
		width:    width,
		height:   height,
	}
}

// Apply reacts to a sequencer transition: rebuilding the form when the
// terminal step comes up, and scheduling the redirect on success.
func (m *Model) Apply(state pwdprompt.StateMsg) tea.Cmd {
	m.state = state
	m.errMsg = ""

	if state.Completed {
		m.form = nil
		return tea.Tick(redirectDelay, func(time.Time) tea.Msg {
			return RedirectMsg{}
		})
	}

	if state.Open && state.Step == state.StepMax {
		m.fb.current = ""
		m.fb.next = ""
		m.fb.confirm = ""
		m.form = m.buildForm()
		return m.form.Init()
	}

	m.form = nil
	return nil
}

// Update handles messages for the modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changeResultMsg:
		m.submitting = false
		if msg.err != nil {
			if api.StatusOf(msg.err) == 400 || api.StatusOf(msg.err) == 422 {
				m.errMsg = "Senha atual incorreta ou nova senha inválida."
			} else {
				m.errMsg = "Não foi possível alterar a senha. Tente novamente."
			}
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.seq.CompleteSuccess()
		return m, nil

	case tea.KeyMsg:
		// Step navigation on the informational steps.
		if m.state.Step < m.state.StepMax {
			switch msg.String() {
			case "enter", "right", "l":
				m.seq.Next()
				return m, nil
			case "left", "h":
				m.seq.Prev()
				return m, nil
			}
			return m, nil
		}
		if msg.String() == "left" && !m.submitting {
			m.seq.Prev()
			return m, nil
		}
	}

	if m.form == nil || m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.submit()
	}

	return m, cmd
}

// View renders the current step.
func (m Model) View() string {
	if !m.state.Open && !m.state.Completed {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.styles.Palette.Primary).
		MarginBottom(1).
		Render("Alteração de senha obrigatória")

	var body string
	switch {
	case m.state.Completed:
		body = m.styles.Help.Render("Senha alterada com sucesso. Redirecionando...")
	case m.submitting:
		body = m.styles.Help.Render("Enviando...")
	case m.state.Step < m.state.StepMax:
		body = m.stepText()
	case m.form != nil:
		body = m.form.View()
	}

	content := title + "\n" +
		m.styles.Help.Render(fmt.Sprintf("passo %d de %d", m.state.Step, m.state.StepMax)) +
		"\n\n" + body
	if m.errMsg != "" {
		content += "\n" + lipgloss.NewStyle().
			Foreground(m.styles.Palette.Danger).
			Render(m.errMsg)
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		m.styles.Panel.Render(content),
	)
}

// stepText returns the informational copy for the non-terminal steps.
func (m Model) stepText() string {
	switch {
	case m.state.Reason == model.PwdReasonResetByAdmin:
		return "Sua senha foi redefinida por um administrador.\n" +
			"Defina agora uma nova senha pessoal.\n\n" +
			"enter continuar"
	case m.state.Step == 1:
		return "Sua senha atual é temporária e precisa ser trocada\n" +
			"antes de continuar usando o sistema.\n\n" +
			"enter continuar"
	default:
		return "Escolha uma senha com ao menos 8 caracteres,\n" +
			"misturando letras e números.\n\n" +
			"enter continuar · ← voltar"
	}
}

// SetSize updates the modal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Senha atual").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.current).
				Validate(validateRequired("Senha atual")),
			huh.NewInput().
				Title("Nova senha").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.next).
				Validate(validateNewPassword),
			huh.NewInput().
				Title("Confirmar nova senha").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm).
				Validate(m.validateConfirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	svc := m.usuarios
	current, next := m.fb.current, m.fb.next
	return func() tea.Msg {
		return changeResultMsg{err: svc.AlterarSenha(context.Background(), current, next)}
	}
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 36 {
		w = 36
	}
	if w > 60 {
		w = 60
	}
	return w
}

func (m *Model) validateConfirm(s string) error {
	if s != m.fb.next {
		return fmt.Errorf("as senhas não conferem")
	}
	return nil
}

func validateNewPassword(s string) error {
	if len(strings.TrimSpace(s)) < 8 {
		return fmt.Errorf("a nova senha deve ter ao menos 8 caracteres")
	}
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s é obrigatório", fieldName)
		}
		return nil
	}
}
