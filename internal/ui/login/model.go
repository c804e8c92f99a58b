// Package login renders the credential form shown on the public
// /login route.
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/session"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
)

// LoggedInMsg is dispatched after a successful login.
type LoggedInMsg struct {
	ReturnURL string
}

// loginResultMsg carries the outcome of the login request.
type loginResultMsg struct {
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	login    string
	password string
}

// Model is the Bubble Tea model for the login screen.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	session    *session.Store
	styles     theme.Styles
	returnURL  string
	submitting bool
	errMsg     string
	width      int
	height     int
}

// New creates a login model.
func New(sess *session.Store, st theme.Styles, width, height int) Model {
	return Model{
		fb:      &formBindings{},
		session: sess,
		styles:  st,
		width:   width,
		height:  height,
	}
}

// Start resets the form. returnURL is where a successful login lands;
// empty means the dashboard.
func (m *Model) Start(returnURL string) tea.Cmd {
	m.returnURL = returnURL
	m.submitting = false
	m.errMsg = ""
	m.fb.login = ""
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.submitting = false
		if res.err != nil {
			if errors.Is(res.err, session.ErrBadCredentials) {
				m.errMsg = "Usuário ou senha inválidos."
			} else {
				m.errMsg = "Não foi possível entrar. Verifique sua conexão."
			}
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		returnURL := m.returnURL
		return m, func() tea.Msg { return LoggedInMsg{ReturnURL: returnURL} }
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

// View renders the login screen.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.styles.Palette.Primary).
		MarginBottom(1).
		Render("Pousada do Brejo")

	var body string
	switch {
	case m.submitting:
		body = m.styles.Help.Render("Entrando...")
	case m.form != nil:
		body = m.form.View()
	}

	content := title + "\n" + body
	if m.errMsg != "" {
		errLine := lipgloss.NewStyle().
			Foreground(m.styles.Palette.Danger).
			MarginTop(1).
			Render(m.errMsg)
		content += "\n" + errLine
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		m.styles.Panel.Render(content),
	)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Usuário").
				Placeholder("login ou e-mail").
				Value(&m.fb.login).
				Validate(validateRequired("Usuário")),
			huh.NewInput().
				Title("Senha").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Senha")),
		),
	).WithWidth(m.formWidth())
}

// submit runs the login request off the UI goroutine.
func (m Model) submit() tea.Cmd {
	sess := m.session
	login := m.fb.login
	password := m.fb.password
	return func() tea.Msg {
		_, err := sess.Login(context.Background(), login, password)
		return loginResultMsg{err: err}
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s é obrigatório", fieldName)
		}
		return nil
	}
}
