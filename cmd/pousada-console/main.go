// Command pousada-console is the terminal admin console for the
// Pousada do Brejo backend.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/app"
	"github.com/pousadadobrejo/pousada-console/internal/guard"
	"github.com/pousadadobrejo/pousada-console/internal/keys"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/notify"
	"github.com/pousadadobrejo/pousada-console/internal/pwdprompt"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/session"
	"github.com/pousadadobrejo/pousada-console/internal/store"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pousada-console: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	state, err := store.NewStateStore(filepath.Join(filepath.Dir(cfgPath), "state.db"))
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer state.Close()

	routes := router.New()
	toasts := toast.New()

	gk := api.NewGatekeeper(nil, routes, toasts)
	client := api.NewClient(
		cfg.API.BaseURL,
		gk,
		time.Duration(cfg.API.TimeoutSec)*time.Second,
	)

	sess := session.New(client, session.KeyringCredentials(), state, toasts, routes)
	gk.Bind(sess)

	notifier := notify.New(
		api.NewNotificacoesService(client),
		routes,
		sess,
		state,
		time.Duration(cfg.Notifications.PollIntervalSec)*time.Second,
		cfg.Notifications.Realtime,
	)

	svcs := app.Services{
		Dashboard:   api.NewDashboardService(client),
		Hospedagens: api.NewHospedagensService(client),
		Quartos:     api.NewQuartosService(client),
		Reservas:    api.NewReservasService(client),
		Financeiro:  api.NewFinanceiroService(client),
		Usuarios:    api.NewUsuariosService(client),
		Reports:     api.NewReportsService(client),
	}

	root := app.New(
		sess,
		routes,
		guard.New(sess, routes, toasts),
		notifier,
		toasts,
		pwdprompt.New(),
		theme.NewManager(state, cfg.Display.Theme),
		svcs,
		keys.DefaultKeyMap(),
		time.Duration(cfg.Notifications.SearchDebounceMs)*time.Millisecond,
	)

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
