package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the console.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Pagination
	NextPage key.Binding
	PrevPage key.Binding

	// Notifications
	Notifications key.Binding
	MarkRead      key.Binding
	MarkAllRead   key.Binding
	FilterStatus  key.Binding

	// Pages
	Dashboard   key.Binding
	Hospedagens key.Binding
	Quartos     key.Binding
	Reservas    key.Binding
	Financeiro  key.Binding
	Usuarios    key.Binding
	Relatorios  key.Binding

	// Theme
	ToggleTheme key.Binding

	// Session
	Logout key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev page"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notifications"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter unread"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Hospedagens: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "hospedagens"),
		),
		Quartos: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "quartos"),
		),
		Reservas: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "reservas"),
		),
		Financeiro: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "financeiro"),
		),
		Usuarios: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "usuários"),
		),
		Relatorios: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "relatórios"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "toggle theme"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Notifications,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Help, k.Refresh, k.NextPage, k.PrevPage},
		{k.Notifications, k.MarkRead, k.MarkAllRead, k.FilterStatus},
		{k.Dashboard, k.Hospedagens, k.Quartos, k.Reservas, k.Financeiro, k.Usuarios, k.Relatorios},
		{k.ToggleTheme, k.Logout},
	}
}
