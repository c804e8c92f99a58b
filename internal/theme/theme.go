// Package theme holds the claro/escuro palettes and the shared
// lipgloss styles built from the active palette.
package theme

import "github.com/charmbracelet/lipgloss"

// Name identifies a palette.
type Name string

const (
	Claro  Name = "claro"
	Escuro Name = "escuro"
)

// Normalize maps arbitrary persisted values onto a known palette,
// defaulting to claro.
func Normalize(raw string) Name {
	if Name(raw) == Escuro {
		return Escuro
	}
	return Claro
}

// Palette is the color set a theme provides.
type Palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Info    lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Subtle  lipgloss.Color
	Border  lipgloss.Color
	Surface lipgloss.Color
}

var claroPalette = Palette{
	Primary: lipgloss.Color("#2B6CB0"),
	Accent:  lipgloss.Color("#805AD5"),
	Success: lipgloss.Color("#2F855A"),
	Warning: lipgloss.Color("#B7791F"),
	Danger:  lipgloss.Color("#C53030"),
	Info:    lipgloss.Color("#2B6CB0"),
	Text:    lipgloss.Color("#1A202C"),
	Muted:   lipgloss.Color("#718096"),
	Subtle:  lipgloss.Color("#CBD5E0"),
	Border:  lipgloss.Color("#E2E8F0"),
	Surface: lipgloss.Color("#F8F9FA"),
}

var escuroPalette = Palette{
	Primary: lipgloss.Color("#5B9BD5"),
	Accent:  lipgloss.Color("#CC5DE8"),
	Success: lipgloss.Color("#6BCB77"),
	Warning: lipgloss.Color("#FFD93D"),
	Danger:  lipgloss.Color("#FF6B6B"),
	Info:    lipgloss.Color("#5B9BD5"),
	Text:    lipgloss.Color("#F8F9FA"),
	Muted:   lipgloss.Color("#868E96"),
	Subtle:  lipgloss.Color("#495057"),
	Border:  lipgloss.Color("#495057"),
	Surface: lipgloss.Color("#1A202C"),
}

// PaletteFor returns the palette for a theme name.
func PaletteFor(name Name) Palette {
	if name == Escuro {
		return escuroPalette
	}
	return claroPalette
}

// Styles are the shared rendering styles, derived from one palette.
type Styles struct {
	Palette Palette

	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Panel     lipgloss.Style
	Help      lipgloss.Style

	ListItem     lipgloss.Style
	SelectedItem lipgloss.Style
	UnreadItem   lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style

	Badge lipgloss.Style
}

// StylesFor builds the style set for a theme name.
func StylesFor(name Name) Styles {
	p := PaletteFor(name)

	toastBase := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	return Styles{
		Palette: p,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Surface).
			Background(p.Primary).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Subtle).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),

		Help: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		ListItem: lipgloss.NewStyle().
			PaddingLeft(2),

		SelectedItem: lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Foreground(p.Primary).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Primary),

		UnreadItem: lipgloss.NewStyle().
			PaddingLeft(2).
			Bold(true).
			Foreground(p.Text),

		ToastSuccess: toastBase.BorderForeground(p.Success).Foreground(p.Success),
		ToastError:   toastBase.BorderForeground(p.Danger).Foreground(p.Danger),
		ToastWarning: toastBase.BorderForeground(p.Warning).Foreground(p.Warning),
		ToastInfo:    toastBase.BorderForeground(p.Info).Foreground(p.Info),

		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Surface).
			Background(p.Danger).
			Padding(0, 1),
	}
}

// StatusStyle returns a color-coded style for a reservation or
// notification status label.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "PENDENTE":
		return base.Foreground(s.Palette.Warning)
	case "CONFIRMADA", "LIDA":
		return base.Foreground(s.Palette.Success)
	case "CANCELADA":
		return base.Foreground(s.Palette.Danger)
	case "FINALIZADA":
		return base.Foreground(s.Palette.Primary)
	case "NAO_LIDA":
		return base.Foreground(s.Palette.Accent)
	default:
		return base.Foreground(s.Palette.Muted)
	}
}
