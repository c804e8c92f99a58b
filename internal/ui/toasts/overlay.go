// Package toasts renders the transient toast stack in the top-right
// corner of the content area.
package toasts

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/theme"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// Overlay renders whatever is currently visible in the notifier.
type Overlay struct {
	notifier *toast.Notifier
	styles   *theme.Styles
	width    int
}

// New creates an overlay bound to the notifier.
func New(n *toast.Notifier, st *theme.Styles, width int) Overlay {
	return Overlay{notifier: n, styles: st, width: width}
}

// SetWidth updates the available width.
func (o *Overlay) SetWidth(width int) {
	o.width = width
}

// View renders the visible toasts, newest last. Returns the empty
// string when nothing is showing.
func (o Overlay) View() string {
	visible := o.notifier.Visible()
	if len(visible) == 0 {
		return ""
	}

	rows := make([]string, 0, len(visible))
	for _, t := range visible {
		rows = append(rows, o.render(t))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.NewStyle().
		Width(o.width).
		Align(lipgloss.Right).
		Render(stack)
}

func (o Overlay) render(t model.Toast) string {
	style := o.styles.ToastInfo
	switch t.Type {
	case model.ToastSuccess:
		style = o.styles.ToastSuccess
	case model.ToastError:
		style = o.styles.ToastError
	case model.ToastWarning:
		style = o.styles.ToastWarning
	}

	msg := t.Message
	if max := o.width - 6; max > 10 && len(msg) > max {
		msg = msg[:max-1] + "…"
	}
	return style.Render(msg)
}
