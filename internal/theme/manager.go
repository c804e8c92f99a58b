package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/pousadadobrejo/pousada-console/internal/store"
)

// Persister saves a user's theme preference on the backend.
type Persister interface {
	AtualizarTema(ctx context.Context, id int64, tema string) error
}

// ChangedMsg is delivered when the active theme changes.
type ChangedMsg struct {
	Name   Name
	Styles Styles
}

// Manager tracks the active theme and keeps the local store and the
// backend preference in sync.
type Manager struct {
	state *store.StateStore

	mu     sync.Mutex
	name   Name
	styles Styles
}

// NewManager restores the persisted theme, falling back to the given
// default when none is stored.
func NewManager(state *store.StateStore, fallback string) *Manager {
	name := Normalize(fallback)
	if state != nil {
		if raw, err := state.GetState(context.Background(), store.StateTheme); err == nil {
			name = Normalize(raw)
		}
	}
	return &Manager{
		state:  state,
		name:   name,
		styles: StylesFor(name),
	}
}

// Current returns the active theme name.
func (m *Manager) Current() Name {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Styles returns the style set for the active theme.
func (m *Manager) Styles() Styles {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.styles
}

// Set activates a theme and persists it locally. The backend
// preference is updated only when a persister and user id are given;
// a backend failure does not undo the local change.
func (m *Manager) Set(name Name, p Persister, userID int64) (ChangedMsg, error) {
	name = Normalize(string(name))

	m.mu.Lock()
	m.name = name
	m.styles = StylesFor(name)
	msg := ChangedMsg{Name: m.name, Styles: m.styles}
	m.mu.Unlock()

	if m.state != nil {
		if err := m.state.SetState(context.Background(), store.StateTheme, string(name)); err != nil {
			return msg, fmt.Errorf("persist theme: %w", err)
		}
	}
	if p != nil && userID != 0 {
		if err := p.AtualizarTema(context.Background(), userID, string(name)); err != nil {
			return msg, fmt.Errorf("save theme preference: %w", err)
		}
	}
	return msg, nil
}

// Toggle flips between claro and escuro.
func (m *Manager) Toggle(p Persister, userID int64) (ChangedMsg, error) {
	next := Claro
	if m.Current() == Claro {
		next = Escuro
	}
	return m.Set(next, p, userID)
}

// ForceClaro resets to the light theme without touching the backend.
// The login screen always renders claro.
func (m *Manager) ForceClaro() ChangedMsg {
	m.mu.Lock()
	m.name = Claro
	m.styles = StylesFor(Claro)
	msg := ChangedMsg{Name: m.name, Styles: m.styles}
	m.mu.Unlock()
	return msg
}
