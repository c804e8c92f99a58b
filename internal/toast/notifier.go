// Package toast implements the process-wide ephemeral message queue.
// Any component may push a toast; identical (type, message) pairs are
// suppressed within a rolling de-duplication window so bursts of
// failing requests do not flood the user.
package toast

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// DedupWindow is the span during which a repeated (type, message) pair
// is dropped instead of shown again.
const DedupWindow = 3000 * time.Millisecond

const (
	defaultDuration = 2500 * time.Millisecond
	errorDuration   = 4000 * time.Millisecond

	// recentLimit bounds the dedup bookkeeping map; entries older than
	// four windows are pruned once the limit is crossed.
	recentLimit = 200
)

// UpdatedMsg is a tea.Msg signalling that the visible toast set changed.
type UpdatedMsg struct{}

// Notifier is the toast queue. It is safe for concurrent use.
type Notifier struct {
	mu      sync.Mutex
	recent  map[string]time.Time
	visible []model.Toast
	updates chan struct{}

	// now is swappable so tests can step the dedup clock.
	now func() time.Time
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{
		recent:  make(map[string]time.Time),
		updates: make(chan struct{}, 16),
		now:     time.Now,
	}
}

// Success shows a success toast with the default duration.
func (n *Notifier) Success(message string) { n.push(model.ToastSuccess, message, defaultDuration) }

// Error shows an error toast. Errors linger longer than other kinds.
func (n *Notifier) Error(message string) { n.push(model.ToastError, message, errorDuration) }

// Warning shows a warning toast with the default duration.
func (n *Notifier) Warning(message string) { n.push(model.ToastWarning, message, defaultDuration) }

// Info shows an info toast with the default duration.
func (n *Notifier) Info(message string) { n.push(model.ToastInfo, message, defaultDuration) }

// Show pushes a toast of the given type with an explicit duration.
// A non-positive duration keeps the toast until dismissed.
func (n *Notifier) Show(kind model.ToastType, message string, duration time.Duration) {
	n.push(kind, message, duration)
}

func (n *Notifier) push(kind model.ToastType, message string, duration time.Duration) {
	n.mu.Lock()

	key := string(kind) + "|" + message
	now := n.now()
	if last, ok := n.recent[key]; ok && now.Sub(last) < DedupWindow {
		n.mu.Unlock()
		return
	}
	n.recent[key] = now
	n.pruneLocked(now)

	t := model.Toast{
		ID:        uuid.New().String(),
		Type:      kind,
		Message:   message,
		Duration:  duration,
		CreatedAt: now,
	}
	n.visible = append(n.visible, t)
	n.mu.Unlock()

	if duration > 0 {
		time.AfterFunc(duration, func() { n.Remove(t.ID) })
	}

	n.signal()
}

// pruneLocked drops stale dedup entries once the map grows past the
// bookkeeping limit. Caller holds the mutex.
func (n *Notifier) pruneLocked(now time.Time) {
	if len(n.recent) <= recentLimit {
		return
	}
	cutoff := now.Add(-4 * DedupWindow)
	for k, ts := range n.recent {
		if ts.Before(cutoff) {
			delete(n.recent, k)
		}
	}
}

// Remove dismisses a toast by id. Removing an unknown id is a no-op.
func (n *Notifier) Remove(id string) {
	n.mu.Lock()
	kept := n.visible[:0]
	removed := false
	for _, t := range n.visible {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	n.visible = kept
	n.mu.Unlock()

	if removed {
		n.signal()
	}
}

// Visible returns a snapshot of the currently visible toasts.
func (n *Notifier) Visible() []model.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]model.Toast, len(n.visible))
	copy(out, n.visible)
	return out
}

// signal notifies subscribers without blocking.
func (n *Notifier) signal() {
	select {
	case n.updates <- struct{}{}:
	default:
	}
}

// WaitForUpdate returns a tea.Cmd that blocks until the visible set
// changes. After handling the message, call it again to keep listening.
func (n *Notifier) WaitForUpdate() tea.Cmd {
	return func() tea.Msg {
		_, ok := <-n.updates
		if !ok {
			return nil
		}
		return UpdatedMsg{}
	}
}
