package toast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// newTestNotifier returns a Notifier with a manually stepped clock.
func newTestNotifier(start time.Time) (*Notifier, *time.Time) {
	n := New()
	clock := start
	n.now = func() time.Time { return clock }
	return n, &clock
}

func TestPushDedupWindow(t *testing.T) {
	n, clock := newTestNotifier(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	n.Show(model.ToastError, "Sem conexão", 0)
	n.Show(model.ToastError, "Sem conexão", 0)
	assert.Len(t, n.Visible(), 1, "repeat inside the window is dropped")

	// Same message, different type: not a duplicate.
	n.Show(model.ToastWarning, "Sem conexão", 0)
	assert.Len(t, n.Visible(), 2)

	// Past the window the same pair shows again.
	*clock = clock.Add(DedupWindow)
	n.Show(model.ToastError, "Sem conexão", 0)
	assert.Len(t, n.Visible(), 3)
}

func TestErrorLingersLonger(t *testing.T) {
	n := New()

	n.Error("falhou")
	n.Success("deu certo")

	visible := n.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, errorDuration, visible[0].Duration)
	assert.Equal(t, defaultDuration, visible[1].Duration)
	assert.Greater(t, visible[0].Duration, visible[1].Duration)
}

func TestRemove(t *testing.T) {
	n := New()

	n.Show(model.ToastInfo, "primeira", 0)
	n.Show(model.ToastInfo, "segunda", 0)
	visible := n.Visible()
	require.Len(t, visible, 2)

	n.Remove(visible[0].ID)
	remaining := n.Visible()
	require.Len(t, remaining, 1)
	assert.Equal(t, "segunda", remaining[0].Message)

	// Unknown id is a no-op.
	n.Remove("não-existe")
	assert.Len(t, n.Visible(), 1)
}

func TestDedupBookkeepingPrune(t *testing.T) {
	n, clock := newTestNotifier(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	for i := 0; i < recentLimit+1; i++ {
		n.Show(model.ToastInfo, fmt.Sprintf("mensagem %d", i), 0)
	}
	require.Greater(t, len(n.recent), recentLimit)

	// Entries older than four windows are dropped once the limit is
	// crossed again.
	*clock = clock.Add(5 * DedupWindow)
	n.Show(model.ToastInfo, "nova", 0)
	assert.LessOrEqual(t, len(n.recent), 2)
}

func TestWaitForUpdateSignals(t *testing.T) {
	n := New()

	n.Info("olá")

	msg := n.WaitForUpdate()()
	assert.Equal(t, UpdatedMsg{}, msg)
}

func TestAutoDismissal(t *testing.T) {
	n := New()

	n.Show(model.ToastSuccess, "rápida", 10*time.Millisecond)
	require.Len(t, n.Visible(), 1)

	assert.Eventually(t, func() bool {
		return len(n.Visible()) == 0
	}, time.Second, 5*time.Millisecond)
}
