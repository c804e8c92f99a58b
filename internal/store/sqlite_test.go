package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

func newStore(t *testing.T) *StateStore {
	t.Helper()

	s, err := NewStateStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStateRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.GetState(ctx, StateTheme)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetState(ctx, StateTheme, "escuro"))
	got, err := s.GetState(ctx, StateTheme)
	require.NoError(t, err)
	assert.Equal(t, "escuro", got)

	// Upsert replaces the value in place.
	require.NoError(t, s.SetState(ctx, StateTheme, "claro"))
	got, err = s.GetState(ctx, StateTheme)
	require.NoError(t, err)
	assert.Equal(t, "claro", got)

	require.NoError(t, s.DeleteState(ctx, StateTheme))
	_, err = s.GetState(ctx, StateTheme)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, s.DeleteState(ctx, StateTheme))
}

func TestCurrentUserRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	user := model.CurrentUser{
		ID:    7,
		Nome:  "Maria Silva",
		Email: "maria@pousada.com",
		Roles: []model.Role{model.RoleAdmin},
	}
	require.NoError(t, s.SaveCurrentUser(ctx, user))

	got, err := s.LoadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestCorruptUserSnapshotReadsAsAbsent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetState(ctx, StateCurrentUser, "{corrompido"))

	_, err := s.LoadCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMustChangeFlagRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	flag := model.MustChangeFlag{Reason: model.PwdReasonFirstLogin, TS: 1746090000000}
	require.NoError(t, s.SaveMustChangeFlag(ctx, flag))

	got, err := s.LoadMustChangeFlag(ctx)
	require.NoError(t, err)
	assert.Equal(t, flag, got)
}

func TestClearSessionKeepsTheme(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetState(ctx, StateTheme, "escuro"))
	require.NoError(t, s.SaveCurrentUser(ctx, model.CurrentUser{ID: 1, Nome: "Maria"}))
	require.NoError(t, s.SaveMustChangeFlag(ctx, model.MustChangeFlag{Reason: model.PwdReasonFirstLogin}))
	require.NoError(t, s.CacheNotifications(ctx, []model.NotificationItem{
		{ID: 1, Title: "Reserva", CreatedAt: time.Now()},
	}))

	require.NoError(t, s.ClearSession(ctx))

	_, err := s.LoadCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadMustChangeFlag(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	cached, err := s.CachedNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, cached)

	theme, err := s.GetState(ctx, StateTheme)
	require.NoError(t, err)
	assert.Equal(t, "escuro", theme)
}

func TestCacheNotificationsReadIsMonotonic(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.CacheNotifications(ctx, []model.NotificationItem{
		{ID: 1, Title: "Nova reserva", Read: false, CreatedAt: created},
	}))
	require.NoError(t, s.MarkCachedRead(ctx, 1))

	// A later fetch still carrying read=false must not flip it back.
	require.NoError(t, s.CacheNotifications(ctx, []model.NotificationItem{
		{ID: 1, Title: "Nova reserva (editada)", Read: false, CreatedAt: created},
	}))

	cached, err := s.CachedNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.True(t, cached[0].Read, "read flag survives the re-fetch")
	assert.Equal(t, "Nova reserva (editada)", cached[0].Title, "other fields do update")
}

func TestCachedNotificationsOrderAndLimit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	var items []model.NotificationItem
	for i := int64(1); i <= 5; i++ {
		items = append(items, model.NotificationItem{
			ID:        i,
			Title:     "n",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, s.CacheNotifications(ctx, items))

	cached, err := s.CachedNotifications(ctx, 3)
	require.NoError(t, err)
	require.Len(t, cached, 3)
	assert.Equal(t, int64(5), cached[0].ID, "newest first")
	assert.Equal(t, int64(3), cached[2].ID)
}

func TestMarkAllCachedRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.CacheNotifications(ctx, []model.NotificationItem{
		{ID: 1, CreatedAt: now},
		{ID: 2, CreatedAt: now},
	}))

	require.NoError(t, s.MarkAllCachedRead(ctx))

	cached, err := s.CachedNotifications(ctx, 10)
	require.NoError(t, err)
	for _, n := range cached {
		assert.True(t, n.Read)
	}
}
