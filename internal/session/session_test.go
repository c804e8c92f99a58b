package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/credential"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/store"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
	"github.com/pousadadobrejo/pousada-console/tests/testutil"
)

// memCreds backs Credentials with an in-process map so tests run
// without an OS keyring.
type memCreds struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCreds() *memCreds {
	return &memCreds{values: map[string]string{}}
}

func (c *memCreds) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (c *memCreds) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCreds) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

type sessionFixture struct {
	store  *Store
	creds  *memCreds
	state  *store.StateStore
	toasts *toast.Notifier
	routes *router.Router
}

func newSessionFixture(t *testing.T, handler http.Handler) *sessionFixture {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := &sessionFixture{
		creds:  newMemCreds(),
		state:  testutil.NewTestStore(t),
		toasts: toast.New(),
		routes: router.New(),
	}
	client := api.NewClient(srv.URL, nil, 5*time.Second)
	f.store = New(client, f.creds, f.state, f.toasts, f.routes)
	return f
}

func loginHandler(t *testing.T, res map[string]interface{}) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "maria", body["login"])

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(res))
	})
}

func TestLoginPersistsSession(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	f := newSessionFixture(t, loginHandler(t, map[string]interface{}{
		"token": token,
		"role":  "gerente",
		"nome":  "Maria Silva",
		"email": "maria@pousada.com",
	}))

	user, err := f.store.Login(context.Background(), "maria", "s3nha")
	require.NoError(t, err)

	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Maria Silva", user.Nome)
	assert.Equal(t, []model.Role{model.RoleGerente}, user.Roles)
	assert.Equal(t, token, f.store.Token())

	// Token lands in the credential store, profile in the state store.
	raw, err := f.creds.Get(credential.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, token, raw)

	saved, err := f.state.LoadCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", saved.Nome)

	assert.False(t, f.store.ShouldPromptPasswordChange())
	assert.Empty(t, f.toasts.Visible())
}

func TestLoginMustChangePassword(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "7"})
	f := newSessionFixture(t, loginHandler(t, map[string]interface{}{
		"token":              token,
		"role":               "admin",
		"nome":               "Ana",
		"mustChangePassword": true,
		"pwdChangeReason":    "RESET_BY_ADMIN",
	}))

	_, err := f.store.Login(context.Background(), "maria", "tempor4ria")
	require.NoError(t, err)

	require.True(t, f.store.ShouldPromptPasswordChange())
	assert.Equal(t, model.PwdReasonResetByAdmin, f.store.PwdChangeReason())

	visible := f.toasts.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, model.ToastWarning, visible[0].Type)

	f.store.ClearPasswordChangeFlag()
	assert.False(t, f.store.ShouldPromptPasswordChange())
}

func TestLoginRejected(t *testing.T) {
	f := newSessionFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Usuário ou senha incorretos"}`))
	}))

	_, err := f.store.Login(context.Background(), "maria", "errada")
	require.ErrorIs(t, err, ErrBadCredentials)

	assert.Empty(t, f.store.Token())
	_, err = f.creds.Get(credential.TokenKey)
	assert.Error(t, err)
}

func TestLogoutIsIdempotent(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "9"})
	f := newSessionFixture(t, loginHandler(t, map[string]interface{}{
		"token": token,
		"role":  "gerente",
		"nome":  "Maria",
	}))

	_, err := f.store.Login(context.Background(), "maria", "s3nha")
	require.NoError(t, err)

	f.store.Logout()
	f.store.Logout()

	assert.Empty(t, f.store.Token())
	_, ok := f.store.CurrentUser()
	assert.False(t, ok)

	_, err = f.creds.Get(credential.TokenKey)
	assert.Error(t, err)
	_, err = f.state.LoadCurrentUser(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)

	route, _ := f.routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)
}

func TestIsValid(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{
			name:  "no token",
			token: func(t *testing.T) string { return "" },
			want:  false,
		},
		{
			name:  "garbage token",
			token: func(t *testing.T) string { return "não-é-jwt" },
			want:  false,
		},
		{
			name: "no expiry claim",
			token: func(t *testing.T) string {
				return signToken(t, jwt.MapClaims{"sub": "1"})
			},
			want: true,
		},
		{
			name: "future expiry",
			token: func(t *testing.T) string {
				return signToken(t, jwt.MapClaims{"sub": "1", "exp": base.Add(time.Minute).Unix()})
			},
			want: true,
		},
		{
			name: "past expiry",
			token: func(t *testing.T) string {
				return signToken(t, jwt.MapClaims{"sub": "1", "exp": base.Add(-time.Minute).Unix()})
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{token: tt.token(t), now: func() time.Time { return base }}
			assert.Equal(t, tt.want, s.IsValid())
		})
	}
}

func TestRolesPrefersCachedProfile(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "1", "roles": []string{"ADMIN"}})

	s := &Store{
		token: token,
		user:  &model.CurrentUser{ID: 1, Roles: []model.Role{model.RoleGerente}},
		now:   time.Now,
	}
	assert.Equal(t, []model.Role{model.RoleGerente}, s.Roles())
	assert.True(t, s.HasRole(model.RoleGerente))
	assert.False(t, s.IsAdmin())

	// Without a cached profile the token's claims decide.
	s.user = nil
	assert.Equal(t, []model.Role{model.RoleAdmin}, s.Roles())
	assert.True(t, s.IsAdmin())

	// Without a token there are no roles, cached or not.
	s.user = &model.CurrentUser{Roles: []model.Role{model.RoleAdmin}}
	s.token = ""
	assert.Nil(t, s.Roles())
}

func TestLoadFromBackendDeactivatedAccount(t *testing.T) {
	f := newSessionFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usuarios/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 5,
			"nome": "Ana",
			"mustChangePassword": true,
			"pwdChangeReason": "ACCOUNT_INACTIVATED"
		}`))
	}))
	require.NoError(t, f.creds.Set(credential.TokenKey, "tok"))
	f.store.token = "tok"

	_, err := f.store.LoadFromBackend(context.Background())
	require.NoError(t, err)

	// The session ends on the spot and the user is told why.
	assert.Empty(t, f.store.Token())
	route, _ := f.routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)

	visible := f.toasts.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, model.ToastError, visible[0].Type)
}

func TestNewRestoresPersistedSession(t *testing.T) {
	state := testutil.NewTestStore(t)
	creds := newMemCreds()

	token := signToken(t, jwt.MapClaims{"sub": "33"})
	require.NoError(t, creds.Set(credential.TokenKey, "Bearer "+token))
	require.NoError(t, state.SaveCurrentUser(context.Background(), model.CurrentUser{
		Nome:  "Maria",
		Roles: []model.Role{model.RoleGerente},
	}))

	client := api.NewClient("http://localhost:0", nil, time.Second)
	s := New(client, creds, state, toast.New(), router.New())

	assert.Equal(t, token, s.Token())
	user, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Maria", user.Nome)
	// The id missing from the old snapshot is backfilled from the token.
	assert.Equal(t, int64(33), user.ID)
}
