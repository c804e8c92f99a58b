package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// fakeSession satisfies the Session interface with canned values and
// counts Logout calls.
type fakeSession struct {
	token   string
	userID  int64
	idKnown bool

	mu      sync.Mutex
	logouts int
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) CurrentUserID() (int64, bool) { return f.userID, f.idKnown }

func (f *fakeSession) Logout() {
	f.mu.Lock()
	f.logouts++
	f.token = ""
	f.mu.Unlock()
}

func (f *fakeSession) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

type gatekeeperFixture struct {
	gk     *Gatekeeper
	sess   *fakeSession
	routes *router.Router
	toasts *toast.Notifier
	client *http.Client
}

func newGatekeeperFixture(t *testing.T, sess *fakeSession) *gatekeeperFixture {
	t.Helper()

	routes := router.New()
	toasts := toast.New()
	gk := NewGatekeeper(nil, routes, toasts)
	gk.Bind(sess)

	return &gatekeeperFixture{
		gk:     gk,
		sess:   sess,
		routes: routes,
		toasts: toasts,
		client: &http.Client{Transport: gk, Timeout: 5 * time.Second},
	}
}

func (f *gatekeeperFixture) get(t *testing.T, rawURL string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestGatekeeperAttachesBearerToken(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := newGatekeeperFixture(t, &fakeSession{token: "tok123", userID: 1, idKnown: true})

	f.get(t, srv.URL+"/api/quartos")
	assert.Equal(t, "Bearer tok123", got.Load())

	// The login endpoint never carries a stale token.
	f.get(t, srv.URL+"/api/auth/login")
	assert.Equal(t, "", got.Load())
}

func TestGatekeeperConcurrent401SingleLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := &fakeSession{token: "expirado", userID: 1, idKnown: true}
	f := newGatekeeperFixture(t, sess)
	f.routes.Navigate(router.PathQuartos, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/quartos", nil)
			resp, err := f.client.Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sess.logoutCount())
	require.Len(t, f.toasts.Visible(), 1)
	assert.Equal(t, model.ToastError, f.toasts.Visible()[0].Type)

	route, query := f.routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)
	assert.Equal(t, router.PathQuartos, query.Get("returnUrl"))
}

func TestGatekeeperPublicRoute401DoesNotConsumeLatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := &fakeSession{token: "expirado", userID: 1, idKnown: true}
	f := newGatekeeperFixture(t, sess)

	// A stray 401 while sitting on the login route changes nothing.
	f.get(t, srv.URL+"/api/notificacoes/unread-count")
	assert.Zero(t, sess.logoutCount())
	assert.Empty(t, f.toasts.Visible())

	// A genuine expiry right after, on a protected route, is still
	// handled in full.
	sess.token = "expirado"
	f.routes.Navigate(router.PathQuartos, nil)
	f.get(t, srv.URL+"/api/quartos")

	assert.Equal(t, 1, sess.logoutCount())
	assert.Len(t, f.toasts.Visible(), 1)
	route, _ := f.routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)
}

func TestGatekeeper401WithoutTokenRedirectsSilently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := &fakeSession{token: ""}
	f := newGatekeeperFixture(t, sess)
	f.routes.Navigate(router.PathDashboard, nil)

	f.get(t, srv.URL+"/api/dashboard/resumo")

	assert.Zero(t, sess.logoutCount())
	assert.Empty(t, f.toasts.Visible())
	route, _ := f.routes.Current()
	assert.Equal(t, router.PathLogin, route.Path)
}

func TestGatekeeper403Classification(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantLogout bool
		wantRoute  string
	}{
		{
			name:       "blocked account",
			body:       `{"message":"Conta bloqueada pelo administrador"}`,
			wantLogout: true,
			wantRoute:  router.PathLogin,
		},
		{
			name:       "inactivated account",
			body:       `{"message":"Conta inativa"}`,
			wantLogout: true,
			wantRoute:  router.PathLogin,
		},
		{
			name:       "plain permission denial",
			body:       `{"message":"Sem permissão"}`,
			wantLogout: false,
			wantRoute:  router.PathAcessoNegado,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			sess := &fakeSession{token: "tok", userID: 1, idKnown: true}
			f := newGatekeeperFixture(t, sess)
			f.routes.Navigate(router.PathUsuarios, nil)

			f.get(t, srv.URL+"/api/usuarios")

			if tt.wantLogout {
				assert.Equal(t, 1, sess.logoutCount())
			} else {
				assert.Zero(t, sess.logoutCount())
			}
			route, _ := f.routes.Current()
			assert.Equal(t, tt.wantRoute, route.Path)
		})
	}
}

func TestGatekeeperForceLogoutTargeting(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     int64
		idKnown    bool
		wantLogout bool
	}{
		{
			name:       "targets this user",
			body:       `{"forceLogout":true,"alvoId":7,"itens":[]}`,
			userID:     7,
			idKnown:    true,
			wantLogout: true,
		},
		{
			name:       "targets someone else",
			body:       `{"forceLogout":true,"alvoId":99,"itens":[]}`,
			userID:     7,
			idKnown:    true,
			wantLogout: false,
		},
		{
			name:       "broadcast without target",
			body:       `{"forceLogout":true,"itens":[]}`,
			userID:     7,
			idKnown:    true,
			wantLogout: true,
		},
		{
			name: "local id unknown",
			// Cannot prove the signal targets someone else, so the
			// session ends conservatively.
			body:       `{"forceLogout":true,"alvoId":99,"itens":[]}`,
			idKnown:    false,
			wantLogout: true,
		},
		{
			name:       "no signal",
			body:       `{"itens":[]}`,
			userID:     7,
			idKnown:    true,
			wantLogout: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			sess := &fakeSession{token: "tok", userID: tt.userID, idKnown: tt.idKnown}
			f := newGatekeeperFixture(t, sess)
			f.routes.Navigate(router.PathDashboard, nil)

			resp := f.get(t, srv.URL+"/api/notificacoes")
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			if tt.wantLogout {
				assert.Equal(t, 1, sess.logoutCount())
			} else {
				assert.Zero(t, sess.logoutCount())
			}
		})
	}
}

func TestGatekeeperNetworkErrorToastOnlyOnProtectedRoutes(t *testing.T) {
	// A server that is immediately closed guarantees a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sess := &fakeSession{token: "tok", userID: 1, idKnown: true}
	f := newGatekeeperFixture(t, sess)

	// On the login route the failure stays silent.
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/dashboard/resumo", nil)
	_, err := f.client.Do(req)
	require.Error(t, err)
	assert.Empty(t, f.toasts.Visible())

	// On a protected route it surfaces exactly one toast, even for
	// repeated failures inside the cool-down window.
	f.routes.Navigate(router.PathDashboard, nil)
	for i := 0; i < 3; i++ {
		req, _ = http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/dashboard/resumo", nil)
		_, err = f.client.Do(req)
		require.Error(t, err)
	}
	assert.Len(t, f.toasts.Visible(), 1)
}

func TestGatekeeperIgnoresNonAPIRequests(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := &fakeSession{token: "tok", userID: 1, idKnown: true}
	f := newGatekeeperFixture(t, sess)
	f.routes.Navigate(router.PathDashboard, nil)

	f.get(t, srv.URL+"/healthz")

	assert.Equal(t, "", got.Load())
	assert.Zero(t, sess.logoutCount())
	route, _ := f.routes.Current()
	assert.Equal(t, router.PathDashboard, route.Path)
}
