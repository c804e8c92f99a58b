// Package session is the single source of truth for "who is logged in
// and with what token". The token lives in the OS keyring, the profile
// snapshot in the local state store, so a restart restores the session
// without a network round trip.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pousadadobrejo/pousada-console/internal/api"
	"github.com/pousadadobrejo/pousada-console/internal/credential"
	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/store"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// ErrBadCredentials means the backend rejected the login. The wrapped
// message is the backend's own, suitable for display.
var ErrBadCredentials = errors.New("credenciais inválidas")

// Credentials abstracts the keyring so tests can run without one.
type Credentials interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// keyringCredentials backs Credentials with the OS keyring.
type keyringCredentials struct{}

func (keyringCredentials) Get(key string) (string, error)  { return credential.Get(key) }
func (keyringCredentials) Set(key, value string) error     { return credential.Set(key, value) }
func (keyringCredentials) Delete(key string) error         { return credential.Delete(key) }

// KeyringCredentials returns the production Credentials implementation.
func KeyringCredentials() Credentials { return keyringCredentials{} }

// loginResponse is the wire shape of POST /auth/login.
type loginResponse struct {
	Token              string `json:"token"`
	Role               string `json:"role"`
	Nome               string `json:"nome"`
	Email              string `json:"email"`
	Numero             string `json:"numero"`
	Username           string `json:"username"`
	MustChangePassword bool   `json:"mustChangePassword"`
	PwdChangeReason    string `json:"pwdChangeReason"`
}

// Store holds the session state. All methods are safe for concurrent
// use; callers treat returned values as read-mostly snapshots and
// mutate only through the exposed operations.
type Store struct {
	api    *api.Client
	creds  Credentials
	state  *store.StateStore
	toasts *toast.Notifier
	routes *router.Router

	mu    sync.Mutex
	token string
	user  *model.CurrentUser

	now func() time.Time
}

// New creates a session store and restores any persisted session:
// token from the keyring, profile from the state store. A missing or
// unreadable credential simply yields a signed-out store.
func New(
	apiClient *api.Client,
	creds Credentials,
	state *store.StateStore,
	toasts *toast.Notifier,
	routes *router.Router,
) *Store {
	s := &Store{
		api:    apiClient,
		creds:  creds,
		state:  state,
		toasts: toasts,
		routes: routes,
		now:    time.Now,
	}

	if raw, err := creds.Get(credential.TokenKey); err == nil {
		s.token = NormalizeToken(raw)
	}
	if u, err := state.LoadCurrentUser(context.Background()); err == nil {
		s.user = &u
	}
	s.ensureUserID()

	return s
}

// ensureUserID backfills the cached profile's id from the token's
// subject claim when an older snapshot was persisted without one.
func (s *Store) ensureUserID() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != 0 {
		return
	}
	if id, ok := subjectID(decodeClaims(s.token)); ok {
		s.user.ID = id
		_ = s.state.SaveCurrentUser(context.Background(), *s.user)
	}
}

// Login authenticates against the backend. On success the token and
// derived profile are stored and persisted. Returns ErrBadCredentials
// (wrapping the backend message) when the credentials are rejected, or
// the underlying network error when the backend is unreachable.
func (s *Store) Login(ctx context.Context, usuario, senha string) (model.CurrentUser, error) {
	body := map[string]string{"login": usuario, "password": senha}

	var res loginResponse
	if err := s.api.Post(ctx, "/auth/login", body, &res); err != nil {
		status := api.StatusOf(err)
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			return model.CurrentUser{}, fmt.Errorf("%w: %v", ErrBadCredentials, err)
		}
		return model.CurrentUser{}, err
	}

	token := NormalizeToken(res.Token)
	claims := decodeClaims(token)
	id, _ := subjectID(claims)

	roleUpper := normalizeRoles([]string{res.Role})

	user := model.CurrentUser{
		ID:                 id,
		Nome:               res.Nome,
		Email:              res.Email,
		Username:           res.Username,
		Numero:             res.Numero,
		Roles:              roleUpper,
		MustChangePassword: res.MustChangePassword,
		PwdChangeReason:    model.NormalizeReason(res.PwdChangeReason),
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if token != "" {
		if err := s.creds.Set(credential.TokenKey, token); err != nil {
			return model.CurrentUser{}, fmt.Errorf("persisting token: %w", err)
		}
	}
	if err := s.state.SaveCurrentUser(ctx, user); err != nil {
		return model.CurrentUser{}, err
	}

	if res.MustChangePassword {
		reason := model.NormalizeReason(res.PwdChangeReason)
		_ = s.state.SaveMustChangeFlag(ctx, model.MustChangeFlag{
			Reason: reason,
			TS:     s.now().UnixMilli(),
		})
		if reason != model.PwdReasonInactivated {
			s.toasts.Warning("🔐 Sua senha é temporária. Altere agora para maior segurança.")
		}
	} else {
		_ = s.state.DeleteState(ctx, store.StateMustChange)
	}

	return user, nil
}

// LoadFromBackend refreshes the profile from GET /usuarios/me and
// persists it. A deactivated account ends the session immediately.
func (s *Store) LoadFromBackend(ctx context.Context) (model.CurrentUser, error) {
	var user model.CurrentUser
	if err := s.api.Get(ctx, "/usuarios/me", nil, &user); err != nil {
		return model.CurrentUser{}, err
	}

	if user.ID == 0 {
		if id, ok := subjectID(decodeClaims(s.Token())); ok {
			user.ID = id
		}
	}
	user.PwdChangeReason = model.NormalizeReason(string(user.PwdChangeReason))

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	if err := s.state.SaveCurrentUser(ctx, user); err != nil {
		return model.CurrentUser{}, err
	}

	if user.MustChangePassword {
		reason := user.PwdChangeReason
		_ = s.state.SaveMustChangeFlag(ctx, model.MustChangeFlag{
			Reason: reason,
			TS:     s.now().UnixMilli(),
		})

		switch reason {
		case model.PwdReasonInactivated:
			s.Logout()
			s.toasts.Error("❌ Sua conta foi desativada pelo administrador.")
		case model.PwdReasonUnknown:
			// No prompt for an unclassified reason.
		default:
			s.toasts.Warning("🔐 Sua senha é temporária. Altere agora para maior segurança.")
		}
	} else {
		_ = s.state.DeleteState(ctx, store.StateMustChange)
	}

	return user, nil
}

// Token returns the normalized bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns the cached profile snapshot.
func (s *Store) CurrentUser() (model.CurrentUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return model.CurrentUser{}, false
	}
	return *s.user, true
}

// CurrentUserID returns the signed-in user's id when known.
func (s *Store) CurrentUserID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.user == nil || s.user.ID == 0 {
		return 0, false
	}
	return s.user.ID, true
}

// IsValid reports whether a token exists and either carries no expiry
// claim or expires in the future. Never contacts the server.
func (s *Store) IsValid() bool {
	token := s.Token()
	claims := decodeClaims(token)
	if claims == nil {
		return false
	}

	exp, hasExp := expiry(claims)
	if !hasExp {
		return true
	}
	return exp.After(s.now())
}

// Roles returns the user's role set, preferring the cached profile and
// falling back to the token's claims. With no token, the user has no
// roles regardless of any cached content.
func (s *Store) Roles() []model.Role {
	s.mu.Lock()
	token := s.token
	var cached []model.Role
	if s.user != nil {
		cached = append(cached, s.user.Roles...)
	}
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	if len(cached) > 0 {
		return cached
	}
	return rolesFromClaims(decodeClaims(token))
}

// HasRole reports whether the user carries the given role.
func (s *Store) HasRole(r model.Role) bool {
	for _, have := range s.Roles() {
		if have == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the ADMIN role.
func (s *Store) IsAdmin() bool { return s.HasRole(model.RoleAdmin) }

// IsDev reports whether the user carries the DEV role.
func (s *Store) IsDev() bool { return s.HasRole(model.RoleDev) }

// PrimaryRole picks the highest-precedence role for display.
func (s *Store) PrimaryRole() model.Role {
	roles := s.Roles()
	for _, want := range []model.Role{model.RoleDev, model.RoleAdmin} {
		for _, have := range roles {
			if have == want {
				return want
			}
		}
	}
	return model.RoleGerente
}

// Logout clears the persisted token and profile, resets in-memory
// state, and navigates to the login route. Idempotent: repeated calls
// leave the store in the same cleared state without error.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	// An absent credential is already the state logout wants.
	_ = s.creds.Delete(credential.TokenKey)
	_ = s.state.ClearSession(context.Background())

	s.routes.Navigate(router.PathLogin, nil)
}

// SetCurrentUser merges partial profile fields into the cached profile
// and persists the result, so avatar or name changes reflect in the UI
// without a refetch. A signed-out store ignores the merge.
func (s *Store) SetCurrentUser(partial model.CurrentUser) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	merged := s.user.Merge(partial)
	s.user = &merged
	s.mu.Unlock()

	_ = s.state.SaveCurrentUser(context.Background(), merged)
}

// ShouldPromptPasswordChange reports whether a mandatory password
// change is pending from a previous login or profile refresh.
func (s *Store) ShouldPromptPasswordChange() bool {
	_, err := s.state.LoadMustChangeFlag(context.Background())
	return err == nil
}

// PwdChangeReason returns the persisted reason for the pending
// password change, or PwdReasonUnknown when none is recorded.
func (s *Store) PwdChangeReason() model.PwdReason {
	flag, err := s.state.LoadMustChangeFlag(context.Background())
	if err != nil {
		return model.PwdReasonUnknown
	}
	return model.NormalizeReason(string(flag.Reason))
}

// ClearPasswordChangeFlag removes the pending password-change marker,
// called after the change succeeds.
func (s *Store) ClearPasswordChangeFlag() {
	_ = s.state.DeleteState(context.Background(), store.StateMustChange)
}
