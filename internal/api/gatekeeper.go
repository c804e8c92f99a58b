package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pousadadobrejo/pousada-console/internal/model"
	"github.com/pousadadobrejo/pousada-console/internal/router"
	"github.com/pousadadobrejo/pousada-console/internal/toast"
)

// Session is the slice of the session store the gatekeeper needs:
// a token snapshot, the signed-in user's id, and a way to end the
// session. Defined here so the api package does not depend on the
// session package.
type Session interface {
	// Token returns the current bearer token, or "" when signed out.
	Token() string

	// CurrentUserID returns the signed-in user's id. ok is false when
	// no id is known (signed out, or the token carried no subject).
	CurrentUserID() (id int64, ok bool)

	// Logout ends the session and navigates to the login route.
	Logout()
}

// Latch and cool-down spans for the one-shot failure handling.
const (
	handling401Window = 2 * time.Second
	toastCooldown     = 5 * time.Second
	oneShotDuration   = 4 * time.Second
	sessionToastDur   = 6 * time.Second
)

// forceLogoutBody is the side-channel signal any API response body may
// carry, independent of HTTP status.
type forceLogoutBody struct {
	ForceLogout bool   `json:"forceLogout"`
	AlvoID      *int64 `json:"alvoId"`
}

var apiPathPattern = regexp.MustCompile(`/api(/|$)`)

// Gatekeeper is an http.RoundTripper that transparently authenticates
// API requests and centrally reacts to session-ending failures so
// individual pages do not each reimplement that logic.
type Gatekeeper struct {
	next   http.RoundTripper
	routes *router.Router
	toasts *toast.Notifier

	mu          sync.Mutex
	session     Session
	handling401 bool
	cooldowns   map[string]time.Time

	now func() time.Time
}

// NewGatekeeper wraps next (nil means http.DefaultTransport). Bind must
// be called with the session store before the first request; until then
// requests pass through unauthenticated.
func NewGatekeeper(next http.RoundTripper, routes *router.Router, toasts *toast.Notifier) *Gatekeeper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Gatekeeper{
		next:      next,
		routes:    routes,
		toasts:    toasts,
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Bind attaches the session store. Done post-construction because the
// session store's own HTTP client is built on top of this transport.
func (g *Gatekeeper) Bind(s Session) {
	g.mu.Lock()
	g.session = s
	g.mu.Unlock()
}

// RoundTrip implements http.RoundTripper.
func (g *Gatekeeper) RoundTrip(req *http.Request) (*http.Response, error) {
	isLogin := strings.Contains(req.URL.Path, "/auth/login")
	isAPI := apiPathPattern.MatchString(req.URL.Path)

	// Snapshot before the request so the 401 handling can tell "never
	// had a session" apart from "session just expired".
	token := g.token()
	hadToken := token != ""

	if isAPI && !isLogin && hadToken && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.next.RoundTrip(req)
	if err != nil {
		if isAPI && !g.routes.OnPublic() {
			g.showOnce("network", model.ToastError,
				"Sem conexão com o servidor. Verifique sua internet.", oneShotDuration)
		}
		return nil, err
	}

	if !isAPI {
		return resp, nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return g.inspectSuccess(resp)
	}

	return g.handleFailure(resp, hadToken)
}

// inspectSuccess scans a successful API response body for the
// forceLogout side-channel signal, restoring the body afterwards.
func (g *Gatekeeper) inspectSuccess(resp *http.Response) (*http.Response, error) {
	if resp.Body == nil || !strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return resp, nil
	}

	var signal forceLogoutBody
	if json.Unmarshal(body, &signal) != nil || !signal.ForceLogout {
		return resp, nil
	}

	session := g.boundSession()
	if session == nil {
		return resp, nil
	}

	localID, known := session.CurrentUserID()
	if !known {
		// The local id is unknown, so the signal cannot be proven to
		// target someone else. Treat it as a critical session fault.
		session.Logout()
		g.showOnce("forceLogout-admin-null", model.ToastError,
			"🚫 Falha crítica de sessão. Faça login novamente.", sessionToastDur)
		return resp, nil
	}

	if signal.AlvoID != nil && *signal.AlvoID != localID {
		// An admin forced someone else's logout; not our concern.
		return resp, nil
	}

	session.Logout()
	g.showOnce("forceLogout", model.ToastError,
		"🚫 Sua sessão foi encerrada por ação administrativa. Faça login novamente.", sessionToastDur)
	return resp, nil
}

// handleFailure classifies a non-2xx API response and reacts, then
// returns the response (with its body restored) to the caller.
func (g *Gatekeeper) handleFailure(resp *http.Response, hadToken bool) (*http.Response, error) {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}

	currentRoute, _ := g.routes.Current()
	onPublic := currentRoute.Public
	returnURL := currentRoute.Path

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if !hadToken {
			// The user was never authenticated, so this is not a
			// surprise: redirect silently from protected routes only.
			if !onPublic {
				g.routes.Navigate(router.PathLogin, url.Values{"returnUrl": {returnURL}})
			}
			return resp, nil
		}

		// Public routes never consume the latch: a stray 401 on /login
		// must not suppress handling of a real expiry right after.
		if !onPublic && g.acquire401Latch() {
			if s := g.boundSession(); s != nil {
				s.Logout()
			}
			g.showOnce("session-401", model.ToastError,
				"⏰ Sessão expirada! Faça login novamente.", sessionToastDur)
			g.routes.Navigate(router.PathLogin, url.Values{"returnUrl": {returnURL}})
		}

	case http.StatusForbidden:
		msg := strings.ToLower(backendMessage(body))
		if strings.Contains(msg, "inativa") || strings.Contains(msg, "bloqueada") {
			if s := g.boundSession(); s != nil {
				s.Logout()
			}
			if !onPublic {
				g.showOnce("account-blocked", model.ToastError,
					"❌ Conta bloqueada. Contate o administrador.", oneShotDuration)
			}
			g.routes.Navigate(router.PathLogin, nil)
		} else {
			if !onPublic {
				g.toasts.Warning("Você não tem permissão para essa ação.")
			}
			g.routes.Navigate(router.PathAcessoNegado, nil)
		}

	default:
		if !onPublic {
			g.toasts.Error("Ocorreu um erro inesperado.")
		}
	}

	return resp, nil
}

// acquire401Latch takes the single-flight 401 latch. It reports true
// for exactly one caller per window; the latch self-clears after
// handling401Window so a later genuine expiry is handled again.
func (g *Gatekeeper) acquire401Latch() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handling401 {
		return false
	}
	g.handling401 = true

	time.AfterFunc(handling401Window, func() {
		g.mu.Lock()
		g.handling401 = false
		g.mu.Unlock()
	})
	return true
}

// showOnce shows a toast for key unless the key is in cool-down.
func (g *Gatekeeper) showOnce(key string, kind model.ToastType, message string, duration time.Duration) {
	g.mu.Lock()
	now := g.now()
	if until, ok := g.cooldowns[key]; ok && now.Before(until) {
		g.mu.Unlock()
		return
	}
	g.cooldowns[key] = now.Add(toastCooldown)
	g.mu.Unlock()

	g.toasts.Show(kind, message, duration)
}

func (g *Gatekeeper) token() string {
	s := g.boundSession()
	if s == nil {
		return ""
	}
	return s.Token()
}

func (g *Gatekeeper) boundSession() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}
