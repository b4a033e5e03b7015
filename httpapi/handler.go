package httpapi

import (
	"net"
	"net/http"

	goTOTP "github.com/MrEthical07/goTOTP"
	"github.com/google/uuid"
)

// Config defines a public type used by goTOTP APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// CookieName overrides the engine's configured session cookie name
	// when non-empty.
	CookieName string
	// StaticDir, when non-empty, is served at / for everything the API
	// routes do not claim.
	StaticDir string
	// SecureCookies adds Secure and SameSite=Lax to session cookies.
	// Leave it off only for plain-HTTP local development.
	SecureCookies bool
}

// API defines a public type used by goTOTP APIs.
//
// API instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type API struct {
	engine *goTOTP.Engine
	cfg    Config
}

// New creates the HTTP surface for engine.
func New(engine *goTOTP.Engine, cfg Config) *API {
	if cfg.CookieName == "" {
		cfg.CookieName = engine.CookieName()
	}
	return &API{engine: engine, cfg: cfg}
}

// Routes describes the routes operation and its observable behavior.
//
// Routes may return an error when input validation, dependency calls, or security checks fail.
// Routes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", a.handleLogin)
	mux.HandleFunc("GET /qrImage", a.handleQRImage)
	mux.HandleFunc("GET /set2FA", a.handleSet2FA)
	mux.HandleFunc("GET /check", a.handleCheck)
	mux.HandleFunc("GET /logout", a.handleLogout)
	if a.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(a.cfg.StaticDir)))
	}
	return withRequestContext(mux)
}

// withRequestContext tags every request with a correlation id and the
// client IP so engine audit events can be tied back to requests.
func withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		ctx := goTOTP.WithRequestID(r.Context(), requestID)
		ctx = goTOTP.WithClientIP(ctx, host)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := a.engine.Login(r.Context(), q.Get("id"), q.Get("password"), q.Get("code"))
	if err != nil {
		status, message := statusForError(err)
		writeJSON(w, status, map[string]any{"error": message})
		return
	}

	if result.CodeRequested {
		writeJSON(w, http.StatusOK, map[string]any{"codeRequested": true})
		return
	}

	a.setSessionCookie(w, result.SessionToken)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleQRImage(w http.ResponseWriter, r *http.Request) {
	id, err := a.engine.ResolveSessionToken(a.sessionTokenFromRequest(r))
	if err != nil {
		status, message := statusForError(err)
		writeJSON(w, status, map[string]any{"success": false, "error": message})
		return
	}

	setup, err := a.engine.BeginEnrollment(r.Context(), id)
	if err != nil {
		status, message := statusForError(err)
		writeJSON(w, status, map[string]any{"success": false, "error": message})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "image": setup.Image})
}

func (a *API) handleSet2FA(w http.ResponseWriter, r *http.Request) {
	id, err := a.engine.ResolveSessionToken(a.sessionTokenFromRequest(r))
	if err != nil {
		status, _ := statusForError(err)
		writeJSON(w, status, map[string]any{"success": false})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	if err := a.engine.ConfirmEnrollment(r.Context(), id, code); err != nil {
		status, _ := statusForError(err)
		writeJSON(w, status, map[string]any{"success": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	// Presence check only: the session is the cookie, and whether the
	// user record still exists is not this route's concern.
	id, err := a.engine.ResolveSessionToken(a.sessionTokenFromRequest(r))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.engine.Logout(r.Context(), a.sessionTokenFromRequest(r))
	a.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
