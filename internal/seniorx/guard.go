package seniorx

import (
	"log/slog"
	"net/http"
	"net/url"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

// GuardOptions configures a Guard.
type GuardOptions struct {
	Facade    *Facade
	Validator *OriginValidator
	// LoginPath is where unauthenticated standalone requests are sent.
	LoginPath string
	Logger    *slog.Logger
}

// Guard protects routes behind the auth facade. While the facade is still
// resolving, requests that look like they come from the hosting platform get
// a retry response instead of a login redirect: bouncing an embedded page to
// the login screen mid-handshake would break the SSO flow.
type Guard struct {
	facade    *Facade
	validator *OriginValidator
	loginPath string
	logger    *slog.Logger
}

// NewGuard creates a route guard.
func NewGuard(opts GuardOptions) *Guard {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		facade:    opts.Facade,
		validator: opts.Validator,
		loginPath: loginPath,
		logger:    logger,
	}
}

// Middleware wraps next with the guard.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch g.facade.State() {
		case domain.StateAuthenticatedPrimary, domain.StateAuthenticatedExternal:
			next.ServeHTTP(w, r)
		case domain.StateUnknown, domain.StateLoading:
			if g.looksEmbedded(r) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "waiting for platform sign-on", http.StatusServiceUnavailable)
				return
			}
			g.redirectToLogin(w, r)
		default:
			g.redirectToLogin(w, r)
		}
	})
}

// looksEmbedded applies the embedding heuristic: the facade was built for
// embedded mode, or the referrer points at a trusted platform origin.
func (g *Guard) looksEmbedded(r *http.Request) bool {
	if g.facade.Mode() == domain.ModeEmbedded {
		return true
	}
	if g.validator == nil {
		return false
	}

	ref := r.Referer()
	if ref == "" {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return g.validator.Allowed(u.Scheme + "://" + u.Host)
}

func (g *Guard) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	// API callers get a status code; browsers get the redirect.
	if r.Header.Get("Accept") == "application/json" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, g.loginPath, http.StatusFound)
}
