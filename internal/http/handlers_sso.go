package httpx

import (
	"errors"
	"net/http"
	"strings"

	domainsx "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// SSOHandlers provides HTTP handlers for the embedded platform SSO flow:
// identity sync, one-time token verification, and direct token exchange.
type SSOHandlers struct {
	// Syncer links platform identities to local accounts. Usually a
	// seniorx.GuardedSyncer wrapping the identity sync service.
	Syncer       seniorx.IdentitySyncer
	Svc          *service.IdentitySyncService
	CookieDomain string
}

// Sync handles HTTP requests to link a platform identity to a local account.
// POST /auth/sso/sync with the platform identity as the JSON body. The reply
// carries a single-use token the client redeems via Verify.
func (h *SSOHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	var user domainsx.ExternalIdentity
	if !DecodeJSON(w, r, &user) {
		return
	}

	result, err := h.Syncer.SyncExternalUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, seniorx.ErrMissingEmail):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_email", Err: err})
		case errors.Is(err, seniorx.ErrSyncInFlight):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "sync_in_flight", Err: err})
		default:
			WriteServiceError(w, err, "sync_failed")
		}
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, result)
}

// Verify handles HTTP requests to redeem a one-time login token.
// POST /auth/verify. A valid token opens a session and returns it with a
// first-party token pair; the session cookie is set for browser clients.
func (h *SSOHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_token", Err: errors.New("token is required")})
		return
	}

	result, err := h.Svc.VerifyOneTime(r.Context(), req.Token)
	if err != nil {
		WriteServiceError(w, err, "verify_failed")
		return
	}

	h.setSessionCookie(w, r, result)
	WriteJSON(w, http.StatusOK, result)
}

// Exchange handles HTTP requests to trade a platform access token for a
// first-party session, skipping the one-time token hop.
// POST /auth/sso/exchange with the token in X-Senior-Token or Authorization.
func (h *SSOHandlers) Exchange(w http.ResponseWriter, r *http.Request) {
	token := platformToken(r)
	if token == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_token", Err: errors.New("platform access token is required")})
		return
	}

	result, err := h.Svc.ExchangeToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, seniorx.ErrMissingEmail) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_email", Err: err})
			return
		}
		WriteServiceError(w, err, "exchange_failed")
		return
	}

	h.setSessionCookie(w, r, result)
	WriteJSON(w, http.StatusOK, result)
}

// platformToken extracts the platform access token from the request. The
// dedicated header wins; an Authorization bearer header is the fallback.
func platformToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get("X-Senior-Token")); token != "" {
		return token
	}
	return bearerToken(r)
}

func (h *SSOHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, result *service.SessionResult) {
	auth := AuthHandlers{CookieDomain: h.CookieDomain}
	auth.setSessionCookie(w, r, result.Session)
}
