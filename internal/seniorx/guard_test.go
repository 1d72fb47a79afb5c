package seniorx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

func guardWithState(t *testing.T, mode domain.SessionMode, state domain.State) *Guard {
	t.Helper()

	v, err := NewOriginValidator("senior.com.br", nil)
	require.NoError(t, err)

	opts := FacadeOptions{
		Mode:   mode,
		Store:  NewMemStore(),
		Logger: discardLogger(),
	}
	// An embedded facade always carries a handshake and a token checker.
	if mode == domain.ModeEmbedded {
		hs, hsErr := NewHandshake(HandshakeOptions{
			Conn:      NewPipeConn(1),
			Validator: v,
			Logger:    discardLogger(),
			Clock:     newFakeClock(),
		})
		require.NoError(t, hsErr)
		opts.Handshake = hs
		opts.Checker = &fakeChecker{}
	}

	f, err := NewFacade(opts)
	require.NoError(t, err)
	f.setState(state)

	return NewGuard(GuardOptions{Facade: f, Validator: v, Logger: discardLogger()})
}

func serveGuarded(g *Guard, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	g.Middleware(next).ServeHTTP(rec, r)
	return rec
}

func TestGuardPassesAuthenticatedRequests(t *testing.T) {
	t.Parallel()

	for _, state := range []domain.State{domain.StateAuthenticatedPrimary, domain.StateAuthenticatedExternal} {
		g := guardWithState(t, domain.ModeStandalone, state)
		rec := serveGuarded(g, httptest.NewRequest(http.MethodGet, "/api/suppliers", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "state %s", state)
	}
}

func TestGuardEmbeddedResolvingAsksForRetry(t *testing.T) {
	t.Parallel()

	g := guardWithState(t, domain.ModeEmbedded, domain.StateLoading)
	rec := serveGuarded(g, httptest.NewRequest(http.MethodGet, "/api/suppliers", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "waiting for platform sign-on")
}

func TestGuardStandaloneResolvingWithPlatformRefererAsksForRetry(t *testing.T) {
	t.Parallel()

	g := guardWithState(t, domain.ModeStandalone, domain.StateLoading)
	req := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	req.Header.Set("Referer", "https://cloud.senior.com.br/app")

	rec := serveGuarded(g, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGuardStandaloneResolvingRedirectsToLogin(t *testing.T) {
	t.Parallel()

	g := guardWithState(t, domain.ModeStandalone, domain.StateLoading)
	rec := serveGuarded(g, httptest.NewRequest(http.MethodGet, "/api/suppliers", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGuardUnauthenticatedRedirectsEvenWhenEmbedded(t *testing.T) {
	t.Parallel()

	// Once the facade has settled on Unauthenticated there is nothing to
	// wait for; embedded requests get the redirect too.
	g := guardWithState(t, domain.ModeEmbedded, domain.StateUnauthenticated)
	rec := serveGuarded(g, httptest.NewRequest(http.MethodGet, "/api/suppliers", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestGuardJSONClientsGetUnauthorized(t *testing.T) {
	t.Parallel()

	g := guardWithState(t, domain.ModeStandalone, domain.StateUnauthenticated)
	req := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	req.Header.Set("Accept", "application/json")

	rec := serveGuarded(g, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardIgnoresUntrustedReferer(t *testing.T) {
	t.Parallel()

	g := guardWithState(t, domain.ModeStandalone, domain.StateLoading)
	req := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	req.Header.Set("Referer", "https://evil.example.com/")

	rec := serveGuarded(g, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}
