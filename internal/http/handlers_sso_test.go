package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	domainsx "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
	mockauth "github.com/GustavoMarcolla/insightscore-pro/internal/mocks/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// platformCheckerFunc adapts a func to seniorx.TokenChecker.
type platformCheckerFunc func(ctx context.Context, accessToken string) (domainsx.ExternalIdentity, error)

func (f platformCheckerFunc) GetUser(ctx context.Context, accessToken string) (domainsx.ExternalIdentity, error) {
	return f(ctx, accessToken)
}

type ssoHandlerFixture struct {
	handlers *SSOHandlers
	users    *mocks.MockUserRepository
	tokens   *mocks.MockOneTimeTokenStore
	sessions *mockauth.MemorySessionStore
}

func newSSOHandlers(t *testing.T, platform seniorx.TokenChecker) *ssoHandlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	users := mocks.NewMockUserRepository(ctrl)
	tokens := mocks.NewMockOneTimeTokenStore(ctrl)
	sessions := mockauth.NewMemorySessionStore()
	svc, err := service.NewIdentitySyncService(service.IdentitySyncServiceOptions{
		Users:    users,
		Tokens:   tokens,
		Sessions: sessions,
		Issuer:   &mockauth.MockTokenIssuer{},
		Platform: platform,
	})
	require.NoError(t, err)

	return &ssoHandlerFixture{
		handlers: &SSOHandlers{Syncer: svc, Svc: svc},
		users:    users,
		tokens:   tokens,
		sessions: sessions,
	}
}

func platformUser() *model.User {
	fullName := "Ana Lima"
	return &model.User{
		ID:        "user-9",
		Email:     "ana.lima@example.com",
		FullName:  &fullName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestSSOHandlers_Sync_NewAccount(t *testing.T) {
	f := newSSOHandlers(t, nil)

	user := platformUser()
	f.users.EXPECT().FindOrCreateByEmail(gomock.Any(), user.Email, gomock.Any()).
		Return(user, true, nil)
	f.tokens.EXPECT().Issue(gomock.Any(), user.ID, gomock.Any()).Return("one-time", nil)

	body := `{"id":"sx-9","username":"ana.lima","full_name":"Ana Lima","email":"ana.lima@example.com","tenant_domain":"acme.example.com"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/sso/sync", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	f.handlers.Sync(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got seniorx.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "user-9", got.UserID)
	assert.Equal(t, "one-time", got.OneTimeToken)
	assert.True(t, got.Created)
}

func TestSSOHandlers_Sync_MissingEmail(t *testing.T) {
	f := newSSOHandlers(t, nil)

	body := `{"id":"sx-9","username":"ana.lima"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/sso/sync", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	f.handlers.Sync(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Equal(t, "missing_email", errBody["error"])
}

func TestSSOHandlers_Verify_OpensSession(t *testing.T) {
	f := newSSOHandlers(t, nil)

	user := platformUser()
	f.tokens.EXPECT().Redeem(gomock.Any(), "one-time").Return(user.ID, nil)
	f.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/verify", bytes.NewBufferString(`{"token":"one-time"}`))
	w := httptest.NewRecorder()

	f.handlers.Verify(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got service.SessionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, user.ID, got.Session.UserID)
	assert.Equal(t, domainauth.ProviderExternal, got.Session.Provider)
	assert.NotEmpty(t, got.Tokens.AccessToken)
	assert.Equal(t, 1, f.sessions.Len())

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_id" {
			sessionCookie = cookie
			break
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, got.Session.ID, sessionCookie.Value)
}

func TestSSOHandlers_Verify_BadToken(t *testing.T) {
	f := newSSOHandlers(t, nil)

	f.tokens.EXPECT().Redeem(gomock.Any(), "stale").Return("", errors.New("token already redeemed"))

	r := httptest.NewRequest(http.MethodPost, "/auth/verify", bytes.NewBufferString(`{"token":"stale"}`))
	w := httptest.NewRecorder()

	f.handlers.Verify(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSSOHandlers_Exchange_HeaderToken(t *testing.T) {
	checker := platformCheckerFunc(func(_ context.Context, accessToken string) (domainsx.ExternalIdentity, error) {
		assert.Equal(t, "platform-token", accessToken)
		return domainsx.ExternalIdentity{
			ID:       "sx-9",
			FullName: "Ana Lima",
			Email:    "ana.lima@example.com",
		}, nil
	})
	f := newSSOHandlers(t, checker)

	user := platformUser()
	f.users.EXPECT().FindOrCreateByEmail(gomock.Any(), user.Email, gomock.Any()).
		Return(user, false, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/sso/exchange", nil)
	r.Header.Set("X-Senior-Token", "platform-token")
	w := httptest.NewRecorder()

	f.handlers.Exchange(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got service.SessionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, user.ID, got.Session.UserID)
	assert.NotEmpty(t, got.Tokens.AccessToken)
}

func TestSSOHandlers_Exchange_MissingToken(t *testing.T) {
	f := newSSOHandlers(t, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/sso/exchange", nil)
	w := httptest.NewRecorder()

	f.handlers.Exchange(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
