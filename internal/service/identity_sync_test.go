package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	domainsx "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
	mockauth "github.com/GustavoMarcolla/insightscore-pro/internal/mocks/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
)

type checkerFunc func(ctx context.Context, accessToken string) (domainsx.ExternalIdentity, error)

func (f checkerFunc) GetUser(ctx context.Context, accessToken string) (domainsx.ExternalIdentity, error) {
	return f(ctx, accessToken)
}

type identitySyncFixture struct {
	svc      *IdentitySyncService
	users    *mocks.MockUserRepository
	tokens   *mocks.MockOneTimeTokenStore
	sessions *mockauth.MemorySessionStore
	issuer   *mockauth.MockTokenIssuer
}

// newIdentitySyncService creates mock dependencies and a service for testing.
func newIdentitySyncService(t *testing.T, platform seniorx.TokenChecker) identitySyncFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := identitySyncFixture{
		users:    mocks.NewMockUserRepository(ctrl),
		tokens:   mocks.NewMockOneTimeTokenStore(ctrl),
		sessions: mockauth.NewMemorySessionStore(),
		issuer:   &mockauth.MockTokenIssuer{},
	}
	svc, err := NewIdentitySyncService(IdentitySyncServiceOptions{
		Users:    f.users,
		Tokens:   f.tokens,
		Sessions: f.sessions,
		Issuer:   f.issuer,
		Platform: platform,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func platformIdentity() domainsx.ExternalIdentity {
	return domainsx.ExternalIdentity{
		ID:           "ext-1",
		Username:     "joana.silva",
		FullName:     "Joana Silva",
		Email:        "joana@example.com",
		TenantDomain: "example.com",
	}
}

func TestIdentitySyncService_SyncExternalUser(t *testing.T) {
	t.Parallel()
	f := newIdentitySyncService(t, nil)
	ctx := context.Background()

	f.users.EXPECT().FindOrCreateByEmail(ctx, "joana@example.com", gomock.Any()).
		Return(testUser(), true, nil).Times(1)
	f.tokens.EXPECT().Issue(ctx, "user-1", 10*time.Minute).Return("one-time", nil).Times(1)

	result, err := f.svc.SyncExternalUser(ctx, platformIdentity())
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, "one-time", result.OneTimeToken)
	assert.True(t, result.Created)
}

func TestIdentitySyncService_SyncExternalUserRequiresEmail(t *testing.T) {
	t.Parallel()
	f := newIdentitySyncService(t, nil)

	identity := platformIdentity()
	identity.Email = ""

	_, err := f.svc.SyncExternalUser(context.Background(), identity)
	assert.ErrorIs(t, err, seniorx.ErrMissingEmail)
}

func TestIdentitySyncService_VerifyOneTime(t *testing.T) {
	t.Parallel()
	f := newIdentitySyncService(t, nil)
	ctx := context.Background()

	f.tokens.EXPECT().Redeem(ctx, "one-time").Return("user-1", nil).Times(1)
	f.users.EXPECT().GetByID(ctx, "user-1").Return(testUser(), nil).Times(1)

	result, err := f.svc.VerifyOneTime(ctx, "one-time")
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.Session.UserID)
	assert.Equal(t, domainauth.ProviderExternal, result.Session.Provider)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.Equal(t, 1, f.sessions.Len())
}

func TestIdentitySyncService_VerifyOneTimeRejectsStaleToken(t *testing.T) {
	t.Parallel()
	f := newIdentitySyncService(t, nil)
	ctx := context.Background()

	f.tokens.EXPECT().Redeem(ctx, "stale").Return("", apperrors.Unauthorized("token not found")).Times(1)

	_, err := f.svc.VerifyOneTime(ctx, "stale")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, 0, f.sessions.Len())
}

func TestIdentitySyncService_ExchangeToken(t *testing.T) {
	t.Parallel()
	checker := checkerFunc(func(_ context.Context, accessToken string) (domainsx.ExternalIdentity, error) {
		require.Equal(t, "platform-token", accessToken)
		return platformIdentity(), nil
	})
	f := newIdentitySyncService(t, checker)
	ctx := context.Background()

	f.users.EXPECT().FindOrCreateByEmail(ctx, "joana@example.com", gomock.Any()).
		Return(testUser(), false, nil).Times(1)

	result, err := f.svc.ExchangeToken(ctx, "platform-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.Session.UserID)
	assert.Equal(t, domainauth.ProviderExternal, result.Session.Provider)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
}

func TestIdentitySyncService_ExchangeTokenRejected(t *testing.T) {
	t.Parallel()
	checker := checkerFunc(func(_ context.Context, _ string) (domainsx.ExternalIdentity, error) {
		return domainsx.ExternalIdentity{}, apperrors.Unauthorized("expired")
	})
	f := newIdentitySyncService(t, checker)

	_, err := f.svc.ExchangeToken(context.Background(), "bad-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestIdentitySyncService_ExchangeTokenDisabled(t *testing.T) {
	t.Parallel()
	f := newIdentitySyncService(t, nil)

	_, err := f.svc.ExchangeToken(context.Background(), "platform-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
