package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(config.TokenConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  time.Hour,
		RefreshTTL: 720 * time.Hour,
	})
	require.NoError(t, err)
	return iss
}

func testSession() domainauth.Session {
	return domainauth.Session{
		ID:       "sess-1",
		UserID:   "u1",
		FullName: "Maria Silva",
		Email:    "maria@acme.com",
		Role:     domainauth.RoleUser,
		Provider: domainauth.ProviderExternal,
	}
}

func TestNewIssuerRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer(config.TokenConfig{})
	require.Error(t, err)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	iss := testIssuer(t)
	pair, err := iss.Issue(ctx, testSession())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	sess, err := iss.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "maria@acme.com", sess.Email)
	assert.Equal(t, domainauth.RoleUser, sess.Role)
	assert.Equal(t, domainauth.ProviderExternal, sess.Provider)
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	iss := testIssuer(t)
	pair, err := iss.Issue(ctx, testSession())
	require.NoError(t, err)

	_, err = iss.Verify(ctx, pair.RefreshToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestRefreshMintsNewPair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	iss := testIssuer(t)
	pair, err := iss.Issue(ctx, testSession())
	require.NoError(t, err)

	renewed, err := iss.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	sess, err := iss.Verify(ctx, renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.ID)

	// Refresh only accepts refresh tokens.
	_, err = iss.Refresh(ctx, pair.AccessToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	iss := testIssuer(t)
	pair, err := iss.Issue(ctx, testSession())
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Verify(ctx, pair.AccessToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pair, err := testIssuer(t).Issue(ctx, testSession())
	require.NoError(t, err)

	other, err := NewIssuer(config.TokenConfig{SigningKey: "other-key", AccessTTL: time.Hour, RefreshTTL: time.Hour})
	require.NoError(t, err)

	_, err = other.Verify(ctx, pair.AccessToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := testIssuer(t).Verify(context.Background(), "not.a.jwt")
	assert.True(t, apperrors.IsUnauthorized(err))
}
