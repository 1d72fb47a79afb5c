// Package jwtauth issues and verifies the first-party HS256 token pair
// handed to externally authenticated clients.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	issuerName       = "insightscore"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	FullName  string `json:"name,omitempty"`
	Role      string `json:"role"`
	Provider  string `json:"provider"`
	TokenUse  string `json:"use"`
}

// Issuer mints HS256 access/refresh pairs bound to a server-side session.
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer from token configuration.
func NewIssuer(cfg config.TokenConfig) (*Issuer, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("token signing key is required")
	}
	return &Issuer{
		key:        []byte(cfg.SigningKey),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// Issue mints a fresh access/refresh pair for the session.
func (i *Issuer) Issue(_ context.Context, sess domainauth.Session) (domainauth.TokenPair, error) {
	now := i.now()
	accessExp := now.Add(i.accessTTL)

	access, err := i.sign(sess, tokenTypeAccess, now, accessExp)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := i.sign(sess, tokenTypeRefresh, now, now.Add(i.refreshTTL))
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	return domainauth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    accessExp,
	}, nil
}

// Verify validates an access token and reconstructs the session it carries.
func (i *Issuer) Verify(_ context.Context, accessToken string) (domainauth.Session, error) {
	return i.parse(accessToken, tokenTypeAccess)
}

// Refresh validates a refresh token and mints a new pair for its session.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	sess, err := i.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return domainauth.TokenPair{}, err
	}
	return i.Issue(ctx, sess)
}

func (i *Issuer) sign(sess domainauth.Session, use string, now, exp time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   sess.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		SessionID: sess.ID,
		Email:     sess.Email,
		FullName:  sess.FullName,
		Role:      string(sess.Role),
		Provider:  string(sess.Provider),
		TokenUse:  use,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

func (i *Issuer) parse(token, wantUse string) (domainauth.Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainauth.Session{}, apperrors.Unauthorized("token expired")
		}
		return domainauth.Session{}, apperrors.Unauthorized("invalid token")
	}
	if !parsed.Valid || claims.TokenUse != wantUse {
		return domainauth.Session{}, apperrors.Unauthorized("invalid token")
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return domainauth.Session{
		ID:        claims.SessionID,
		UserID:    claims.Subject,
		FullName:  claims.FullName,
		Email:     claims.Email,
		Role:      domainauth.Role(claims.Role),
		Provider:  domainauth.Provider(claims.Provider),
		ExpiresAt: exp,
	}, nil
}
