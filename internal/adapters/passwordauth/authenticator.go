package passwordauth

// Package passwordauth verifies email/password credentials against the users
// table using bcrypt hashes.

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
)

// Authenticator implements ports.PasswordAuthenticator backed by the user
// repository.
type Authenticator struct {
	users      core.UserRepository
	sessionTTL time.Duration
}

// NewAuthenticator creates a password authenticator.
func NewAuthenticator(users core.UserRepository, sessionTTL time.Duration) *Authenticator {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &Authenticator{users: users, sessionTTL: sessionTTL}
}

// Authenticate verifies the credentials and returns the account identity.
// A missing account and a wrong password return the same error so callers
// cannot probe for registered emails.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (domainauth.Identity, error) {
	invalid := apperrors.Unauthorized("invalid email or password")

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return domainauth.Identity{}, invalid
		}
		return domainauth.Identity{}, err
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return domainauth.Identity{}, invalid
	}

	if bcryptErr := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); bcryptErr != nil {
		return domainauth.Identity{}, invalid
	}

	fullName := ""
	if user.FullName != nil {
		fullName = *user.FullName
	}
	return domainauth.Identity{
		UserID:    user.ID,
		FullName:  fullName,
		Email:     user.Email,
		Admin:     user.Admin,
		ExpiresAt: time.Now().Add(a.sessionTTL),
	}, nil
}

// HashPassword produces a bcrypt hash suitable for UserRepository.SetPasswordHash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperrors.Validation("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
