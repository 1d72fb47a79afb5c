package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Sessions ports.SessionStore // Required: session persistence
	Users    core.UserRepository
	Password ports.PasswordAuthenticator // Optional: password login mode
	Provider ports.AuthProvider          // Optional: OIDC login mode
	Tokens   core.OneTimeTokenStore      // Optional: password reset links

	// HashPassword hashes signup and reset passwords. Required when Password
	// or Tokens are set.
	HashPassword func(string) (string, error)

	SessionTTL time.Duration
	OneTimeTTL time.Duration
	Logger     *slog.Logger
}

// AuthService orchestrates first-party authentication: password login and
// signup, the optional OIDC flow, sessions, and password resets.
type AuthService struct {
	sessions ports.SessionStore
	users    core.UserRepository
	password ports.PasswordAuthenticator
	provider ports.AuthProvider
	tokens   core.OneTimeTokenStore

	hashPassword func(string) (string, error)
	sessionTTL   time.Duration
	oneTimeTTL   time.Duration
	logger       *slog.Logger
}

var errSessionExpired = apperrors.Unauthorized("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 8 * time.Hour
	}
	if opts.OneTimeTTL <= 0 {
		opts.OneTimeTTL = 10 * time.Minute
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "auth_service")
	}

	return &AuthService{
		sessions:     opts.Sessions,
		users:        opts.Users,
		password:     opts.Password,
		provider:     opts.Provider,
		tokens:       opts.Tokens,
		hashPassword: opts.HashPassword,
		sessionTTL:   opts.SessionTTL,
		oneTimeTTL:   opts.OneTimeTTL,
		logger:       logger,
	}, nil
}

// Login verifies email/password credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domainauth.Session, error) {
	if s.password == nil {
		return nil, apperrors.Validation("password login is not enabled")
	}

	identity, err := s.password.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, identity, domainauth.ProviderPrimary)
}

// SignupInput groups parameters for creating an account with a password.
type SignupInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Signup provisions a password account and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domainauth.Session, error) {
	if s.hashPassword == nil {
		return nil, apperrors.Validation("password signup is not enabled")
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	req := &model.CreateUserRequest{Email: in.Email}
	if in.FullName != "" {
		req.FullName = &in.FullName
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("set password hash: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account created", "user_id", user.ID)
	}
	return s.openSession(ctx, identityFromUser(user, time.Now().Add(s.sessionTTL)), domainauth.ProviderPrimary)
}

// BeginLoginResult contains the result of beginning an OIDC login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginOIDCLogin initiates the OIDC flow and returns the provider auth URL
// with state and nonce.
func (s *AuthService) BeginOIDCLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("oidc login is not enabled")
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an OIDC login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteOIDCLogin exchanges the authorization code for an identity, links it
// to a local account, and opens a session.
func (s *AuthService) CompleteOIDCLogin(ctx context.Context, in CompleteLoginInput) (*domainauth.Session, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("oidc login is not enabled")
	}
	if in.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if in.State == "" {
		return nil, errors.New("state parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  in.Code,
		State: in.State,
		Nonce: in.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	// OIDC identities are keyed by the provider subject; the local row is
	// keyed by email so embedded SSO and OIDC land on the same account.
	var fullName *string
	if identity.FullName != "" {
		fullName = &identity.FullName
	}
	user, _, err := s.users.FindOrCreateByEmail(ctx, identity.Email, fullName)
	if err != nil {
		return nil, fmt.Errorf("link account: %w", err)
	}
	identity.UserID = user.ID

	return s.openSession(ctx, identity, domainauth.ProviderPrimary)
}

// GetSession retrieves a session by ID, discarding it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.Unauthorized("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}
	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a single-use reset token for the account.
// A missing account still succeeds with an empty token so the endpoint cannot
// be used to probe for registered emails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if s.tokens == nil {
		return "", apperrors.Validation("password reset is not enabled")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID, s.oneTimeTTL)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "password reset token issued", "user_id", user.ID)
	}
	return token, nil
}

// CompletePasswordReset consumes the reset token and stores the new password.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if s.tokens == nil || s.hashPassword == nil {
		return apperrors.Validation("password reset is not enabled")
	}

	userID, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired reset token")
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, identity domainauth.Identity, provider domainauth.Provider) (*domainauth.Session, error) {
	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.sessionTTL)
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FullName:  identity.FullName,
		Email:     identity.Email,
		Role:      roleFor(identity.Admin),
		Provider:  provider,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &session, nil
}

func roleFor(admin bool) domainauth.Role {
	if admin {
		return domainauth.RoleAdmin
	}
	return domainauth.RoleUser
}

func identityFromUser(user *model.User, expiresAt time.Time) domainauth.Identity {
	fullName := ""
	if user.FullName != nil {
		fullName = *user.FullName
	}
	return domainauth.Identity{
		UserID:    user.ID,
		FullName:  fullName,
		Email:     user.Email,
		Admin:     user.Admin,
		ExpiresAt: expiresAt,
	}
}
