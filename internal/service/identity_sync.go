package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	domainsx "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
)

// IdentitySyncServiceOptions groups dependencies for IdentitySyncService.
type IdentitySyncServiceOptions struct {
	Users    core.UserRepository    // Required: account provisioning
	Tokens   core.OneTimeTokenStore // Required: magic-link tokens
	Sessions ports.SessionStore     // Required: sessions opened on verification
	Issuer   ports.TokenIssuer      // Required: first-party token pairs
	Platform seniorx.TokenChecker   // Optional: token-exchange validation

	OneTimeTTL time.Duration
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// IdentitySyncService is the backend half of the embedded SSO flow: it links
// platform identities to local accounts, issues single-use login tokens, and
// mints the first-party token pair once a token is verified.
type IdentitySyncService struct {
	users    core.UserRepository
	tokens   core.OneTimeTokenStore
	sessions ports.SessionStore
	issuer   ports.TokenIssuer
	platform seniorx.TokenChecker

	oneTimeTTL time.Duration
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewIdentitySyncService constructs a new IdentitySyncService.
func NewIdentitySyncService(opts IdentitySyncServiceOptions) (*IdentitySyncService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("OneTimeTokenStore is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Issuer == nil {
		return nil, errors.New("TokenIssuer is required")
	}
	if opts.OneTimeTTL <= 0 {
		opts.OneTimeTTL = 10 * time.Minute
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 8 * time.Hour
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "identity_sync_service")
	}

	return &IdentitySyncService{
		users:      opts.Users,
		tokens:     opts.Tokens,
		sessions:   opts.Sessions,
		issuer:     opts.Issuer,
		platform:   opts.Platform,
		oneTimeTTL: opts.OneTimeTTL,
		sessionTTL: opts.SessionTTL,
		logger:     logger,
	}, nil
}

// SyncExternalUser links the platform identity to a local account and issues
// a single-use token that redeems for a first-party session.
func (s *IdentitySyncService) SyncExternalUser(ctx context.Context, user domainsx.ExternalIdentity) (seniorx.SyncResult, error) {
	if user.Email == "" {
		return seniorx.SyncResult{}, seniorx.ErrMissingEmail
	}

	var fullName *string
	if user.FullName != "" {
		fullName = &user.FullName
	}

	account, created, err := s.users.FindOrCreateByEmail(ctx, user.Email, fullName)
	if err != nil {
		return seniorx.SyncResult{}, fmt.Errorf("find or create user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, account.ID, s.oneTimeTTL)
	if err != nil {
		return seniorx.SyncResult{}, fmt.Errorf("issue one-time token: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "external identity synced",
			"user_id", account.ID, "created", created)
	}
	return seniorx.SyncResult{
		UserID:       account.ID,
		OneTimeToken: token,
		Email:        account.Email,
		Created:      created,
	}, nil
}

// SessionResult bundles the session and token pair returned to externally
// authenticated clients.
type SessionResult struct {
	Session domainauth.Session   `json:"session"`
	Tokens  domainauth.TokenPair `json:"tokens"`
}

// VerifyOneTime consumes a magic-link token and opens a first-party session
// with a token pair. A second redemption of the same token fails.
func (s *IdentitySyncService) VerifyOneTime(ctx context.Context, token string) (*SessionResult, error) {
	userID, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.openExternalSession(ctx, identityFromUser(user, time.Now().Add(s.sessionTTL)))
}

// ExchangeToken validates a Senior X access token against the platform and
// returns a full session payload directly, skipping the magic-link hop.
func (s *IdentitySyncService) ExchangeToken(ctx context.Context, accessToken string) (*SessionResult, error) {
	if s.platform == nil {
		return nil, apperrors.Validation("token exchange is not enabled")
	}

	identity, err := s.platform.GetUser(ctx, accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("platform rejected access token")
	}
	if identity.Email == "" {
		return nil, seniorx.ErrMissingEmail
	}

	var fullName *string
	if identity.FullName != "" {
		fullName = &identity.FullName
	}
	account, _, err := s.users.FindOrCreateByEmail(ctx, identity.Email, fullName)
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}
	return s.openExternalSession(ctx, identityFromUser(account, time.Now().Add(s.sessionTTL)))
}

func (s *IdentitySyncService) openExternalSession(ctx context.Context, identity domainauth.Identity) (*SessionResult, error) {
	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FullName:  identity.FullName,
		Email:     identity.Email,
		Role:      roleFor(identity.Admin),
		Provider:  domainauth.ProviderExternal,
		ExpiresAt: identity.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	pair, err := s.issuer.Issue(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("issue token pair: %w", err)
	}
	return &SessionResult{Session: session, Tokens: pair}, nil
}
