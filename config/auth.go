package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the primary authentication mode for the application.
type AuthMode string

const (
	// AuthModePassword uses email/password credentials stored first-party.
	AuthModePassword AuthMode = "password"
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "password", "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration for the optional enterprise login mode.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"insightscore"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"insightscore"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
	// AdminGroup grants the admin role when present in the groups claim.
	AdminGroup string `env:"ADMIN_GROUP"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	Email  string `env:"EMAIL"   envDefault:"dev@example.com"`
	Admin  bool   `env:"ADMIN"   envDefault:"true"`
}

// TokenConfig controls the first-party token pair minted by the SSO
// identity sync and the bearer-token middleware.
type TokenConfig struct {
	// SigningKey signs access and refresh tokens (HS256). Required outside dev.
	SigningKey string `env:"SIGNING_KEY"`
	// AccessTTL bounds access token lifetime.
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	// RefreshTTL bounds refresh token lifetime.
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
	// OneTimeTTL bounds the magic-link token issued by identity sync.
	OneTimeTTL time.Duration `env:"ONE_TIME_TTL" envDefault:"10m"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which primary authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// SessionTTL bounds server-side session lifetime for password logins.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"8h"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Tokens configures the JWT pair issued to externally authenticated users.
	Tokens TokenConfig `envPrefix:"AUTH_TOKEN_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 8 * time.Hour
	}
	if a.Tokens.AccessTTL <= 0 {
		a.Tokens.AccessTTL = time.Hour
	}
	if a.Tokens.RefreshTTL <= 0 {
		a.Tokens.RefreshTTL = 720 * time.Hour
	}
	if a.Tokens.OneTimeTTL <= 0 {
		a.Tokens.OneTimeTTL = 10 * time.Minute
	}
}
