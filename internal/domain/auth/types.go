package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Provider identifies which authentication path produced a session.
type Provider string

const (
	// ProviderPrimary is the first-party path (password or enterprise OIDC).
	ProviderPrimary Provider = "primary"
	// ProviderExternal is the Senior X embedded SSO path.
	ProviderExternal Provider = "external"
)

// Identity represents the authenticated principal returned by an auth provider.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., sub or user row id)
	FullName  string
	Email     string
	Admin     bool
	ExpiresAt time.Time // absolute expiry from the provider
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Provider  Provider  `json:"provider"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// IsExternal returns true if the session was minted by the external SSO path.
func (s Session) IsExternal() bool { return s.Provider == ProviderExternal }

// TokenPair is the access/refresh pair issued to externally authenticated
// clients after one-time-link verification.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}
