package seniorx

// Package seniorx contains domain types for the Senior X embedded SSO
// handshake. It is pure; transport and persistence live in
// internal/seniorx and internal/adapters.

import "strings"

// ExternalIdentity is the user identity pushed by the hosting platform.
type ExternalIdentity struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	TenantDomain string `json:"tenant_domain"`
}

// SessionMode describes where the application is running.
type SessionMode string

const (
	// ModeStandalone means the application owns its own browsing context.
	ModeStandalone SessionMode = "standalone"
	// ModeEmbedded means the application runs inside a foreign context whose
	// top-level context differs from its own.
	ModeEmbedded SessionMode = "embedded"
)

// Snapshot is the persisted unit of external-session state. It survives
// reloads and is cleared as a whole on sign-out.
type Snapshot struct {
	User  ExternalIdentity `json:"user"`
	Token string           `json:"token"`
	Mode  SessionMode      `json:"mode"`
}

// Valid reports whether the snapshot carries a usable identity.
func (s Snapshot) Valid() bool {
	return s.Token != "" && s.User.Email != ""
}

// State is a handshake facade state.
type State string

const (
	StateUnknown               State = "unknown"
	StateLoading               State = "loading"
	StateAuthenticatedPrimary  State = "authenticated_primary"
	StateAuthenticatedExternal State = "authenticated_external"
	StateUnauthenticated       State = "unauthenticated"
)

// Authenticated reports whether the state grants access, regardless of
// which branch produced it.
func (s State) Authenticated() bool {
	return s == StateAuthenticatedPrimary || s == StateAuthenticatedExternal
}

// Terminal reports whether the facade has settled.
func (s State) Terminal() bool {
	return s.Authenticated() || s == StateUnauthenticated
}

// NormalizeUsername strips the tenant qualifier embedded in a platform
// login id ("user@tenant" -> "user"). Values without "@" pass through.
func NormalizeUsername(username string) string {
	if i := strings.Index(username, "@"); i >= 0 {
		return username[:i]
	}
	return username
}

// NormalizeFullName replaces literal '+' characters with spaces. Inbound
// values are URL-query-encoded upstream; the transform is idempotent on
// already-decoded input.
func NormalizeFullName(fullName string) string {
	return strings.ReplaceAll(fullName, "+", " ")
}
