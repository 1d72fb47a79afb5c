package seniorx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

var (
	// ErrNotCredentialMessage marks messages that are not credential
	// deliveries at all (no token anywhere). Callers should ignore these
	// quietly: the platform broadcasts plenty of unrelated traffic.
	ErrNotCredentialMessage = errors.New("message carries no access token")

	// ErrMissingEmail marks a credential message whose user block has no
	// email. Without an email the account cannot be linked, so this is a
	// hard failure rather than noise.
	ErrMissingEmail = errors.New("credential message has no user email")
)

// Credentials is the normalized result of a credential message.
type Credentials struct {
	AccessToken string
	User        domain.ExternalIdentity
}

// Integrations deliver the payload in several shapes: a JSON object, a JSON
// string that itself encodes an object, and with the token and user block
// nested under different keys. The canonical platform shape carries a token
// OBJECT holding both the access token and the user fields; older shapes
// carry a token string with a separate user block, or everything flat. Each
// field is resolved through an ordered expression so every observed shape
// lands on the same struct. Object paths come before the bare "token" key:
// a field lookup on a string yields null and falls through, while a token
// object matched too early would fail the string assertion.
var (
	exprToken = jmespath.MustCompile(
		"token.access_token || token.accessToken || payload.token.access_token || payload.token.accessToken" +
			" || data.token.access_token || data.token.accessToken" +
			" || access_token || accessToken || payload.access_token || data.access_token" +
			" || token || payload.token || data.token")
	exprUsername = jmespath.MustCompile(
		"token.username || user.username || username || payload.token.username || payload.user.username || data.token.username || data.user.username")
	exprFullName = jmespath.MustCompile(
		"token.fullName || user.fullName || user.name || fullName || payload.token.fullName || payload.user.fullName || data.user.fullName")
	exprEmail = jmespath.MustCompile(
		"token.email || user.email || email || payload.token.email || payload.user.email || data.token.email || data.user.email")
	exprTenant = jmespath.MustCompile(
		"token.tenantName || user.tenantName || tenantName || token.tenantDomain || user.tenantDomain || tenantDomain" +
			" || payload.token.tenantName || payload.user.tenantDomain || data.user.tenantDomain")
	exprUserID = jmespath.MustCompile("token.id || user.id || payload.user.id || data.user.id")
)

// Normalize parses a raw message body into Credentials. The body may be a
// JSON object or a JSON string wrapping one (double-encoded payloads are
// unwrapped once).
func Normalize(raw []byte) (Credentials, error) {
	doc, err := decodeBody(raw)
	if err != nil {
		return Credentials{}, err
	}

	token := searchString(exprToken, doc)
	if token == "" {
		return Credentials{}, ErrNotCredentialMessage
	}

	email := searchString(exprEmail, doc)
	if email == "" {
		return Credentials{}, ErrMissingEmail
	}

	// Usernames arrive as user@tenant regardless of where they sit in the
	// payload; both paths strip the tenant suffix.
	username := domain.NormalizeUsername(searchString(exprUsername, doc))
	if username == "" {
		username = domain.NormalizeUsername(email)
	}

	return Credentials{
		AccessToken: token,
		User: domain.ExternalIdentity{
			ID:           searchString(exprUserID, doc),
			Username:     username,
			FullName:     domain.NormalizeFullName(searchString(exprFullName, doc)),
			Email:        email,
			TenantDomain: searchString(exprTenant, doc),
		},
	}, nil
}

func decodeBody(raw []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	// A string body is a double-encoded object; unwrap one level.
	if s, ok := doc.(string); ok {
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, fmt.Errorf("decode wrapped message: %w", err)
		}
	}

	if _, ok := doc.(map[string]any); !ok {
		return nil, ErrNotCredentialMessage
	}
	return doc, nil
}

func searchString(expr jmespath.JMESPath, doc any) string {
	v, err := expr.Search(doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
