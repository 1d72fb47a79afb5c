package seniorxapi

// Package seniorxapi talks to the Senior X platform API to validate access
// tokens delivered through the embedded handshake.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

// ErrInvalidToken is returned when the platform rejects the access token.
var ErrInvalidToken = errors.New("platform rejected access token")

// Client calls the platform authentication API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a platform API client. baseURL is the platform gateway
// root, e.g. https://cloud-leaf.senior.com.br.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

const getUserPath = "/t/senior.com.br/bridge/1.0/rest/platform/authentication/actions/getUser"

// Tenant deployments expose user fields under slightly different shapes, so
// each field is resolved through an ordered list of expressions.
var (
	exprUsername = mustCompile("username || user.username || data.username")
	exprFullName = mustCompile("fullName || user.fullName || data.fullName || name")
	exprEmail    = mustCompile("email || user.email || data.email")
	exprTenant   = mustCompile("tenantDomain || user.tenantDomain || data.tenantDomain")
	exprID       = mustCompile("id || user.id || data.id")
)

// GetUser validates the token against the platform and returns the identity
// it belongs to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (seniorx.ExternalIdentity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return seniorx.ExternalIdentity{}, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+getUserPath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return seniorx.ExternalIdentity{}, fmt.Errorf("build getUser request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return seniorx.ExternalIdentity{}, fmt.Errorf("call getUser: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return seniorx.ExternalIdentity{}, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return seniorx.ExternalIdentity{}, fmt.Errorf("getUser returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return seniorx.ExternalIdentity{}, fmt.Errorf("read getUser response: %w", err)
	}

	return decodeUser(body)
}

func decodeUser(body []byte) (seniorx.ExternalIdentity, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return seniorx.ExternalIdentity{}, fmt.Errorf("decode getUser response: %w", err)
	}

	id := seniorx.ExternalIdentity{
		ID:           searchString(exprID, doc),
		Username:     searchString(exprUsername, doc),
		FullName:     seniorx.NormalizeFullName(searchString(exprFullName, doc)),
		Email:        searchString(exprEmail, doc),
		TenantDomain: searchString(exprTenant, doc),
	}
	if id.Username == "" && id.Email != "" {
		id.Username = seniorx.NormalizeUsername(id.Email)
	}
	if id.Username == "" && id.Email == "" {
		return seniorx.ExternalIdentity{}, errors.New("getUser response has no username or email")
	}
	return id, nil
}

func searchString(expr jmespath.JMESPath, doc any) string {
	v, err := expr.Search(doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func mustCompile(expr string) jmespath.JMESPath {
	return jmespath.MustCompile(expr)
}
