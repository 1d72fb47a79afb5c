package seniorx

// Package seniorx implements the embedded-platform handshake: origin
// validation, payload normalization, the retrying initial-data request loop,
// snapshot persistence, and the unified auth facade built on top of them.

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// OriginValidator decides whether a message origin is allowed to deliver
// credentials. An origin is accepted when its host is the trusted root domain
// or any subdomain of it, or when it exactly matches a legacy allowlist
// entry. Everything else is rejected.
type OriginValidator struct {
	root   string
	legacy map[string]struct{}
}

// NewOriginValidator builds a validator for the given root domain and legacy
// origin list. The root must be a registrable domain, not a bare public
// suffix: accepting every subdomain of "com.br" would accept the whole
// internet.
func NewOriginValidator(rootDomain string, legacyOrigins []string) (*OriginValidator, error) {
	root := strings.ToLower(strings.TrimSpace(rootDomain))
	if root == "" {
		return nil, errors.New("trusted root domain is required")
	}

	if suffix, _ := publicsuffix.PublicSuffix(root); suffix == root {
		return nil, fmt.Errorf("trusted root domain %q is a bare public suffix", root)
	}

	legacy := make(map[string]struct{}, len(legacyOrigins))
	for _, o := range legacyOrigins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "" {
			continue
		}
		legacy[o] = struct{}{}
	}

	return &OriginValidator{root: root, legacy: legacy}, nil
}

// Allowed reports whether the origin may deliver credentials.
func (v *OriginValidator) Allowed(origin string) bool {
	origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
	if origin == "" || origin == "null" {
		return false
	}

	if _, ok := v.legacy[origin]; ok {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	// An origin is scheme://host[:port] only.
	if u.Path != "" || u.RawQuery != "" || u.User != nil {
		return false
	}

	host := u.Hostname()
	return host == v.root || strings.HasSuffix(host, "."+v.root)
}
