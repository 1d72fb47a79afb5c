package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{"password", AuthModePassword, false},
		{"OAUTH", AuthModeOAuth, false},
		{"Mock", AuthModeMock, false},
		{"saml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		var m AuthMode
		err := m.UnmarshalText([]byte(tt.input))
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, m)
	}
}

func TestSeniorXConfig_Sanitize(t *testing.T) {
	t.Parallel()

	cfg := SeniorXConfig{TrustedRootDomain: "  Senior.COM.br "}
	cfg.Sanitize()

	assert.Equal(t, "senior.com.br", cfg.TrustedRootDomain)
	assert.Equal(t, time.Second, cfg.RetryInterval)
	assert.Equal(t, 5*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, "requestInitialData", cfg.RequestMarker)
}

func TestSeniorXConfig_Sanitize_TimeoutNotBelowInterval(t *testing.T) {
	t.Parallel()

	cfg := SeniorXConfig{RetryInterval: 2 * time.Second, HandshakeTimeout: time.Second}
	cfg.Sanitize()

	assert.Equal(t, 2*time.Second, cfg.HandshakeTimeout)
}

func TestAuthConfig_Sanitize_Defaults(t *testing.T) {
	t.Parallel()

	var cfg AuthConfig
	cfg.Sanitize()

	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Tokens.AccessTTL)
	assert.Equal(t, 10*time.Minute, cfg.Tokens.OneTimeTTL)
}
