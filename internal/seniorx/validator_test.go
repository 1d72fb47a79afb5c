package seniorx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOriginValidatorRejectsBarePublicSuffix(t *testing.T) {
	t.Parallel()

	_, err := NewOriginValidator("com.br", nil)
	require.Error(t, err)

	_, err = NewOriginValidator("", nil)
	require.Error(t, err)

	_, err = NewOriginValidator("senior.com.br", nil)
	require.NoError(t, err)
}

func TestOriginValidatorAllowed(t *testing.T) {
	t.Parallel()

	v, err := NewOriginValidator("senior.com.br", []string{"https://platform.senior.com.br", "http://legacy.example.com"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"root domain", "https://senior.com.br", true},
		{"subdomain", "https://cloud.senior.com.br", true},
		{"deep subdomain", "https://a.b.senior.com.br", true},
		{"trailing slash", "https://cloud.senior.com.br/", true},
		{"uppercase host", "https://CLOUD.SENIOR.COM.BR", true},
		{"legacy exact match", "http://legacy.example.com", true},
		{"suffix without dot boundary", "https://evilsenior.com.br", false},
		{"lookalike domain", "https://senior.com.br.evil.com", false},
		{"http scheme outside allowlist", "http://cloud.senior.com.br", false},
		{"unrelated origin", "https://example.com", false},
		{"origin with path", "https://cloud.senior.com.br/app", false},
		{"null origin", "null", false},
		{"empty origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, v.Allowed(tt.origin))
		})
	}
}
