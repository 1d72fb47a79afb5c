package seniorx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantToken string
		wantUser  string
		wantEmail string
	}{
		{
			name:      "flat object",
			raw:       `{"token":"tok-1","user":{"username":"maria@acme","fullName":"Maria+Silva","email":"maria@acme.com"}}`,
			wantToken: "tok-1",
			wantUser:  "maria",
			wantEmail: "maria@acme.com",
		},
		{
			name:      "token object with snake_case access token",
			raw:       `{"token":{"access_token":"abc","email":"u@x.com","username":"u@tenant","fullName":"Ana+Silva","tenantName":"tenant"}}`,
			wantToken: "abc",
			wantUser:  "u",
			wantEmail: "u@x.com",
		},
		{
			name:      "token object with camelCase access token",
			raw:       `{"token":{"accessToken":"def","email":"ana@x.com","username":"ana@tenant"}}`,
			wantToken: "def",
			wantUser:  "ana",
			wantEmail: "ana@x.com",
		},
		{
			name:      "token under payload",
			raw:       `{"payload":{"token":"tok-2","user":{"email":"joao@acme.com"}}}`,
			wantToken: "tok-2",
			wantUser:  "joao",
			wantEmail: "joao@acme.com",
		},
		{
			name:      "token under data with access_token key",
			raw:       `{"data":{"access_token":"tok-3","user":{"username":"ana@acme","email":"ana@acme.com"}}}`,
			wantToken: "tok-3",
			wantUser:  "ana",
			wantEmail: "ana@acme.com",
		},
		{
			name:      "camelCase accessToken",
			raw:       `{"accessToken":"tok-4","email":"root@acme.com"}`,
			wantToken: "tok-4",
			wantUser:  "root",
			wantEmail: "root@acme.com",
		},
		{
			name:      "double encoded string payload",
			raw:       `"{\"token\":\"tok-5\",\"user\":{\"email\":\"x@acme.com\"}}"`,
			wantToken: "tok-5",
			wantUser:  "x",
			wantEmail: "x@acme.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			creds, err := Normalize([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, creds.AccessToken)
			assert.Equal(t, tt.wantUser, creds.User.Username)
			assert.Equal(t, tt.wantEmail, creds.User.Email)
		})
	}
}

func TestNormalizeFullNamePlusSigns(t *testing.T) {
	t.Parallel()

	creds, err := Normalize([]byte(`{"token":"t","user":{"fullName":"Maria+da+Silva","email":"m@a.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Maria da Silva", creds.User.FullName)
}

func TestNormalizeTokenObjectCarriesUserFields(t *testing.T) {
	t.Parallel()

	raw := `{"token":{"access_token":"abc","email":"u@x.com","username":"u@tenant","fullName":"Ana+Silva","tenantName":"acme"}}`
	creds, err := Normalize([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", creds.AccessToken)
	assert.Equal(t, "u", creds.User.Username)
	assert.Equal(t, "Ana Silva", creds.User.FullName)
	assert.Equal(t, "acme", creds.User.TenantDomain)
}

func TestNormalizeNoTokenIsNoise(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]byte(`{"event":"resize","height":900}`))
	assert.ErrorIs(t, err, ErrNotCredentialMessage)

	_, err = Normalize([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, ErrNotCredentialMessage)
}

func TestNormalizeMissingEmailIsHardFailure(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]byte(`{"token":"tok","user":{"username":"maria@acme"}}`))
	assert.ErrorIs(t, err, ErrMissingEmail)
}

func TestNormalizeGarbage(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]byte(`{not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingEmail)
}
