package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
	mockauth "github.com/GustavoMarcolla/insightscore-pro/internal/mocks/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAuthServiceReturnsNilWithoutDependencies(t *testing.T) {
	cfg := AuthConfig{
		Auth:   config.AuthConfig{Mode: config.AuthModePassword},
		Logger: discardLogger(),
	}

	if svc := BuildAuthService(cfg); svc != nil {
		t.Fatalf("BuildAuthService() = %v, want nil", svc)
	}
}

func TestBuildAuthServicePasswordMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := AuthConfig{
		Auth:     config.AuthConfig{Mode: config.AuthModePassword},
		Users:    mocks.NewMockUserRepository(ctrl),
		Sessions: mockauth.NewMemorySessionStore(),
		Logger:   discardLogger(),
	}

	if svc := BuildAuthService(cfg); svc == nil {
		t.Fatal("BuildAuthService() = nil, want password auth service")
	}
}

func TestBuildAuthServiceMockMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := AuthConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevAuth: config.DevAuthConfig{
				UserID: "dev",
				Email:  "dev@example.com",
				Admin:  true,
			},
		},
		Users:    mocks.NewMockUserRepository(ctrl),
		Sessions: mockauth.NewMemorySessionStore(),
		Logger:   discardLogger(),
	}

	if svc := BuildAuthService(cfg); svc == nil {
		t.Fatal("BuildAuthService() = nil, want dev auth service")
	}
}

func TestBuildAuthServiceOAuthModeRequiresConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	tests := []struct {
		name  string
		oauth config.OAuthConfig
	}{
		{
			name: "missing discovery URL",
			oauth: config.OAuthConfig{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
			},
		},
		{
			name: "missing client credentials",
			oauth: config.OAuthConfig{
				DiscoveryURL: "https://issuer.example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AuthConfig{
				Auth: config.AuthConfig{
					Mode:  config.AuthModeOAuth,
					OAuth: tt.oauth,
				},
				Users:    mocks.NewMockUserRepository(ctrl),
				Sessions: mockauth.NewMemorySessionStore(),
				Logger:   discardLogger(),
			}

			if svc := BuildAuthService(cfg); svc != nil {
				t.Fatalf("BuildAuthService() = %v, want nil", svc)
			}
		})
	}
}
