package bootstrap

import (
	"log/slog"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/devauth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/oidc"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/passwordauth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// AuthConfig contains dependencies for building the auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Users    core.UserRepository
	Sessions ports.SessionStore
	Tokens   core.OneTimeTokenStore // Optional: password reset links
	Logger   *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.Sessions == nil || cfg.Users == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: session store or user repository not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	switch cfg.Auth.Mode {
	case config.AuthModePassword:
		return buildPasswordAuthService(cfg)

	case config.AuthModeOAuth:
		return buildOAuthService(cfg)

	case config.AuthModeMock:
		return buildDevAuthService(cfg)

	default:
		return nil
	}
}

func buildPasswordAuthService(cfg AuthConfig) *service.AuthService {
	authenticator := passwordauth.NewAuthenticator(cfg.Users, cfg.Auth.SessionTTL)

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Sessions:     cfg.Sessions,
		Users:        cfg.Users,
		Password:     authenticator,
		Tokens:       cfg.Tokens,
		HashPassword: passwordauth.HashPassword,
		SessionTTL:   cfg.Auth.SessionTTL,
		OneTimeTTL:   cfg.Auth.Tokens.OneTimeTTL,
		Logger:       cfg.Logger,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create password auth service, auth disabled", "error", err)
		}
		return nil
	}
	return svc
}

func buildOAuthService(cfg AuthConfig) *service.AuthService {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		AdminGroup:   oauth.AdminGroup,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Sessions:   cfg.Sessions,
		Users:      cfg.Users,
		Provider:   prov,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     cfg.Logger,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC auth service, auth disabled", "error", err)
		}
		return nil
	}
	return svc
}

func buildDevAuthService(cfg AuthConfig) *service.AuthService {
	// Explicitly enabled dev auth mode; build a local provider.
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:          cfg.Auth.DevAuth.UserID,
		Email:           cfg.Auth.DevAuth.Email,
		Admin:           cfg.Auth.DevAuth.Admin,
		SessionDuration: cfg.Auth.SessionTTL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Sessions:   cfg.Sessions,
		Users:      cfg.Users,
		Provider:   prov,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     cfg.Logger,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth service, auth disabled", "error", err)
		}
		return nil
	}
	return svc
}
