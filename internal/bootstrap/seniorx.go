package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/seniorxapi"
	domainsx "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
)

// SeniorXComponents groups the platform auth pieces built from configuration:
// the inbound message pipe the HTTP bridge feeds, the facade holding the
// resolved auth state, and the route guard protecting the app shell.
type SeniorXComponents struct {
	Conn   *seniorx.PipeConn
	Facade *seniorx.Facade
	Guard  *seniorx.Guard
}

// BuildSeniorX assembles the platform SSO components. In embedded mode the
// facade runs the credential handshake against messages bridged from the
// hosting page and revalidates restored tokens against the platform API; in
// standalone mode it only purges leftover embedded state. The caller owns
// starting the facade.
func BuildSeniorX(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) (*SeniorXComponents, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	sx := cfg.SeniorX

	validator, err := seniorx.NewOriginValidator(sx.TrustedRootDomain, sx.LegacyOrigins)
	if err != nil {
		return nil, fmt.Errorf("origin validator: %w", err)
	}

	var store seniorx.SnapshotStore = seniorx.NewMemStore()
	if sx.SnapshotPath != "" {
		fileStore, storeErr := seniorx.NewFileStore(sx.SnapshotPath)
		if storeErr != nil {
			return nil, fmt.Errorf("snapshot store: %w", storeErr)
		}
		store = fileStore
	}

	conn := seniorx.NewPipeConn(16)

	mode := domainsx.ModeStandalone
	var hs *seniorx.Handshake
	var checker seniorx.TokenChecker
	if sx.Embedded {
		mode = domainsx.ModeEmbedded
		hs, err = seniorx.NewHandshake(seniorx.HandshakeOptions{
			Conn:          conn,
			Validator:     validator,
			RequestMarker: sx.RequestMarker,
			RetryInterval: sx.RetryInterval,
			Timeout:       sx.HandshakeTimeout,
			Logger:        logger,
		})
		if err != nil {
			return nil, fmt.Errorf("handshake: %w", err)
		}
		checker = seniorxapi.NewClient(sx.APIBaseURL, nil)
	}

	facade, err := seniorx.NewFacade(seniorx.FacadeOptions{
		Mode:      mode,
		Store:     store,
		Handshake: hs,
		Syncer:    services.Syncer,
		Checker:   checker,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth facade: %w", err)
	}

	guard := seniorx.NewGuard(seniorx.GuardOptions{
		Facade:    facade,
		Validator: validator,
		LoginPath: cfg.HTTP.LoginPath,
		Logger:    logger,
	})

	return &SeniorXComponents{Conn: conn, Facade: facade, Guard: guard}, nil
}
