package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	httpx "github.com/GustavoMarcolla/insightscore-pro/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	SeniorX  *SeniorXComponents
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Suppliers:      cfg.Services.Suppliers,
		Contacts:       cfg.Services.Contacts,
		Groups:         cfg.Services.Groups,
		Criteria:       cfg.Services.Criteria,
		Qualifications: cfg.Services.Qualifications,
		Dashboard:      cfg.Services.Dashboard,
		Feedback:       cfg.Services.Feedback,
		Auth:           cfg.Services.Auth,
		IdentitySync:   cfg.Services.IdentitySync,
		Syncer:         cfg.Services.Syncer,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		Logger:         logger,
	}
	// A typed nil issuer must not be wrapped into the TokenVerifier interface.
	if cfg.Services.Tokens != nil {
		services.Tokens = cfg.Services.Tokens
	}

	if cfg.SeniorX != nil {
		services.Platform = &httpx.PlatformHandlers{
			Facade: cfg.SeniorX.Facade,
			Conn:   cfg.SeniorX.Conn,
			Logger: logger,
		}
		services.Guard = cfg.SeniorX.Guard
	}

	// Same for a typed nil metrics client; Enabled is nil-safe.
	var sink httpx.MetricsSink
	if cfg.Services.Observability.MetricsSink.Enabled() {
		sink = cfg.Services.Observability.MetricsSink
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: services,
		Metrics:  sink,
	})

	// Start server (logs "starting HTTP server" internally)
	return startServer(logger, handler, appCfg.HTTP.Addr)
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	Metrics  httpx.MetricsSink
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	// Order: Recover -> Logging -> Metrics -> Router
	h := httpx.NewRouter(cfg.Services)
	if cfg.Metrics != nil {
		h = httpx.Metrics(cfg.Metrics)(h)
	}
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
