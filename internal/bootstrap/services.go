package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/blobstore"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/jwtauth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/mailer"
	redisadapter "github.com/GustavoMarcolla/insightscore-pro/internal/adapters/redis"
	"github.com/GustavoMarcolla/insightscore-pro/internal/adapters/seniorxapi"
	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	"github.com/GustavoMarcolla/insightscore-pro/internal/observability/statsd"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Suppliers      *service.SupplierService
	Contacts       *service.ContactService
	Groups         *service.GroupService
	Criteria       *service.CriterionService
	Qualifications *service.QualificationService
	Dashboard      *service.DashboardService
	Feedback       *service.FeedbackService
	Auth           *service.AuthService
	IdentitySync   *service.IdentitySyncService
	Syncer         seniorx.IdentitySyncer
	Tokens         *jwtauth.Issuer
	Observability  ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB    *sql.DB
	Redis redis.UniversalClient

	SupplierRepo      *data.SupplierRepo
	ContactRepo       *data.ContactRepo
	GroupRepo         *data.GroupRepo
	CriterionRepo     *data.CriterionRepo
	QualificationRepo *data.QualificationRepo
	DashboardRepo     *data.DashboardRepo
	UserRepo          *data.UserRepo

	Sessions       *redisadapter.SessionStore
	OneTimeTokens  *redisadapter.OneTimeTokenStore
	DashboardCache *redisadapter.DashboardCache
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	return &serviceRepositories{
		DB:                db,
		Redis:             redisClient,
		SupplierRepo:      data.NewSupplierRepo(db),
		ContactRepo:       data.NewContactRepo(db),
		GroupRepo:         data.NewGroupRepo(db),
		CriterionRepo:     data.NewCriterionRepo(db),
		QualificationRepo: data.NewQualificationRepo(db),
		DashboardRepo:     data.NewDashboardRepo(db),
		UserRepo:          data.NewUserRepo(db),
		Sessions:          redisadapter.NewSessionStore(redisClient),
		OneTimeTokens:     redisadapter.NewOneTimeTokenStore(redisClient),
		DashboardCache:    redisadapter.NewDashboardCache(redisClient),
	}
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "insightscore",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// tokenConfig resolves the JWT signing configuration, substituting a fixed
// key in development so the SSO flow works without env setup.
func tokenConfig(cfg *config.AppConfig, logger *slog.Logger) config.TokenConfig {
	tokens := cfg.Auth.Tokens
	if tokens.SigningKey == "" && cfg.IsDev {
		if logger != nil {
			logger.Warn("token signing key missing; using development key")
		}
		tokens.SigningKey = "insightscore-dev-signing-key"
	}
	return tokens
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) ports.BlobStore {
	store, err := blobstore.NewS3Store(ctx, cfg)
	if err != nil {
		if logger != nil {
			logger.Warn("blob store unavailable, attachment uploads disabled", "error", err)
		}
		return nil
	}
	return store
}

func newMailer(cfg config.FeedbackConfig, logger *slog.Logger) ports.Mailer {
	if !cfg.IsEnabled() {
		if logger != nil {
			logger.Info("feedback email disabled", "reason", "no API key configured")
		}
		return nil
	}

	m, err := mailer.NewResendMailer(mailer.Config{
		APIURL:      cfg.APIURL,
		APIKey:      cfg.APIKey,
		FromAddress: cfg.FromAddress,
	})
	if err != nil {
		if logger != nil {
			logger.Warn("mailer unavailable, feedback email disabled", "error", err)
		}
		return nil
	}
	return m
}

func newIdentitySync(
	cfg *config.AppConfig,
	repos *serviceRepositories,
	issuer *jwtauth.Issuer,
	logger *slog.Logger,
) *service.IdentitySyncService {
	if issuer == nil {
		return nil
	}

	var platform seniorx.TokenChecker
	if cfg.SeniorX.APIBaseURL != "" {
		platform = seniorxapi.NewClient(cfg.SeniorX.APIBaseURL, nil)
	}

	svc, err := service.NewIdentitySyncService(service.IdentitySyncServiceOptions{
		Users:      repos.UserRepo,
		Tokens:     repos.OneTimeTokens,
		Sessions:   repos.Sessions,
		Issuer:     issuer,
		Platform:   platform,
		OneTimeTTL: cfg.Auth.Tokens.OneTimeTTL,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     logger,
	})
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create identity sync service, platform SSO disabled", "error", err)
		}
		return nil
	}
	return svc
}

// NewServices wires repositories and adapters into the service container.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, fmt.Errorf("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient)

	suppliers, err := service.NewSupplierService(service.SupplierServiceOptions{
		Repo:   repos.SupplierRepo,
		Cache:  repos.DashboardCache,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("supplier service: %w", err)
	}

	contacts, err := service.NewContactService(service.ContactServiceOptions{
		Repo:      repos.ContactRepo,
		Suppliers: repos.SupplierRepo,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("contact service: %w", err)
	}

	groups, err := service.NewGroupService(service.GroupServiceOptions{
		Repo:   repos.GroupRepo,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("group service: %w", err)
	}

	criteria, err := service.NewCriterionService(service.CriterionServiceOptions{
		Repo:   repos.CriterionRepo,
		Groups: repos.GroupRepo,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("criterion service: %w", err)
	}

	qualifications, err := service.NewQualificationService(service.QualificationServiceOptions{
		Repo:      repos.QualificationRepo,
		Suppliers: repos.SupplierRepo,
		Blobs:     newBlobStore(ctx, cfg.Storage, logger),
		Cache:     repos.DashboardCache,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("qualification service: %w", err)
	}

	dashboard, err := service.NewDashboardService(service.DashboardServiceOptions{
		Repo:   repos.DashboardRepo,
		Cache:  repos.DashboardCache,
		TTL:    cfg.Cache.DashboardTTL,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("dashboard service: %w", err)
	}

	var feedback *service.FeedbackService
	if m := newMailer(cfg.Feedback, logger); m != nil {
		feedback, err = service.NewFeedbackService(service.FeedbackServiceOptions{
			Qualifications: repos.QualificationRepo,
			Suppliers:      repos.SupplierRepo,
			Contacts:       repos.ContactRepo,
			Mailer:         m,
			FromAddress:    cfg.Feedback.FromAddress,
			Logger:         logger,
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("feedback service: %w", err)
		}
	}

	auth := BuildAuthService(AuthConfig{
		Auth:     cfg.Auth,
		Users:    repos.UserRepo,
		Sessions: repos.Sessions,
		Tokens:   repos.OneTimeTokens,
		Logger:   logger,
	})

	var issuer *jwtauth.Issuer
	if tokens := tokenConfig(cfg, logger); tokens.SigningKey != "" {
		issuer, err = jwtauth.NewIssuer(tokens)
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("token issuer: %w", err)
		}
	} else {
		logger.Warn("token signing key missing; bearer tokens and platform SSO disabled")
	}

	identitySync := newIdentitySync(cfg, repos, issuer, logger)
	var syncer seniorx.IdentitySyncer
	if identitySync != nil {
		syncer = seniorx.NewGuardedSyncer(identitySync, logger)
	}

	return ServiceContainer{
		Suppliers:      suppliers,
		Contacts:       contacts,
		Groups:         groups,
		Criteria:       criteria,
		Qualifications: qualifications,
		Dashboard:      dashboard,
		Feedback:       feedback,
		Auth:           auth,
		IdentitySync:   identitySync,
		Syncer:         syncer,
		Tokens:         issuer,
		Observability:  observability,
	}, nil
}
