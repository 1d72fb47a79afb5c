package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Suppliers      *service.SupplierService
	Contacts       *service.ContactService
	Groups         *service.GroupService
	Criteria       *service.CriterionService
	Qualifications *service.QualificationService
	Dashboard      *service.DashboardService
	Feedback       *service.FeedbackService
	Auth           *service.AuthService
	IdentitySync   *service.IdentitySyncService
	// Optional: bearer token support for API clients. Usually the JWT issuer.
	Tokens TokenVerifier
	// Optional: serializes concurrent platform sync requests.
	Syncer seniorx.IdentitySyncer
	// Optional: the platform bridge and the guard protecting the app shell.
	Platform     *PlatformHandlers
	Guard        *seniorx.Guard
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	// authWrap treats a nil Sessions interface as auth disabled, so a nil
	// *service.AuthService must not be wrapped into it.
	var sessionAuth SessionAuth
	if services.Auth != nil {
		sessionAuth = SessionAuth{Sessions: services.Auth, Tokens: services.Tokens}
	}

	supplierHandlers := &SupplierHandlers{
		Svc:      services.Suppliers,
		Contacts: services.Contacts,
		Feedback: services.Feedback,
	}
	groupHandlers := &GroupHandlers{Svc: services.Groups}
	criterionHandlers := &CriterionHandlers{Svc: services.Criteria}
	qualificationHandlers := &QualificationHandlers{Svc: services.Qualifications}
	dashboardHandlers := &DashboardHandlers{Svc: services.Dashboard}

	registerSupplierRoutes(mux, supplierHandlers, sessionAuth)
	registerCriteriaRoutes(mux, groupHandlers, criterionHandlers, sessionAuth)
	registerQualificationRoutes(mux, qualificationHandlers, sessionAuth)
	registerDashboardRoutes(mux, dashboardHandlers, sessionAuth)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		authHandlers := &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		}
		registerAuthRoutes(mux, authHandlers)
	}
	if services.Platform != nil {
		registerPlatformRoutes(mux, services.Platform, services.Guard)
	}
	if services.IdentitySync != nil {
		syncer := services.Syncer
		if syncer == nil {
			syncer = services.IdentitySync
		}
		ssoHandlers := &SSOHandlers{
			Syncer:       syncer,
			Svc:          services.IdentitySync,
			CookieDomain: services.CookieDomain,
		}
		registerSSORoutes(mux, ssoHandlers)
	}

	return mux
}

func registerSupplierRoutes(mux *http.ServeMux, h *SupplierHandlers, auth SessionAuth) {
	wrap := authWrap(auth)

	registerCRUD(mux, crudRoutes{
		Base:       "/api/suppliers",
		Create:     h.Create,
		List:       h.List,
		GetByID:    h.GetByID,
		Update:     h.Update,
		Delete:     h.Delete,
		Middleware: wrap,
	})

	mux.Handle("POST /api/suppliers/{id}/toggle-status", wrap(http.HandlerFunc(h.ToggleStatus)))
	mux.Handle("POST /api/suppliers/{id}/feedback", wrap(http.HandlerFunc(h.SendFeedback)))

	mux.Handle("POST /api/suppliers/{id}/contacts", wrap(http.HandlerFunc(h.CreateContact)))
	mux.Handle("GET /api/suppliers/{id}/contacts", wrap(http.HandlerFunc(h.ListContacts)))
	mux.Handle("PUT /api/suppliers/{id}/contacts/{contactId}", wrap(http.HandlerFunc(h.UpdateContact)))
	mux.Handle("DELETE /api/suppliers/{id}/contacts/{contactId}", wrap(http.HandlerFunc(h.DeleteContact)))
}

func registerCriteriaRoutes(mux *http.ServeMux, g *GroupHandlers, c *CriterionHandlers, auth SessionAuth) {
	wrap := authWrap(auth)
	// Catalog edits are restricted to administrators; reads stay open to any
	// authenticated user.
	adminOnly := adminWrap(auth)

	mux.Handle("POST /api/criteria-groups", adminOnly(http.HandlerFunc(g.Create)))
	mux.Handle("GET /api/criteria-groups", wrap(http.HandlerFunc(g.List)))
	mux.Handle("GET /api/criteria-groups/{id}", wrap(http.HandlerFunc(g.GetByID)))
	mux.Handle("PUT /api/criteria-groups/{id}", adminOnly(http.HandlerFunc(g.Update)))
	mux.Handle("POST /api/criteria-groups/{id}/toggle-status", adminOnly(http.HandlerFunc(g.ToggleStatus)))
	mux.Handle("DELETE /api/criteria-groups/{id}", adminOnly(http.HandlerFunc(g.Delete)))

	mux.Handle("POST /api/criteria", adminOnly(http.HandlerFunc(c.Create)))
	mux.Handle("GET /api/criteria", wrap(http.HandlerFunc(c.List)))
	mux.Handle("GET /api/criteria/{id}", wrap(http.HandlerFunc(c.GetByID)))
	mux.Handle("PUT /api/criteria/{id}", adminOnly(http.HandlerFunc(c.Update)))
	mux.Handle("POST /api/criteria/{id}/toggle-status", adminOnly(http.HandlerFunc(c.ToggleStatus)))
	mux.Handle("DELETE /api/criteria/{id}", adminOnly(http.HandlerFunc(c.Delete)))
}

func registerQualificationRoutes(mux *http.ServeMux, h *QualificationHandlers, auth SessionAuth) {
	wrap := authWrap(auth)

	registerCRUD(mux, crudRoutes{
		Base:       "/api/qualifications",
		Create:     h.Create,
		List:       h.List,
		GetByID:    h.GetByID,
		Update:     h.Update,
		Delete:     h.Delete,
		Middleware: wrap,
	})

	mux.Handle("PUT /api/qualifications/{id}/evaluations", wrap(http.HandlerFunc(h.SaveEvaluations)))
	mux.Handle("GET /api/qualifications/{id}/evaluations", wrap(http.HandlerFunc(h.ListEvaluations)))

	mux.Handle("POST /api/qualifications/{id}/attachments", wrap(http.HandlerFunc(h.UploadAttachment)))
	mux.Handle("GET /api/qualifications/{id}/attachments", wrap(http.HandlerFunc(h.ListAttachments)))
	mux.Handle("GET /api/qualifications/{id}/attachments/{attachmentId}/download", wrap(http.HandlerFunc(h.DownloadAttachment)))
	mux.Handle("DELETE /api/qualifications/{id}/attachments/{attachmentId}", wrap(http.HandlerFunc(h.DeleteAttachment)))
}

func registerDashboardRoutes(mux *http.ServeMux, h *DashboardHandlers, auth SessionAuth) {
	wrap := authWrap(auth)
	mux.Handle("GET /api/dashboard", wrap(http.HandlerFunc(h.Get)))
	mux.Handle("GET /api/dashboard/stats", wrap(http.HandlerFunc(h.Stats)))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/signup", h.Signup)
	mux.HandleFunc("GET /auth/oidc/login", h.OIDCLogin)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/reset-password", h.RequestPasswordReset)
	mux.HandleFunc("POST /auth/reset-password/complete", h.CompletePasswordReset)
}

func registerPlatformRoutes(mux *http.ServeMux, h *PlatformHandlers, guard *seniorx.Guard) {
	mux.HandleFunc("POST /platform/messages", h.DeliverMessage)
	mux.HandleFunc("GET /platform/requests", h.PendingRequests)
	mux.HandleFunc("GET /platform/state", h.State)

	shell := http.Handler(http.HandlerFunc(h.AppShell))
	if guard != nil {
		shell = guard.Middleware(shell)
	}
	mux.Handle("GET /app", shell)
}

func registerSSORoutes(mux *http.ServeMux, h *SSOHandlers) {
	mux.HandleFunc("POST /auth/sso/sync", h.Sync)
	mux.HandleFunc("POST /auth/sso/exchange", h.Exchange)
	mux.HandleFunc("POST /auth/verify", h.Verify)
}

// authWrap returns a no-op wrapper when auth is disabled, otherwise applies
// RequireAuth.
func authWrap(auth SessionAuth) func(http.Handler) http.Handler {
	if auth.Sessions == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireAuth(auth)
}

// adminWrap returns a no-op wrapper when auth is disabled, otherwise applies
// RequireRole for administrators.
func adminWrap(auth SessionAuth) func(http.Handler) http.Handler {
	if auth.Sessions == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireRole(auth, domainauth.RoleAdmin)
}

// crudRoutes registers standard CRUD routes for a resource base path, applying
// Middleware if non-nil.
type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware func(http.Handler) http.Handler
}

func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty") //nolint:forbidigo // Fail fast during server setup.
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base) //nolint:forbidigo // Fail fast during server setup.
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}
