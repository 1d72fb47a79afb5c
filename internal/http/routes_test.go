package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
	mockauth "github.com/GustavoMarcolla/insightscore-pro/internal/mocks/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

type routerFixture struct {
	handler   http.Handler
	sessions  *mockauth.MemorySessionStore
	suppliers *mocks.MockSupplierRepository
	groups    *mocks.MockGroupRepository
}

func newRouter(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	supplierRepo := mocks.NewMockSupplierRepository(ctrl)
	contactRepo := mocks.NewMockContactRepository(ctrl)
	groupRepo := mocks.NewMockGroupRepository(ctrl)
	criterionRepo := mocks.NewMockCriterionRepository(ctrl)
	qualificationRepo := mocks.NewMockQualificationRepository(ctrl)
	dashboardRepo := mocks.NewMockDashboardRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	oneTime := mocks.NewMockOneTimeTokenStore(ctrl)
	sessions := mockauth.NewMemorySessionStore()
	issuer := &mockauth.MockTokenIssuer{}

	suppliers, err := service.NewSupplierService(service.SupplierServiceOptions{Repo: supplierRepo})
	require.NoError(t, err)
	contacts, err := service.NewContactService(service.ContactServiceOptions{Repo: contactRepo, Suppliers: supplierRepo})
	require.NoError(t, err)
	groups, err := service.NewGroupService(service.GroupServiceOptions{Repo: groupRepo})
	require.NoError(t, err)
	criteria, err := service.NewCriterionService(service.CriterionServiceOptions{Repo: criterionRepo, Groups: groupRepo})
	require.NoError(t, err)
	qualifications, err := service.NewQualificationService(service.QualificationServiceOptions{
		Repo:      qualificationRepo,
		Suppliers: supplierRepo,
		Blobs:     &mockauth.MockBlobStore{},
	})
	require.NoError(t, err)
	dashboard, err := service.NewDashboardService(service.DashboardServiceOptions{Repo: dashboardRepo})
	require.NoError(t, err)
	feedback, err := service.NewFeedbackService(service.FeedbackServiceOptions{
		Qualifications: qualificationRepo,
		Suppliers:      supplierRepo,
		Contacts:       contactRepo,
		Mailer:         &mockauth.MockMailer{},
		FromAddress:    "qualidade@example.com",
	})
	require.NoError(t, err)
	auth, err := service.NewAuthService(service.AuthServiceOptions{Sessions: sessions, Users: users})
	require.NoError(t, err)
	identitySync, err := service.NewIdentitySyncService(service.IdentitySyncServiceOptions{
		Users:    users,
		Tokens:   oneTime,
		Sessions: sessions,
		Issuer:   issuer,
	})
	require.NoError(t, err)

	handler := NewRouter(RouterServices{
		Suppliers:      suppliers,
		Contacts:       contacts,
		Groups:         groups,
		Criteria:       criteria,
		Qualifications: qualifications,
		Dashboard:      dashboard,
		Feedback:       feedback,
		Auth:           auth,
		IdentitySync:   identitySync,
		Tokens:         issuer,
	})

	return &routerFixture{
		handler:   handler,
		sessions:  sessions,
		suppliers: supplierRepo,
		groups:    groupRepo,
	}
}

func (f *routerFixture) login(t *testing.T, role domainauth.Role) *http.Cookie {
	t.Helper()
	session := domainauth.Session{
		ID:        "sess-" + string(role),
		UserID:    "user-1",
		Email:     "joana@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.sessions.Save(context.Background(), session))
	return &http.Cookie{Name: "session_id", Value: session.ID}
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_SuppliersRequireAuth(t *testing.T) {
	f := newRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SuppliersWithSession(t *testing.T) {
	f := newRouter(t)
	cookie := f.login(t, domainauth.RoleUser)

	f.suppliers.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*model.Supplier{}, nil)
	f.suppliers.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CatalogWritesAreAdminOnly(t *testing.T) {
	f := newRouter(t)
	cookie := f.login(t, domainauth.RoleUser)

	r := httptest.NewRequest(http.MethodPost, "/api/criteria-groups", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_CatalogReadsAllowUsers(t *testing.T) {
	f := newRouter(t)
	cookie := f.login(t, domainauth.RoleUser)

	f.groups.EXPECT().List(gomock.Any(), false).Return([]*model.CriteriaGroupWithCount{}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/criteria-groups", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AuthStatusIsPublic(t *testing.T) {
	f := newRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}
