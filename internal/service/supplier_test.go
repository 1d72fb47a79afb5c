package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
)

// newSupplierService creates mock repositories and a service for testing.
func newSupplierService(t *testing.T) (*SupplierService, *mocks.MockSupplierRepository, *mocks.MockDashboardCache) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockSupplierRepository(ctrl)
	cache := mocks.NewMockDashboardCache(ctrl)
	svc, err := NewSupplierService(SupplierServiceOptions{Repo: repo, Cache: cache})
	require.NoError(t, err)
	return svc, repo, cache
}

func testSupplier() *model.Supplier {
	return &model.Supplier{
		ID:               "sup-1",
		Code:             "FORN-001",
		Name:             "Metalurgica Aurora",
		CNPJ:             "12345678000190",
		Status:           model.StatusActive,
		CurrentScore:     84,
		TotalEvaluations: 12,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

func TestSupplierService_Create(t *testing.T) {
	t.Parallel()
	svc, repo, cache := newSupplierService(t)
	ctx := context.Background()

	req := &model.CreateSupplierRequest{
		Code: "FORN-001",
		Name: "Metalurgica Aurora",
		CNPJ: "12.345.678/0001-90",
	}
	expected := testSupplier()

	repo.EXPECT().Create(ctx, req).Return(expected, nil).Times(1)
	cache.EXPECT().Invalidate(ctx, DashboardCacheKey).Return(nil).Times(1)

	supplier, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, supplier)
}

func TestSupplierService_CreateRejectsBadCNPJ(t *testing.T) {
	t.Parallel()
	svc, _, _ := newSupplierService(t)

	_, err := svc.Create(context.Background(), &model.CreateSupplierRequest{
		Code: "FORN-002",
		Name: "Fornecedora Sul",
		CNPJ: "123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cnpj")
}

func TestSupplierService_List(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newSupplierService(t)
	ctx := context.Background()

	opts := model.SuppliersListOptions{Limit: 10, Sort: "name"}
	suppliers := []*model.Supplier{testSupplier()}

	repo.EXPECT().List(ctx, opts).Return(suppliers, nil).Times(1)
	repo.EXPECT().Count(ctx, opts).Return(37, nil).Times(1)

	result, err := svc.List(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, suppliers, result.Items)
	assert.Equal(t, 37, result.Total)
}

func TestSupplierService_UpdateWithoutChangesFetches(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newSupplierService(t)
	ctx := context.Background()

	expected := testSupplier()
	repo.EXPECT().GetByID(ctx, "sup-1").Return(expected, nil).Times(1)

	supplier, err := svc.Update(ctx, "sup-1", model.UpdateSupplierRequest{})
	require.NoError(t, err)
	assert.Equal(t, expected, supplier)
}

func TestSupplierService_UpdateStatusInvalidatesDashboard(t *testing.T) {
	t.Parallel()
	svc, repo, cache := newSupplierService(t)
	ctx := context.Background()

	status := model.StatusInactive
	req := model.UpdateSupplierRequest{Status: &status}
	expected := testSupplier()
	expected.Status = model.StatusInactive

	repo.EXPECT().Update(ctx, "sup-1", req).Return(expected, nil).Times(1)
	cache.EXPECT().Invalidate(ctx, DashboardCacheKey).Return(nil).Times(1)

	supplier, err := svc.Update(ctx, "sup-1", req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, supplier.Status)
}

func TestSupplierService_UpdateNameSkipsInvalidation(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newSupplierService(t)
	ctx := context.Background()

	name := "Metalurgica Aurora Ltda"
	req := model.UpdateSupplierRequest{Name: &name}
	expected := testSupplier()
	expected.Name = name

	repo.EXPECT().Update(ctx, "sup-1", req).Return(expected, nil).Times(1)

	supplier, err := svc.Update(ctx, "sup-1", req)
	require.NoError(t, err)
	assert.Equal(t, name, supplier.Name)
}

func TestSupplierService_ToggleStatus(t *testing.T) {
	t.Parallel()
	svc, repo, cache := newSupplierService(t)
	ctx := context.Background()

	current := testSupplier()
	inactive := model.StatusInactive
	toggled := testSupplier()
	toggled.Status = inactive

	repo.EXPECT().GetByID(ctx, "sup-1").Return(current, nil).Times(1)
	repo.EXPECT().Update(ctx, "sup-1", model.UpdateSupplierRequest{Status: &inactive}).
		Return(toggled, nil).Times(1)
	cache.EXPECT().Invalidate(ctx, DashboardCacheKey).Return(nil).Times(1)

	supplier, err := svc.ToggleStatus(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, supplier.Status)
}

func TestSupplierService_Delete(t *testing.T) {
	t.Parallel()
	svc, repo, cache := newSupplierService(t)
	ctx := context.Background()

	repo.EXPECT().Delete(ctx, "sup-1").Return(true, nil).Times(1)
	cache.EXPECT().Invalidate(ctx, DashboardCacheKey).Return(nil).Times(1)

	deleted, err := svc.Delete(ctx, "sup-1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestSupplierService_DeleteMissingSkipsInvalidation(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newSupplierService(t)
	ctx := context.Background()

	repo.EXPECT().Delete(ctx, "sup-404").Return(false, nil).Times(1)

	deleted, err := svc.Delete(ctx, "sup-404")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSupplierService_CreateRepositoryError(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newSupplierService(t)
	ctx := context.Background()

	req := &model.CreateSupplierRequest{Code: "FORN-003", Name: "Acme", CNPJ: "12345678000190"}
	repo.EXPECT().Create(ctx, req).Return(nil, errors.New("duplicate code")).Times(1)

	_, err := svc.Create(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create supplier")
}
