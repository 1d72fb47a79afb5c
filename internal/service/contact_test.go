package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
)

// newContactService creates mock repositories and a service for testing.
func newContactService(t *testing.T) (*ContactService, *mocks.MockContactRepository, *mocks.MockSupplierRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockContactRepository(ctrl)
	suppliers := mocks.NewMockSupplierRepository(ctrl)
	svc, err := NewContactService(ContactServiceOptions{Repo: repo, Suppliers: suppliers})
	require.NoError(t, err)
	return svc, repo, suppliers
}

func TestContactService_Create(t *testing.T) {
	t.Parallel()
	svc, repo, suppliers := newContactService(t)
	ctx := context.Background()

	email := "joana@aurora.com.br"
	req := &model.CreateContactRequest{SupplierID: "sup-1", Name: "Joana", Email: &email}
	expected := &model.SupplierContact{ID: "ct-1", SupplierID: "sup-1", Name: "Joana", Email: &email}

	suppliers.EXPECT().GetByID(ctx, "sup-1").Return(testSupplier(), nil).Times(1)
	repo.EXPECT().Create(ctx, req).Return(expected, nil).Times(1)

	contact, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, contact)
}

func TestContactService_CreateUnknownSupplier(t *testing.T) {
	t.Parallel()
	svc, _, suppliers := newContactService(t)
	ctx := context.Background()

	suppliers.EXPECT().GetByID(ctx, "sup-404").Return(nil, errors.New("supplier not found")).Times(1)

	_, err := svc.Create(ctx, &model.CreateContactRequest{SupplierID: "sup-404", Name: "Joana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get supplier")
}

func TestContactService_CreateRejectsBadEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newContactService(t)

	email := "not-an-email"
	_, err := svc.Create(context.Background(), &model.CreateContactRequest{
		SupplierID: "sup-1",
		Name:       "Joana",
		Email:      &email,
	})
	require.Error(t, err)
}

func TestContactService_UpdateRequiresFields(t *testing.T) {
	t.Parallel()
	svc, _, _ := newContactService(t)

	_, err := svc.Update(context.Background(), "ct-1", model.UpdateContactRequest{})
	require.Error(t, err)
}

func TestContactService_Delete(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newContactService(t)
	ctx := context.Background()

	repo.EXPECT().Delete(ctx, "ct-1").Return(true, nil).Times(1)

	deleted, err := svc.Delete(ctx, "ct-1")
	require.NoError(t, err)
	assert.True(t, deleted)
}
