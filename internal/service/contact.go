package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// ContactServiceOptions groups dependencies for ContactService.
type ContactServiceOptions struct {
	Repo      core.ContactRepository  // Required: contact repository
	Suppliers core.SupplierRepository // Required: owning supplier lookups
	Logger    *slog.Logger            // Optional: structured logger
}

// ContactService provides business logic for supplier contact operations.
type ContactService struct {
	repo      core.ContactRepository
	suppliers core.SupplierRepository
	logger    *slog.Logger
}

// NewContactService constructs a new ContactService.
func NewContactService(opts ContactServiceOptions) (*ContactService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ContactRepository is required")
	}
	if opts.Suppliers == nil {
		return nil, errors.New("SupplierRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "contact_service")
	}

	return &ContactService{
		repo:      opts.Repo,
		suppliers: opts.Suppliers,
		logger:    logger,
	}, nil
}

// Create adds a contact to a supplier.
func (s *ContactService) Create(ctx context.Context, req *model.CreateContactRequest) (*model.SupplierContact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Surface a not-found for the supplier rather than a bare FK violation.
	if _, err := s.suppliers.GetByID(ctx, req.SupplierID); err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	contact, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "contact created", "id", contact.ID, "supplier_id", contact.SupplierID)
	}
	return contact, nil
}

// ListBySupplier retrieves all contacts of a supplier.
func (s *ContactService) ListBySupplier(ctx context.Context, supplierID string) ([]*model.SupplierContact, error) {
	contacts, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Update updates an existing contact.
func (s *ContactService) Update(ctx context.Context, id string, req model.UpdateContactRequest) (*model.SupplierContact, error) {
	if !req.HasUpdates() {
		return nil, errors.New("no fields to update")
	}

	contact, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	return deleted, nil
}
