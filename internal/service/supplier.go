package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// SupplierServiceOptions groups dependencies for SupplierService.
type SupplierServiceOptions struct {
	Repo   core.SupplierRepository // Required: supplier repository
	Cache  core.DashboardCache     // Optional: dashboard cache to invalidate on writes
	Logger *slog.Logger            // Optional: structured logger
}

// SupplierService provides business logic for supplier operations.
type SupplierService struct {
	repo   core.SupplierRepository
	cache  core.DashboardCache
	logger *slog.Logger
}

// NewSupplierService constructs a new SupplierService.
func NewSupplierService(opts SupplierServiceOptions) (*SupplierService, error) {
	if opts.Repo == nil {
		return nil, errors.New("SupplierRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "supplier_service")
	}

	return &SupplierService{
		repo:   opts.Repo,
		cache:  opts.Cache,
		logger: logger,
	}, nil
}

// Create registers a new supplier.
func (s *SupplierService) Create(ctx context.Context, req *model.CreateSupplierRequest) (*model.Supplier, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	supplier, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	s.invalidateDashboard(ctx)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "supplier created", "id", supplier.ID, "code", supplier.Code)
	}
	return supplier, nil
}

// GetByID retrieves a supplier by its ID.
func (s *SupplierService) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier by id: %w", err)
	}
	return supplier, nil
}

// ListResult carries one page of suppliers plus the unpaged total.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// List retrieves a page of suppliers with the total count for pagination.
func (s *SupplierService) List(ctx context.Context, opts model.SuppliersListOptions) (*ListResult[*model.Supplier], error) {
	suppliers, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("count suppliers: %w", err)
	}
	return &ListResult[*model.Supplier]{Items: suppliers, Total: total}, nil
}

// Update updates an existing supplier.
func (s *SupplierService) Update(ctx context.Context, id string, req model.UpdateSupplierRequest) (*model.Supplier, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasUpdates() {
		return s.GetByID(ctx, id)
	}

	supplier, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}

	// Status flips move the supplier in and out of the dashboard aggregates.
	if req.Status != nil {
		s.invalidateDashboard(ctx)
	}
	return supplier, nil
}

// ToggleStatus flips the supplier between active and inactive.
func (s *SupplierService) ToggleStatus(ctx context.Context, id string) (*model.Supplier, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	next := current.Status.Toggle()
	return s.Update(ctx, id, model.UpdateSupplierRequest{Status: &next})
}

// Delete removes a supplier together with its contacts and qualifications.
func (s *SupplierService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete supplier: %w", err)
	}
	if deleted {
		s.invalidateDashboard(ctx)
		if s.logger != nil {
			s.logger.DebugContext(ctx, "supplier deleted", "id", id)
		}
	}
	return deleted, nil
}

// RecalculateScore recomputes the supplier's rolling score from its concluded
// qualifications.
func (s *SupplierService) RecalculateScore(ctx context.Context, id string) (*model.Supplier, error) {
	supplier, err := s.repo.RecalculateScore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recalculate supplier score: %w", err)
	}
	return supplier, nil
}

func (s *SupplierService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, DashboardCacheKey); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to invalidate dashboard cache", "error", err)
	}
}
