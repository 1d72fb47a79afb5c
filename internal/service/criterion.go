package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// CriterionServiceOptions groups dependencies for CriterionService.
type CriterionServiceOptions struct {
	Repo   core.CriterionRepository // Required: criterion repository
	Groups core.GroupRepository     // Required: owning group lookups
	Logger *slog.Logger             // Optional: structured logger
}

// CriterionService provides business logic for criterion operations.
type CriterionService struct {
	repo   core.CriterionRepository
	groups core.GroupRepository
	logger *slog.Logger
}

// NewCriterionService constructs a new CriterionService.
func NewCriterionService(opts CriterionServiceOptions) (*CriterionService, error) {
	if opts.Repo == nil {
		return nil, errors.New("CriterionRepository is required")
	}
	if opts.Groups == nil {
		return nil, errors.New("GroupRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "criterion_service")
	}

	return &CriterionService{
		repo:   opts.Repo,
		groups: opts.Groups,
		logger: logger,
	}, nil
}

// Create registers a new criterion, optionally attached to a group.
func (s *CriterionService) Create(ctx context.Context, req *model.CreateCriterionRequest) (*model.Criterion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	criterion, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create criterion: %w", err)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "criterion created", "id", criterion.ID, "code", criterion.Code)
	}
	return criterion, nil
}

// GetByID retrieves a criterion by its ID.
func (s *CriterionService) GetByID(ctx context.Context, id string) (*model.Criterion, error) {
	criterion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get criterion by id: %w", err)
	}
	return criterion, nil
}

// List retrieves all criteria joined with their group descriptions.
func (s *CriterionService) List(ctx context.Context, onlyActive bool) ([]*model.CriterionWithGroup, error) {
	criteria, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return criteria, nil
}

// Update updates an existing criterion.
func (s *CriterionService) Update(ctx context.Context, id string, req model.UpdateCriterionRequest) (*model.Criterion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasUpdates() {
		return s.GetByID(ctx, id)
	}
	if req.GroupID != nil && *req.GroupID != "" {
		if err := s.checkGroup(ctx, req.GroupID); err != nil {
			return nil, err
		}
	}

	criterion, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update criterion: %w", err)
	}
	return criterion, nil
}

// ToggleStatus flips the criterion between active and inactive.
func (s *CriterionService) ToggleStatus(ctx context.Context, id string) (*model.Criterion, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get criterion: %w", err)
	}
	next := current.Status.Toggle()
	return s.Update(ctx, id, model.UpdateCriterionRequest{Status: &next})
}

// Delete removes a criterion. Criteria already referenced by evaluations are
// protected by the schema and come back as a foreign key conflict.
func (s *CriterionService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete criterion: %w", err)
	}
	return deleted, nil
}

func (s *CriterionService) checkGroup(ctx context.Context, groupID *string) error {
	if groupID == nil || *groupID == "" {
		return nil
	}
	if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	return nil
}
