package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// GroupServiceOptions groups dependencies for GroupService.
type GroupServiceOptions struct {
	Repo   core.GroupRepository // Required: criteria group repository
	Logger *slog.Logger         // Optional: structured logger
}

// GroupService provides business logic for criteria group operations.
type GroupService struct {
	repo   core.GroupRepository
	logger *slog.Logger
}

// NewGroupService constructs a new GroupService.
func NewGroupService(opts GroupServiceOptions) (*GroupService, error) {
	if opts.Repo == nil {
		return nil, errors.New("GroupRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "group_service")
	}

	return &GroupService{repo: opts.Repo, logger: logger}, nil
}

// Create registers a new criteria group.
func (s *GroupService) Create(ctx context.Context, req *model.CreateGroupRequest) (*model.CriteriaGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	group, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "criteria group created", "id", group.ID, "code", group.Code)
	}
	return group, nil
}

// GetByID retrieves a criteria group by its ID.
func (s *GroupService) GetByID(ctx context.Context, id string) (*model.CriteriaGroup, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group by id: %w", err)
	}
	return group, nil
}

// List retrieves all criteria groups with their criteria counts.
func (s *GroupService) List(ctx context.Context, onlyActive bool) ([]*model.CriteriaGroupWithCount, error) {
	groups, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Update updates an existing criteria group.
func (s *GroupService) Update(ctx context.Context, id string, req model.UpdateGroupRequest) (*model.CriteriaGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasUpdates() {
		return s.GetByID(ctx, id)
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return group, nil
}

// ToggleStatus flips the group between active and inactive.
func (s *GroupService) ToggleStatus(ctx context.Context, id string) (*model.CriteriaGroup, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	next := current.Status.Toggle()
	return s.Update(ctx, id, model.UpdateGroupRequest{Status: &next})
}

// Delete removes a criteria group. Criteria referencing it are detached, not
// removed.
func (s *GroupService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	return deleted, nil
}
