package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
)

// newGroupService creates a mock repository and a service for testing.
func newGroupService(t *testing.T) (*GroupService, *mocks.MockGroupRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockGroupRepository(ctrl)
	svc, err := NewGroupService(GroupServiceOptions{Repo: repo})
	require.NoError(t, err)
	return svc, repo
}

func TestGroupService_Create(t *testing.T) {
	t.Parallel()
	svc, repo := newGroupService(t)
	ctx := context.Background()

	req := &model.CreateGroupRequest{Code: "LOG", Description: "Logistica"}
	expected := &model.CriteriaGroup{ID: "grp-1", Code: "LOG", Description: "Logistica", Status: model.StatusActive}

	repo.EXPECT().Create(ctx, req).Return(expected, nil).Times(1)

	group, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, group)
}

func TestGroupService_CreateRequiresCode(t *testing.T) {
	t.Parallel()
	svc, _ := newGroupService(t)

	_, err := svc.Create(context.Background(), &model.CreateGroupRequest{Description: "Logistica"})
	require.Error(t, err)
}

func TestGroupService_ToggleStatus(t *testing.T) {
	t.Parallel()
	svc, repo := newGroupService(t)
	ctx := context.Background()

	current := &model.CriteriaGroup{ID: "grp-1", Code: "LOG", Status: model.StatusActive}
	inactive := model.StatusInactive
	toggled := &model.CriteriaGroup{ID: "grp-1", Code: "LOG", Status: inactive}

	repo.EXPECT().GetByID(ctx, "grp-1").Return(current, nil).Times(1)
	repo.EXPECT().Update(ctx, "grp-1", model.UpdateGroupRequest{Status: &inactive}).
		Return(toggled, nil).Times(1)

	group, err := svc.ToggleStatus(ctx, "grp-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, group.Status)
}

func TestGroupService_List(t *testing.T) {
	t.Parallel()
	svc, repo := newGroupService(t)
	ctx := context.Background()

	expected := []*model.CriteriaGroupWithCount{
		{CriteriaGroup: model.CriteriaGroup{ID: "grp-1", Code: "LOG"}, CriteriaCount: 3},
	}
	repo.EXPECT().List(ctx, false).Return(expected, nil).Times(1)

	groups, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, expected, groups)
}

func TestGroupService_UpdateWithoutChangesFetches(t *testing.T) {
	t.Parallel()
	svc, repo := newGroupService(t)
	ctx := context.Background()

	expected := &model.CriteriaGroup{ID: "grp-1", Code: "LOG"}
	repo.EXPECT().GetByID(ctx, "grp-1").Return(expected, nil).Times(1)

	group, err := svc.Update(ctx, "grp-1", model.UpdateGroupRequest{})
	require.NoError(t, err)
	assert.Equal(t, expected, group)
}
