package core

import (
	"context"
	"time"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// SupplierRepository defines the interface for supplier data operations.
type SupplierRepository interface {
	Create(ctx context.Context, req *model.CreateSupplierRequest) (*model.Supplier, error)
	GetByID(ctx context.Context, id string) (*model.Supplier, error)
	GetByCode(ctx context.Context, code string) (*model.Supplier, error)
	List(ctx context.Context, opts model.SuppliersListOptions) ([]*model.Supplier, error)
	Count(ctx context.Context, opts model.SuppliersListOptions) (int, error)
	Update(ctx context.Context, id string, req model.UpdateSupplierRequest) (*model.Supplier, error)
	Delete(ctx context.Context, id string) (bool, error)

	// RecalculateScore recomputes current_score and total_evaluations from the
	// supplier's concluded qualifications and returns the updated row.
	RecalculateScore(ctx context.Context, supplierID string) (*model.Supplier, error)
}

// ContactRepository defines the interface for supplier contact data operations.
type ContactRepository interface {
	Create(ctx context.Context, req *model.CreateContactRequest) (*model.SupplierContact, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]*model.SupplierContact, error)
	Update(ctx context.Context, id string, req model.UpdateContactRequest) (*model.SupplierContact, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// GroupRepository defines the interface for criteria group data operations.
type GroupRepository interface {
	Create(ctx context.Context, req *model.CreateGroupRequest) (*model.CriteriaGroup, error)
	GetByID(ctx context.Context, id string) (*model.CriteriaGroup, error)
	List(ctx context.Context, onlyActive bool) ([]*model.CriteriaGroupWithCount, error)
	Update(ctx context.Context, id string, req model.UpdateGroupRequest) (*model.CriteriaGroup, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CriterionRepository defines the interface for criterion data operations.
type CriterionRepository interface {
	Create(ctx context.Context, req *model.CreateCriterionRequest) (*model.Criterion, error)
	GetByID(ctx context.Context, id string) (*model.Criterion, error)
	List(ctx context.Context, onlyActive bool) ([]*model.CriterionWithGroup, error)
	Update(ctx context.Context, id string, req model.UpdateCriterionRequest) (*model.Criterion, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// QualificationRepository defines the interface for qualification data operations.
type QualificationRepository interface {
	Create(ctx context.Context, req *model.CreateQualificationRequest) (*model.Qualification, error)
	GetByID(ctx context.Context, id string) (*model.Qualification, error)
	List(ctx context.Context, opts model.QualificationsListOptions) ([]*model.QualificationWithSupplier, error)
	Count(ctx context.Context, opts model.QualificationsListOptions) (int, error)
	Update(ctx context.Context, id string, req model.UpdateQualificationRequest) (*model.Qualification, error)
	// Delete removes the qualification and its evaluations and attachment rows.
	Delete(ctx context.Context, id string) (bool, error)

	// SaveEvaluations upserts the batch on (qualification_id, criterion_id).
	SaveEvaluations(ctx context.Context, reqs []model.SaveEvaluationRequest) ([]*model.Evaluation, error)
	ListEvaluations(ctx context.Context, qualificationID string) ([]*model.EvaluationWithCriterion, error)

	RegisterAttachment(ctx context.Context, req *model.RegisterAttachmentRequest) (*model.Attachment, error)
	ListAttachments(ctx context.Context, qualificationID string) ([]*model.Attachment, error)
	GetAttachment(ctx context.Context, id string) (*model.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) (bool, error)
}

// DashboardWindow bounds the aggregation queries.
type DashboardWindow struct {
	Since time.Time
	TopN  int
}

// DashboardRepository defines the interface for dashboard aggregation queries.
type DashboardRepository interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
	MonthlyScores(ctx context.Context, since time.Time) ([]model.MonthlyScore, error)
	TopSuppliers(ctx context.Context, limit int) ([]model.SupplierRanking, error)
	WorstSuppliers(ctx context.Context, limit int) ([]model.SupplierRanking, error)
	WorstCriteria(ctx context.Context, limit int) ([]model.CriterionStat, error)
}

// UserRepository defines the interface for user account data operations.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)

	// FindOrCreateByEmail returns the existing account for the email or
	// provisions a new non-admin one, updating full_name and last_synced_at
	// either way. The second return is true when a row was created.
	FindOrCreateByEmail(ctx context.Context, email string, fullName *string) (*model.User, bool, error)

	// SetPasswordHash stores a bcrypt hash for password sign-in.
	SetPasswordHash(ctx context.Context, id string, hash string) error
}

// OneTimeTokenStore issues and redeems single-use login tokens.
// Redeem must consume the token atomically; a second redeem fails.
type OneTimeTokenStore interface {
	Issue(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	Redeem(ctx context.Context, token string) (userID string, err error)
}

// DashboardCache stores a rendered dashboard payload with a short TTL.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*model.Dashboard, bool, error)
	Set(ctx context.Context, key string, d *model.Dashboard, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
