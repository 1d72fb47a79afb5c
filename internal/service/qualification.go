package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
)

// attachmentURLTTL bounds presigned download links for attachments.
const attachmentURLTTL = 15 * time.Minute

// QualificationServiceOptions groups dependencies for QualificationService.
type QualificationServiceOptions struct {
	Repo      core.QualificationRepository // Required: qualification repository
	Suppliers core.SupplierRepository      // Required: score recalculation
	Blobs     ports.BlobStore              // Optional: attachment uploads disabled when nil
	Cache     core.DashboardCache          // Optional: dashboard cache to invalidate on writes
	Logger    *slog.Logger                 // Optional: structured logger
}

// QualificationService provides business logic for qualification rounds,
// their evaluations, and their attachments.
type QualificationService struct {
	repo      core.QualificationRepository
	suppliers core.SupplierRepository
	blobs     ports.BlobStore
	cache     core.DashboardCache
	logger    *slog.Logger
}

// NewQualificationService constructs a new QualificationService.
func NewQualificationService(opts QualificationServiceOptions) (*QualificationService, error) {
	if opts.Repo == nil {
		return nil, errors.New("QualificationRepository is required")
	}
	if opts.Suppliers == nil {
		return nil, errors.New("SupplierRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "qualification_service")
	}

	return &QualificationService{
		repo:      opts.Repo,
		suppliers: opts.Suppliers,
		blobs:     opts.Blobs,
		cache:     opts.Cache,
		logger:    logger,
	}, nil
}

// Create opens a new qualification round for a supplier.
func (s *QualificationService) Create(ctx context.Context, req *model.CreateQualificationRequest) (*model.Qualification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.suppliers.GetByID(ctx, req.SupplierID); err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	qual, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create qualification: %w", err)
	}

	s.invalidateDashboard(ctx)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "qualification created",
			"id", qual.ID, "code", qual.Code, "supplier_id", qual.SupplierID)
	}
	return qual, nil
}

// GetByID retrieves a qualification by its ID.
func (s *QualificationService) GetByID(ctx context.Context, id string) (*model.Qualification, error) {
	qual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get qualification by id: %w", err)
	}
	return qual, nil
}

// QualificationDetail bundles a qualification with its evaluations and
// attachments for the detail screen.
type QualificationDetail struct {
	Qualification *model.Qualification             `json:"qualification"`
	Evaluations   []*model.EvaluationWithCriterion `json:"evaluations"`
	Attachments   []*model.Attachment              `json:"attachments"`
}

// GetDetail retrieves a qualification together with its evaluations and
// attachments.
func (s *QualificationService) GetDetail(ctx context.Context, id string) (*QualificationDetail, error) {
	qual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get qualification by id: %w", err)
	}
	evals, err := s.repo.ListEvaluations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	attachments, err := s.repo.ListAttachments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return &QualificationDetail{Qualification: qual, Evaluations: evals, Attachments: attachments}, nil
}

// List retrieves a page of qualifications with the total count.
func (s *QualificationService) List(ctx context.Context, opts model.QualificationsListOptions) (*ListResult[*model.QualificationWithSupplier], error) {
	quals, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list qualifications: %w", err)
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("count qualifications: %w", err)
	}
	return &ListResult[*model.QualificationWithSupplier]{Items: quals, Total: total}, nil
}

// Update updates an existing qualification. Concluding a round recomputes the
// owning supplier's rolling score, and reopening one removes its contribution.
func (s *QualificationService) Update(ctx context.Context, id string, req model.UpdateQualificationRequest) (*model.Qualification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasUpdates() {
		return s.GetByID(ctx, id)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get qualification: %w", err)
	}

	qual, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update qualification: %w", err)
	}

	if req.Status != nil && *req.Status != current.Status {
		s.recalculateSupplier(ctx, qual.SupplierID)
		s.invalidateDashboard(ctx)
	}
	return qual, nil
}

// Delete removes a qualification with its evaluations and attachment records,
// then recomputes the owning supplier's score without it.
func (s *QualificationService) Delete(ctx context.Context, id string) (bool, error) {
	qual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get qualification: %w", err)
	}

	// Blob objects are removed best effort before the rows cascade away.
	if s.blobs != nil {
		attachments, listErr := s.repo.ListAttachments(ctx, id)
		if listErr == nil {
			for _, a := range attachments {
				if delErr := s.blobs.Delete(ctx, a.FilePath); delErr != nil && s.logger != nil {
					s.logger.WarnContext(ctx, "failed to delete attachment blob",
						"attachment_id", a.ID, "key", a.FilePath, "error", delErr)
				}
			}
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete qualification: %w", err)
	}
	if deleted {
		s.recalculateSupplier(ctx, qual.SupplierID)
		s.invalidateDashboard(ctx)
	}
	return deleted, nil
}

// SaveEvaluations upserts a batch of criterion scores for the qualification
// and refreshes the owning supplier's aggregates.
func (s *QualificationService) SaveEvaluations(ctx context.Context, qualificationID string, reqs []model.SaveEvaluationRequest) ([]*model.Evaluation, error) {
	if len(reqs) == 0 {
		return nil, errors.New("at least one evaluation is required")
	}

	qual, err := s.repo.GetByID(ctx, qualificationID)
	if err != nil {
		return nil, fmt.Errorf("get qualification: %w", err)
	}

	for i := range reqs {
		reqs[i].QualificationID = qualificationID
		if err := reqs[i].Validate(); err != nil {
			return nil, err
		}
	}

	evals, err := s.repo.SaveEvaluations(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("save evaluations: %w", err)
	}

	s.recalculateSupplier(ctx, qual.SupplierID)
	s.invalidateDashboard(ctx)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "evaluations saved",
			"qualification_id", qualificationID, "count", len(evals))
	}
	return evals, nil
}

// ListEvaluations retrieves the criterion scores of a qualification.
func (s *QualificationService) ListEvaluations(ctx context.Context, qualificationID string) ([]*model.EvaluationWithCriterion, error) {
	evals, err := s.repo.ListEvaluations(ctx, qualificationID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}

// UploadAttachmentInput carries one attachment upload.
type UploadAttachmentInput struct {
	QualificationID string
	CriterionID     *string
	FileName        string
	ContentType     string
	Size            int64
	Body            io.Reader
}

// UploadAttachment stores the file in the blob store and registers it against
// the qualification.
func (s *QualificationService) UploadAttachment(ctx context.Context, in UploadAttachmentInput) (*model.Attachment, error) {
	if s.blobs == nil {
		return nil, errors.New("attachment storage is not configured")
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, errors.New("file_name is required")
	}
	if _, err := s.repo.GetByID(ctx, in.QualificationID); err != nil {
		return nil, fmt.Errorf("get qualification: %w", err)
	}

	key := attachmentKey(in.QualificationID, in.FileName)
	if err := s.blobs.Put(ctx, ports.PutObjectInput{
		Key:         key,
		ContentType: in.ContentType,
		Size:        in.Size,
		Body:        in.Body,
	}); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	req := &model.RegisterAttachmentRequest{
		QualificationID: in.QualificationID,
		CriterionID:     in.CriterionID,
		FilePath:        key,
		FileName:        in.FileName,
		FileType:        in.ContentType,
	}
	if in.Size > 0 {
		req.FileSize = &in.Size
	}

	attachment, err := s.repo.RegisterAttachment(ctx, req)
	if err != nil {
		// The row failed; do not leave the object orphaned.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to clean up orphaned blob", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("register attachment: %w", err)
	}
	return attachment, nil
}

// ListAttachments retrieves the attachments of a qualification.
func (s *QualificationService) ListAttachments(ctx context.Context, qualificationID string) ([]*model.Attachment, error) {
	attachments, err := s.repo.ListAttachments(ctx, qualificationID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// AttachmentDownloadURL returns a time-limited download link for an attachment.
func (s *QualificationService) AttachmentDownloadURL(ctx context.Context, id string) (string, error) {
	if s.blobs == nil {
		return "", errors.New("attachment storage is not configured")
	}
	attachment, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get attachment: %w", err)
	}
	url, err := s.blobs.PresignGet(ctx, attachment.FilePath, attachmentURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return url, nil
}

// DeleteAttachment removes the attachment record and its stored object.
func (s *QualificationService) DeleteAttachment(ctx context.Context, id string) (bool, error) {
	attachment, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get attachment: %w", err)
	}

	deleted, err := s.repo.DeleteAttachment(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete attachment: %w", err)
	}
	if deleted && s.blobs != nil {
		if delErr := s.blobs.Delete(ctx, attachment.FilePath); delErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete attachment blob",
				"attachment_id", id, "key", attachment.FilePath, "error", delErr)
		}
	}
	return deleted, nil
}

func (s *QualificationService) recalculateSupplier(ctx context.Context, supplierID string) {
	if _, err := s.suppliers.RecalculateScore(ctx, supplierID); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to recalculate supplier score",
			"supplier_id", supplierID, "error", err)
	}
}

func (s *QualificationService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, DashboardCacheKey); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to invalidate dashboard cache", "error", err)
	}
}

// attachmentKey builds the object key for an uploaded attachment. The random
// element keeps repeated uploads of the same filename from colliding.
func attachmentKey(qualificationID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("qualifications/%s/%s%s", qualificationID, uuid.NewString(), ext)
}
